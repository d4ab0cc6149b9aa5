package auth

import (
	"context"
	"net/http"
	"strings"
)

// Headers set by the gateway after it has authenticated the caller.
const (
	HeaderMerchantID = "X-Merchant-ID"
	HeaderUserID     = "X-User-ID"
	HeaderUserRole   = "X-User-Role"
)

// Actor is the authenticated caller. The sales core trusts it as given.
type Actor struct {
	MerchantID string
	UserID     string
	Role       string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// GetMerchantID returns the tenant of the caller, or "" when none was attached.
func GetMerchantID(ctx context.Context) string {
	a, _ := ActorFrom(ctx)
	return a.MerchantID
}

// FromHeaders reads the gateway identity headers. ok is false when tenant or user is missing.
func FromHeaders(h http.Header) (Actor, bool) {
	a := Actor{
		MerchantID: strings.TrimSpace(h.Get(HeaderMerchantID)),
		UserID:     strings.TrimSpace(h.Get(HeaderUserID)),
		Role:       strings.TrimSpace(h.Get(HeaderUserRole)),
	}
	return a, a.MerchantID != "" && a.UserID != ""
}
