package apperror

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

func TestFromClassifies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"passthrough", NotFound("Sale not found"), KindNotFound},
		{"wrapped app error", fmt.Errorf("refund: %w", AlreadyRefunded()), KindAlreadyRefunded},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindTimeout},
		{"unique violation", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, KindConflict},
		{"deadlock", fmt.Errorf("lock stock: %w", &pgconn.PgError{Code: "40P01"}), KindConflict},
		{"check violation", &pgconn.PgError{Code: "23514"}, KindInvalidInput},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, KindInvalidInput},
		{"connection exception", &pgconn.PgError{Code: "08006"}, KindStoreUnavailable},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, KindUnexpected},
		{"plain", errors.New("boom"), KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := From(tt.err).Kind; got != tt.want {
				t.Errorf("From(%v).Kind = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindInvalidInput:      http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindInsufficientStock: http.StatusBadRequest,
		KindAlreadyRefunded:   http.StatusBadRequest,
		KindConflict:          http.StatusConflict,
		KindStoreUnavailable:  http.StatusInternalServerError,
		KindTimeout:           http.StatusInternalServerError,
		KindUnexpected:        http.StatusInternalServerError,
	}
	for kind, want := range tests {
		e := &Error{Kind: kind}
		if got := e.HTTPStatus(); got != want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", kind, got, want)
		}
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("create sale: %w", InsufficientStock("Cola"))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatal("expected errors.Is to match the kind sentinel")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("kinds must not cross-match")
	}
}

func TestRetryableAndDetail(t *testing.T) {
	e := From(context.DeadlineExceeded)
	if !e.Retryable() {
		t.Error("timeouts are retryable")
	}
	if NotFound("x").Retryable() {
		t.Error("not found is not retryable")
	}
	if !strings.Contains(e.Detail(), "deadline exceeded") {
		t.Errorf("Detail() = %q", e.Detail())
	}
}
