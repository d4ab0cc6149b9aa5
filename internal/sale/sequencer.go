package sale

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const dayKeyLayout = "2006-01-02"

// Sequencer allocates YYMMDD-PPPP-NNNN sale numbers from the per-day counter.
type Sequencer struct {
	now func() time.Time
}

func NewSequencer(now func() time.Time) *Sequencer {
	if now == nil {
		now = time.Now
	}
	return &Sequencer{now: now}
}

// Next must run inside the sale transaction so a rollback also releases the number.
func (s *Sequencer) Next(ctx context.Context, tx TxRepository, merchantID string, loc *time.Location) (string, error) {
	day := s.now().In(loc)
	seq, err := tx.NextSequence(ctx, merchantID, day.Format(dayKeyLayout))
	if err != nil {
		return "", err
	}
	return FormatSaleNumber(day, merchantID, seq), nil
}

// FormatSaleNumber renders the counter with at least four digits; larger values keep all their digits.
func FormatSaleNumber(day time.Time, merchantID string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", day.Format("060102"), tenantPrefix(merchantID), seq)
}

func tenantPrefix(merchantID string) string {
	r := []rune(merchantID)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	return strings.ToUpper(string(r))
}
