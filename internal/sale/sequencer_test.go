package sale

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/model"
)

func TestFormatSaleNumber(t *testing.T) {
	day := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		merchant string
		seq      int
		want     string
	}{
		{"tenant-abcd", 1, "241231-ABCD-0001"},
		{"ab", 42, "241231-AB-0042"},
		{"tenant-abcd", 12345, "241231-ABCD-12345"},
	}
	for _, tt := range tests {
		if got := FormatSaleNumber(day, tt.merchant, tt.seq); got != tt.want {
			t.Errorf("FormatSaleNumber(%q, %d) = %s, want %s", tt.merchant, tt.seq, got, tt.want)
		}
	}
}

type counterTx struct {
	days []string
}

func (c *counterTx) Stock() inventory.TxRepository { return nil }
func (c *counterTx) NextSequence(_ context.Context, _, day string) (int, error) {
	c.days = append(c.days, day)
	return len(c.days), nil
}
func (c *counterTx) Create(context.Context, *model.Sale) error { return nil }
func (c *counterTx) FindByID(context.Context, string, string) (*model.Sale, error) {
	return nil, nil
}
func (c *counterTx) MarkRefunded(context.Context, string, string, *string, time.Time) (bool, error) {
	return false, nil
}

func TestSequencerUsesTenantDay(t *testing.T) {
	// 02:00 UTC on the 1st is still the 31st in New York.
	now := time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	seq := NewSequencer(func() time.Time { return now })
	tx := &counterTx{}

	got, err := seq.Next(context.Background(), tx, "m-1234", ny)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "241231-1234-0001" {
		t.Errorf("Next = %s", got)
	}
	if tx.days[0] != "2024-12-31" {
		t.Errorf("counter day = %s", tx.days[0])
	}
}
