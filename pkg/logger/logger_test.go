package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapCarriesNameAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := Wrap(zap.New(core)).Named("sale").With(zap.String("merchant_id", "m-1"))

	log.Debug("dropped")
	log.Info("sale created", zap.Int("lines", 2))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "sale" || e.Message != "sale created" {
		t.Errorf("entry = %s %q", e.LoggerName, e.Message)
	}
	fields := e.ContextMap()
	if fields["merchant_id"] != "m-1" || fields["lines"] != int64(2) {
		t.Errorf("fields = %v", fields)
	}
}

func TestNewZapLoggerFallsBackOnBadLevel(t *testing.T) {
	log := NewZapLogger(&ZapLoggerConfig{Encoding: "json", Level: "loud"})
	if log == nil {
		t.Fatal("nil logger")
	}
	_ = log.Sync()
}
