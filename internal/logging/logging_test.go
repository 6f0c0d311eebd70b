package logging_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jlolling/jhac/internal/logging"
)

func TestZapLogger_WritesLevelsAndFields(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.NewZapLogger(zap.New(core))

	logger.Debug("d", logging.Field{Key: "k", Value: 1})
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e", logging.Field{Key: "error", Value: errors.New("boom")})

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Message != "d" || entries[0].Level != zap.DebugLevel {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if got := entries[0].ContextMap()["k"]; got != int64(1) {
		t.Errorf("expected field k=1, got %v", got)
	}
	if got := entries[3].ContextMap()["error"]; got != "boom" {
		t.Errorf("expected error field 'boom', got %v", got)
	}
}

func TestZapLogger_WithAddsPersistentFields(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.InfoLevel)
	logger := logging.NewZapLogger(zap.New(core))

	child := logger.With(logging.Field{Key: "component", Value: "impex"})
	child.Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["component"]; got != "impex" {
		t.Errorf("expected component=impex, got %v", got)
	}
}

func TestNewLeveledLogger_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()
	if _, err := logging.NewLeveledLogger("test", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewNopLogger_DoesNotPanic(t *testing.T) {
	t.Parallel()
	l := logging.NewNopLogger()
	l.With(logging.Field{Key: "a", Value: "b"}).Info("ignored")
}
