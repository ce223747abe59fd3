package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		"INFO":    zap.InfoLevel,
		"warn":    zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"verbose": zap.InfoLevel,
		"":        zap.InfoLevel,
	}
	for in, want := range cases {
		l := New(in)
		if !l.Core().Enabled(want) {
			t.Fatalf("New(%q) does not enable %v", in, want)
		}
		if want > zap.DebugLevel && l.Core().Enabled(want-1) {
			t.Fatalf("New(%q) enables %v", in, want-1)
		}
	}
}

func TestTemporalLoggerKeyvals(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tl := NewTemporalLogger(zap.New(core))

	tl.Info("started", "taskQueue", "uploads")
	tl.With("workflow", "wf-1").Error("failed", "attempt", 1)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Message != "started" || entries[0].ContextMap()["taskQueue"] != "uploads" {
		t.Fatalf("first entry: %+v", entries[0])
	}
	ctx := entries[1].ContextMap()
	if entries[1].Level != zap.ErrorLevel || ctx["workflow"] != "wf-1" || ctx["attempt"] != int64(1) {
		t.Fatalf("second entry: %+v ctx=%v", entries[1], ctx)
	}
}
