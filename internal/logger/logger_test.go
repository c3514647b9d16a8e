package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env       string
		level     string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"prod", "", zapcore.InfoLevel, false},
		{"local", "", zapcore.DebugLevel, false},
		{"docker", "", zapcore.DebugLevel, false},
		{"test", "", zapcore.WarnLevel, false},
		{"prod", "debug", zapcore.DebugLevel, false},
		{"staging", "", 0, true},
		{"local", "loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %s should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && l.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %s should be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("expected a no-op logger")
	}

	want := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), want)
	if got := FromContext(ctx); got != want {
		t.Error("expected the stored logger")
	}
}

func TestWithCaller(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = WithCaller(ctx, caller.New("u7", role.Driver, "d3"))
	FromContext(ctx).Info("Collection search failed")

	c, ok := caller.FromContext(ctx)
	if !ok || c.UserID() != "u7" {
		t.Fatalf("caller not bound to context: %+v %v", c, ok)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	want := map[string]string{"user_id": "u7", "role": "driver", "driver_id": "d3"}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("%s = %v, want %q", k, fields[k], v)
		}
	}
}

func TestWithCaller_OmitsEmptyDriver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	FromContext(WithCaller(ctx, caller.New("a1", role.Admin, ""))).Info("x")

	if _, ok := logs.All()[0].ContextMap()["driver_id"]; ok {
		t.Error("driver_id should be omitted for callers without a linked driver")
	}
}
