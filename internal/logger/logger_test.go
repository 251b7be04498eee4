package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Envs(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		if _, err := NewLogger(env); err != nil {
			t.Errorf("%s: unexpected error: %v", env, err)
		}
	}
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContextOr(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fallback := zap.New(core).With(zap.String("src", "fallback"))

	FromContextOr(context.Background(), fallback).Info("a")
	if logs.Len() != 1 || logs.All()[0].ContextMap()["src"] != "fallback" {
		t.Fatalf("expected fallback logger, got %v", logs.All())
	}

	ctx := ContextWithLogger(context.Background(), zap.New(core).With(zap.String("src", "request")))
	FromContextOr(ctx, fallback).Info("b")
	if logs.All()[1].ContextMap()["src"] != "request" {
		t.Errorf("expected request logger, got %v", logs.All()[1].ContextMap())
	}
}

func TestForCommand(t *testing.T) {
	if _, err := ForCommand("local", "", "wisata-build"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
