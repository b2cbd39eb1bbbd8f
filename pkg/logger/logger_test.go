package logger

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose", "json"); err == nil {
		t.Fatal("Expected error for unknown level")
	}
	if _, err := New("debug", "text"); err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
}

func TestKeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := (&Logger{Logger: zap.New(core)}).WithComponent("article-store").With("article", "learn-react")

	log.Info("Upvoted", "upvotes", int64(3), "took", 2*time.Millisecond, "error", errors.New("none"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "article-store" {
		t.Errorf("Expected component field, got %v", fields["component"])
	}
	if fields["article"] != "learn-react" {
		t.Errorf("Expected article field, got %v", fields["article"])
	}
	if fields["upvotes"] != int64(3) {
		t.Errorf("Expected upvotes 3, got %v", fields["upvotes"])
	}
	if fields["took"] != 2*time.Millisecond {
		t.Errorf("Expected duration field, got %v", fields["took"])
	}
	if fields["error"] != "none" {
		t.Errorf("Expected error field, got %v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Error("Expected dangling key to be kept")
	}
}

func TestFatalLogsBeforeExiting(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{Logger: zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic))}

	defer func() {
		if recover() == nil {
			t.Fatal("Expected fatal hook to run")
		}
		entries := logs.FilterMessage("Failed to open article store").All()
		if len(entries) != 1 || entries[0].ContextMap()["driver"] != "badger" {
			t.Errorf("Expected one fatal entry with driver field, got %v", entries)
		}
	}()

	log.Fatal("Failed to open article store", "driver", "badger")
}
