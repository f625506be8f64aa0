package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestWdsHandler_Handle(t *testing.T) {
	ts := time.Date(2026, 3, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name       string
		instanceID string
		level      slog.Level
		message    string
		attrs      []slog.Attr
		want       string
	}{
		{
			name:       "basic info message",
			instanceID: "20260315T143045Z",
			level:      slog.LevelInfo,
			message:    "record created",
			want:       "2026-03-15T14:30:45Z\tINFO\t20260315T143045Z\trecord created\n",
		},
		{
			name:       "debug level",
			instanceID: "inst-2",
			level:      slog.LevelDebug,
			message:    "sweep started",
			want:       "2026-03-15T14:30:45Z\tDEBUG\tinst-2\tsweep started\n",
		},
		{
			name:       "with record attrs",
			instanceID: "inst-3",
			level:      slog.LevelWarn,
			message:    "snapshot unlink failed",
			attrs:      []slog.Attr{slog.String("record", "ab12"), slog.Int("size", 42)},
			want:       "2026-03-15T14:30:45Z\tWARN\tinst-3\tsnapshot unlink failed\trecord=ab12\tsize=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &wdsHandler{w: &buf, instanceID: tt.instanceID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestWdsHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &wdsHandler{w: &buf, instanceID: "inst-1"}

	// Add pre-set attrs
	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "gc")}).(*wdsHandler)

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "sweep", 0)
	r.AddAttrs(slog.String("pins", "3"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=gc") {
		t.Errorf("expected pre-set attr component=gc, got: %q", got)
	}
	if !strings.Contains(got, "pins=3") {
		t.Errorf("expected record attr pins=3, got: %q", got)
	}
}

func TestWdsHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &wdsHandler{w: &buf, instanceID: "inst-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*wdsHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestWdsHandler_Enabled(t *testing.T) {
	h := &wdsHandler{}
	// All levels should be enabled
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false, want true", level)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "test-instance")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f == nil {
		t.Fatal("newLogger() returned nil file")
	}
}
