package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestComplibHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "component saved",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tcomponent saved\n",
		},
		{
			name:    "warn level",
			opID:    "op-456",
			level:   slog.LevelWarn,
			message: "skipping unreadable asset",
			want:    "2024-06-15T14:30:45Z\tWARN\top-456\tskipping unreadable asset\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "published component",
			attrs:   []slog.Attr{slog.String("component", "button-1"), slog.Int("files", 3)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\tpublished component\tcomponent=button-1\tfiles=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newHandler(&buf, tt.opID, slog.LevelDebug)

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

func TestComplibHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newHandler(&buf, "op-1", slog.LevelDebug)

	h2 := h.WithAttrs([]slog.Attr{slog.String("module", "figma")}).(*complibHandler)

	r := slog.NewRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.String("file", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "module=figma") {
		t.Errorf("expected pre-set attr module=figma, got: %q", got)
	}
	if !strings.Contains(got, "file=abc") {
		t.Errorf("expected record attr file=abc, got: %q", got)
	}
	if len(h.attrs) != 0 {
		t.Errorf("original handler attrs mutated: %v", h.attrs)
	}
}

func TestComplibHandler_Enabled(t *testing.T) {
	h := newHandler(io.Discard, "op", slog.LevelWarn)

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("ParseLevel() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	var stderr bytes.Buffer

	logger, f, err := newLogger(dir, "test-op", slog.LevelInfo, &stderr)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Debug("hidden")
	logger.Info("visible", "k", "v")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug record written at info level: %q", data)
	}
	if !strings.Contains(string(data), "test-op\tvisible\tk=v") {
		t.Errorf("log file = %q, want visible record", data)
	}
	if stderr.String() != string(data) {
		t.Errorf("stderr = %q, want same as log file %q", stderr.String(), data)
	}
}
