package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitWritesFileLog(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	LogInfo("chart rendered", zap.String("path", "out.png"), zap.Int("bars", 9))
	LogError("render failed", zap.Error(errors.New("disk full")))
	Named("barchart").Debug("layout computed")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"INFO chart rendered",
		`"path":"out.png"`,
		`"bars":9`,
		"ERROR render failed",
		`"error":"disk full"`,
		"[barchart] layout computed",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q\n%s", want, content)
		}
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(t.TempDir(), "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestExtractDuration(t *testing.T) {
	if got := extractDuration([]zap.Field{zap.Int64("duration_ms", 42)}); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := extractDuration([]zap.Field{zap.String("duration_ms", "42")}); got != 0 {
		t.Fatalf("expected 0 for non-int field, got %d", got)
	}
}

func TestWithFieldsReachFileLog(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "info"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	l := Named("publish").With(zap.Int64("chat_id", 42))
	l.Info("Chart sent", zap.String("path", "gdp.png"))
	l.Debug("below the file level")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"chat_id":42`) || !strings.Contains(content, `"path":"gdp.png"`) {
		t.Fatalf("context fields missing:\n%s", content)
	}
	if strings.Contains(content, "below the file level") {
		t.Fatalf("debug entry written at info level:\n%s", content)
	}
}

func TestDurationSuffix(t *testing.T) {
	if got := durationSuffix([]zap.Field{zap.Int64("duration_ms", 120)}); got != " (120ms)" {
		t.Fatalf("unexpected suffix %q", got)
	}
	if got := durationSuffix(nil); got != "" {
		t.Fatalf("expected empty suffix, got %q", got)
	}
}
