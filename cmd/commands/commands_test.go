package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"econchart/internal/features/barchart"
)

func TestPreviewTableListsLargestFirst(t *testing.T) {
	bars := []barchart.Bar{{Label: "Japan", Value: 4.2}, {Label: "China", Value: 17.9}, {Label: "United States", Value: 25.4}}
	out := previewTable(bars, "country", "gdp")

	us := strings.Index(out, "United States")
	cn := strings.Index(out, "China")
	jp := strings.Index(out, "Japan")
	if us < 0 || cn < 0 || jp < 0 {
		t.Fatalf("missing rows in\n%s", out)
	}
	if !(us < cn && cn < jp) {
		t.Fatalf("rows not ordered largest first:\n%s", out)
	}
	if !strings.Contains(out, "25.4") {
		t.Fatalf("missing value in\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "gdp.csv")
	csv := "country,gdp\nUnited States,25.4\nChina,17.9\nJapan,4.2\nGermany,4.1\nIndia,3.4\n"
	if err := os.WriteFile(data, []byte(csv), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := filepath.Join(dir, "gdp.png")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{
		"render",
		"--data", data,
		"--label", "country",
		"--value", "gdp",
		"--title", "The big five",
		"--subtitle", "GDP, $trn",
		"--source", "Source: IMF",
		"--ticks", "0,10,20,30",
		"--tick-labels", "0,10,20,30",
		"--out", out,
		"--log-dir", filepath.Join(dir, "logs"),
		"--top-n", "3",
	})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("render command failed: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != out {
		t.Fatalf("expected output path on stdout, got %q", stdout.String())
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("chart not written: %v", err)
	}
	if cfg.Style.TopN != 3 {
		t.Fatalf("--top-n not applied, got %d", cfg.Style.TopN)
	}
	if _, err := os.Stat(filepath.Join(dir, "logs", "app.log")); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestRenderCommandFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "gdp.csv")
	if err := os.WriteFile(data, []byte("country,gdp\nChina,17.9\nJapan,4.2\n"), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := filepath.Join(dir, "gdp.png")
	logDir := filepath.Join(dir, "logs")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"render",
		"--data", data,
		"--label", "country",
		"--value", "gnp",
		"--ticks", "0,10",
		"--tick-labels", "0,10",
		"--out", out,
		"--log-dir", logDir,
	})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); !errors.Is(err, barchart.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("no chart should be written, stat err=%v", err)
	}

	logged, err := os.ReadFile(filepath.Join(logDir, "app.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logged), "Failed to render chart") {
		t.Fatalf("render failure missing from log:\n%s", logged)
	}
}
