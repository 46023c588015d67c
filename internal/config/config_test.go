package config

import (
	"os"
	"path/filepath"
	"testing"

	"econchart/internal/features/barchart"

	"github.com/spf13/pflag"
)

// chdir moves into a fresh temp dir so no stray config.yaml or .env is picked up
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Style != barchart.DefaultStyle() {
		t.Fatalf("defaults differ from DefaultStyle:\n%+v\n%+v", cfg.Style, barchart.DefaultStyle())
	}
	if cfg.Log.Dir != "logs" || cfg.Render.Open {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Log, cfg.Render)
	}
}

func TestLoadLayers(t *testing.T) {
	dir := chdir(t)

	yaml := []byte("style:\n  bar_color: \"#123456\"\n  dpi: 150\n  title:\n    size: 16\ntelegram:\n  chat_id: 99\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ECONCHART_STYLE_TOP_N", "5")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("dpi", 300, "")
	flags.Bool("open", false, "")
	if err := flags.Parse([]string{"--dpi=72"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(LoadOptions{Flags: flags})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Style.BarColor != "#123456" {
		t.Errorf("config file bar color not applied: %q", cfg.Style.BarColor)
	}
	if cfg.Style.Title.Size != 16 || !cfg.Style.Title.Bold {
		t.Errorf("nested title settings wrong: %+v", cfg.Style.Title)
	}
	if cfg.Style.TopN != 5 {
		t.Errorf("env top_n not applied: %d", cfg.Style.TopN)
	}
	if cfg.Style.DPI != 72 {
		t.Errorf("flag should override config file dpi, got %v", cfg.Style.DPI)
	}
	if cfg.Render.Open {
		t.Errorf("unset flag must not override defaults")
	}
	if cfg.Telegram.BotToken != "123:abc" || cfg.Telegram.ChatID != 99 {
		t.Errorf("telegram settings wrong: %+v", cfg.Telegram)
	}
	if err := cfg.Telegram.Validate(); err != nil {
		t.Errorf("telegram config should validate: %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := chdir(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ECONCHART_LOG_LEVEL=warn\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("ECONCHART_LOG_LEVEL") })

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected warn from .env, got %q", cfg.Log.Level)
	}
}

func TestLoadRejectsInvalidStyle(t *testing.T) {
	chdir(t)
	t.Setenv("ECONCHART_STYLE_BAR_COLOR", "not-a-color")

	if _, err := Load(LoadOptions{}); err == nil {
		t.Fatalf("expected invalid style error")
	}
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	chdir(t)
	if _, err := Load(LoadOptions{ConfigFile: "nope.yaml"}); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestTelegramValidate(t *testing.T) {
	if err := (TelegramConfig{ChatID: 1}).Validate(); err == nil {
		t.Errorf("expected missing token error")
	}
	if err := (TelegramConfig{BotToken: "x"}).Validate(); err == nil {
		t.Errorf("expected missing chat id error")
	}
}
