//go:build integration

package tests

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"econchart/internal/dataset"
	"econchart/internal/features/barchart"
	"econchart/internal/features/publish"
)

// Needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID; posts a real chart.
func TestIntegration_Telegram_PublishChart(t *testing.T) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	if token == "" || chatID == 0 {
		t.Skip("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID not set")
	}

	ds, err := dataset.Load(filepath.Join("..", "..", "etc", "data", "gdp_2024.csv"), dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("load sample data: %v", err)
	}

	req := barchart.PlotRequest{
		LabelColumn:   "country",
		ValueColumn:   "gdp_trillions",
		Title:         "Integration test",
		Subtitle:      "GDP, $trn",
		Source:        "Source: IMF",
		TickPositions: []float64{0, 10, 20, 30},
		TickLabels:    []string{"0", "10", "20", "30"},
		OutputPath:    filepath.Join(t.TempDir(), "integration.png"),
	}
	res, err := barchart.Render(ds, req)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	bot, err := publish.NewBotSender(token)
	if err != nil {
		t.Fatalf("NewBotSender failed: %v", err)
	}
	pub := publish.NewTelegramPublisher(bot, chatID, publish.DefaultOptions())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := pub.Publish(ctx, res.Path, publish.Caption(req.Title, req.Subtitle, req.Source)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}
