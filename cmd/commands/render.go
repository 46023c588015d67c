package commands

// Command that renders one chart
// Loads the dataset, draws it with the configured style and optionally opens or publishes the PNG

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"econchart/internal/dataset"
	"econchart/internal/features/barchart"
	"econchart/internal/features/publish"
	"econchart/internal/infra/exec"
	"econchart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type renderFlags struct {
	data       string
	sheet      string
	label      string
	value      string
	title      string
	subtitle   string
	source     string
	ticks      []float64
	tickLabels []string
	out        string
	telegram   bool
}

var rf renderFlags

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a bar chart to PNG",
	Long: `Render the largest rows of a dataset as an Economist-style horizontal bar chart.

Example:
  econchart render --data gdp.csv --label country --value gdp \
    --title "Top economies" --subtitle "GDP, \$trn" --source "Source: IMF" \
    --ticks 0,10,20,30 --tick-labels 0,10,20,30 --out gdp.png`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&rf.data, "data", "", "dataset file (.csv, .tsv, .json, .xlsx)")
	f.StringVar(&rf.sheet, "sheet", "", "worksheet for .xlsx input (default first sheet)")
	f.StringVar(&rf.label, "label", "", "label column, e.g. country")
	f.StringVar(&rf.value, "value", "", "numeric value column, e.g. gdp")
	f.StringVar(&rf.title, "title", "", "chart title")
	f.StringVar(&rf.subtitle, "subtitle", "", "chart subtitle")
	f.StringVar(&rf.source, "source", "", "source line at the bottom")
	f.Float64SliceVar(&rf.ticks, "ticks", nil, "value axis tick positions, comma separated")
	f.StringSliceVar(&rf.tickLabels, "tick-labels", nil, "value axis tick labels, one per tick")
	f.StringVarP(&rf.out, "out", "o", "chart.png", "output PNG path")
	f.BoolVar(&rf.telegram, "telegram", false, "send the chart to the configured Telegram chat")

	// style overrides, mapped onto config keys
	f.String("font", "", "TrueType/OpenType font for all text")
	f.Bool("open", false, "open the chart in the system viewer after saving")
	f.Float64("dpi", 300, "output resolution")
	f.Int("top-n", 9, "number of bars")
	f.Float64("width", 3, "figure width in inches")
	f.Float64("height", 6, "figure height in inches")
	f.String("bar-color", "#006BA2", "bar color")
	f.String("accent-color", "#E3120B", "rule and tag color")
	f.Int64("telegram-chat-id", 0, "Telegram chat to post to (env: TELEGRAM_CHAT_ID)")

	renderCmd.MarkFlagRequired("data")
	renderCmd.MarkFlagRequired("label")
	renderCmd.MarkFlagRequired("value")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ds, err := dataset.Load(rf.data, dataset.LoadOptions{Sheet: rf.sheet})
	if err != nil {
		log.LogError("Failed to load dataset", zap.String("path", rf.data), zap.Error(err))
		return err
	}
	log.LogInfo("Dataset loaded", zap.String("path", rf.data), zap.Int("rows", len(ds)))

	req := barchart.PlotRequest{
		LabelColumn:   rf.label,
		ValueColumn:   rf.value,
		Title:         rf.title,
		Subtitle:      rf.subtitle,
		Source:        rf.source,
		TickPositions: rf.ticks,
		TickLabels:    rf.tickLabels,
		OutputPath:    rf.out,
		FontPath:      cfg.Render.FontPath,
	}

	var opts []barchart.Option
	if cfg.Render.Open {
		opts = append(opts, barchart.WithOpener(openInViewer))
	}

	res, err := barchart.NewRenderer(cfg.Style, opts...).Render(ds, req)
	if err != nil {
		log.LogError("Failed to render chart", zap.Error(err))
		return err
	}
	log.LogSuccess("Chart saved",
		zap.String("path", res.Path),
		zap.Int("bars", len(res.Bars)),
		zap.String("size", fmt.Sprintf("%dx%d", res.Width, res.Height)))

	if rf.telegram {
		if err := publishChart(ctx, res.Path, req); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}

func publishChart(ctx context.Context, path string, req barchart.PlotRequest) error {
	if err := cfg.Telegram.Validate(); err != nil {
		return err
	}
	bot, err := publish.NewBotSender(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}

	pub := publish.NewTelegramPublisher(bot, cfg.Telegram.ChatID, publish.Options{
		RatePerSecond: cfg.Telegram.RateLimit,
		MaxRetries:    cfg.Telegram.MaxRetries,
	})
	return pub.Publish(ctx, path, publish.Caption(req.Title, req.Subtitle, req.Source))
}

func openInViewer(ctx context.Context, path string) error {
	output, err := exec.OpenFile(ctx, path, 10*time.Second)
	if err != nil {
		return fmt.Errorf("%w: %s", err, output)
	}
	return nil
}
