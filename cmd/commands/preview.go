package commands

// Command that prints the rows a chart would show, largest first, without drawing anything

import (
	"fmt"
	"strconv"

	"econchart/internal/dataset"
	"econchart/internal/features/barchart"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	previewData  string
	previewSheet string
	previewLabel string
	previewValue string
)

var (
	colorDim    = lipgloss.Color("240")
	colorGray   = lipgloss.Color("245")
	colorAccent = lipgloss.Color("160")

	headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	topStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the rows a chart would include",
	RunE:  runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.StringVar(&previewData, "data", "", "dataset file (.csv, .tsv, .json, .xlsx)")
	f.StringVar(&previewSheet, "sheet", "", "worksheet for .xlsx input")
	f.StringVar(&previewLabel, "label", "", "label column")
	f.StringVar(&previewValue, "value", "", "numeric value column")
	f.Int("top-n", 9, "number of bars")

	previewCmd.MarkFlagRequired("data")
	previewCmd.MarkFlagRequired("label")
	previewCmd.MarkFlagRequired("value")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Load(previewData, dataset.LoadOptions{Sheet: previewSheet})
	if err != nil {
		return err
	}

	bars, err := barchart.SelectTop(ds, previewLabel, previewValue, cfg.Style.TopN)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), previewTable(bars, previewLabel, previewValue))
	return nil
}

// previewTable lists bars top to bottom as they appear on the chart
func previewTable(bars []barchart.Bar, labelHeader, valueHeader string) string {
	rows := make([][]string, 0, len(bars))
	for i := len(bars) - 1; i >= 0; i-- {
		rank := strconv.Itoa(len(bars) - i)
		rows = append(rows, []string{rank, bars[i].Label, strconv.FormatFloat(bars[i].Value, 'g', -1, 64)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", labelHeader, valueHeader).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case row == 0:
				return topStyle.Padding(0, 1)
			default:
				return cellStyle
			}
		})
	return t.String()
}
