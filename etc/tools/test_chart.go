package main

import (
	"fmt"
	"os"
	"path/filepath"

	"econchart/internal/dataset"
	"econchart/internal/features/barchart"
)

// go run etc/tools/test_chart.go
// renders etc/data/gdp_2024.csv into etc/charts/gdp_chart.png
func main() {
	fmt.Println("Generating test chart...")

	ds, err := dataset.Load(filepath.Join("etc", "data", "gdp_2024.csv"), dataset.LoadOptions{})
	if err != nil {
		fmt.Printf("Error loading data: %v\n", err)
		os.Exit(1)
	}

	chartsDir := filepath.Join("etc", "charts")
	if err := os.MkdirAll(chartsDir, 0755); err != nil {
		fmt.Printf("Error creating charts directory: %v\n", err)
		os.Exit(1)
	}

	res, err := barchart.Render(ds, barchart.PlotRequest{
		LabelColumn:   "country",
		ValueColumn:   "gdp_trillions",
		Title:         "The world's biggest economies",
		Subtitle:      "GDP, $trn, 2024",
		Source:        "Source: IMF World Economic Outlook",
		TickPositions: []float64{0, 10, 20, 30},
		TickLabels:    []string{"0", "10", "20", "30"},
		OutputPath:    filepath.Join(chartsDir, "gdp_chart.png"),
	})
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s (%dx%d)\n", res.Path, res.Width, res.Height)
	fmt.Println("Open the file to see the result!")
}
