// Package main renders an example predicted-vs-actual comparison chart for
// land surface temperature grouped by Local Climate Zone, and writes it to
// a PNG file.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/lcz-viz/server/internal/render"
	"github.com/lcz-viz/server/pkg/frame"
	"github.com/lcz-viz/server/pkg/lcz"
	"github.com/lcz-viz/server/pkg/scores"
)

func main() {
	tablePath := flag.String("table", "assets/json/LCZ_num_to_class.json", "Path to the code-to-class reference table")
	palettePath := flag.String("palette", "assets/json/LCZ_class_to_palette.json", "Path to the class-to-color palette")
	outPath := flag.String("out", "comparison.png", "Output PNG path")
	flag.Parse()

	// Sample land surface temperature observations (Kelvin) with the LCZ
	// code of each site.
	actual := []float64{284, 287, 291, 295, 298, 302, 304, 310}
	predicted := []float64{285, 286, 290, 296, 300, 304, 305, 308}
	codes := []int{2, 5, 102, 5, 6, 6, 107, 102}

	table, err := lcz.LoadReferenceTable(*tablePath)
	if err != nil {
		log.Fatalf("Failed to load reference table: %v", err)
	}
	palette, err := lcz.LoadPalette(*palettePath)
	if err != nil {
		log.Fatalf("Failed to load palette: %v", err)
	}

	// Map LCZ numerical codes into classes and derive the legend order
	// from the same table.
	classes := table.MapCodes(codes)
	hueOrder := table.DisplayOrderClasses(classes)

	f := frame.New()
	if err := f.AddNumeric("y_actual", actual); err != nil {
		log.Fatalf("Failed to build frame: %v", err)
	}
	if err := f.AddNumeric("y_pred", predicted); err != nil {
		log.Fatalf("Failed to build frame: %v", err)
	}
	if err := f.AddLabels("LCZ", classes); err != nil {
		log.Fatalf("Failed to build frame: %v", err)
	}

	fit, err := scores.Compute(actual, predicted)
	if err != nil {
		log.Fatalf("Failed to compute scores: %v", err)
	}

	renderer := render.NewChartRenderer(render.DefaultStyle())
	data, err := renderer.RenderComparison(f, render.Options{
		ActualField: "y_actual",
		PredField:   "y_pred",
		HueField:    "LCZ",
		HueTitle:    "LCZ-Majority",
		HueOrder:    hueOrder,
		HuePalette:  palette,
		TargetTitle: "LST",
		TargetUnits: "K",
		Scores:      fit,
		UseHue:      true,
		PrintScores: true,
	})
	if err != nil {
		log.Fatalf("Failed to render chart: %v", err)
	}

	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}
	log.Printf("Wrote %s (%d bytes)", *outPath, len(data))
}
