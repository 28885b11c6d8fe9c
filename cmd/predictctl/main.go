// predictctl is a small command-line client for the prediction service:
// request a prediction for a mix, inspect the model, list history,
// trigger an export.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"concrete-predictor/pkg/client"
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "prediction service base URL")
		timeout = flag.Duration("timeout", 5*time.Second, "request timeout")

		cement = flag.Float64("cement", 280, "cement (kg/m³)")
		slag   = flag.Float64("slag", 0, "blast furnace slag (kg/m³)")
		flyAsh = flag.Float64("fly-ash", 0, "fly ash (kg/m³)")
		water  = flag.Float64("water", 175, "water (kg/m³)")
		super  = flag.Float64("superplasticizer", 2.5, "superplasticizer (kg/m³)")
		coarse = flag.Float64("coarse", 975, "coarse aggregate (kg/m³)")
		fine   = flag.Float64("fine", 775, "fine aggregate (kg/m³)")
		age    = flag.Float64("age", 28, "curing age (days)")
		clamp  = flag.Bool("clamp", false, "clamp out-of-range values instead of rejecting")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <predict|info|importance|presets|history|export|clear>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	c := client.New(*baseURL, *timeout)

	var err error
	switch flag.Arg(0) {
	case "predict":
		in := client.MixInput{
			Cement:           *cement,
			Slag:             *slag,
			FlyAsh:           *flyAsh,
			Water:            *water,
			Superplasticizer: *super,
			CoarseAggregate:  *coarse,
			FineAggregate:    *fine,
			AgeDays:          *age,
		}
		var result *client.PredictResult
		if *clamp {
			result, err = c.PredictClamped(in)
		} else {
			result, err = c.Predict(in)
		}
		if err == nil {
			fmt.Printf("%.2f kg/cm²  %s (%s)\n",
				result.Record.StrengthKgCm2, result.Record.Band, result.BandDescription)
			fmt.Printf("w/c ratio %.3f, cementitious %.1f kg/m³, confidence %.1f%%\n",
				result.Record.WaterCementRatio, result.Record.TotalCementitious,
				result.Record.Confidence*100)
		}
	case "info":
		var info *client.ModelInfo
		if info, err = c.ModelInfo(); err == nil {
			printJSON(info)
		}
	case "importance":
		var entries []client.ImportanceEntry
		if entries, err = c.FeatureImportance(); err == nil {
			for _, e := range entries {
				fmt.Printf("%-20s %.4f\n", e.Name, e.Importance)
			}
		}
	case "presets":
		var presets []client.Preset
		if presets, err = c.Presets(); err == nil {
			printJSON(presets)
		}
	case "history":
		var records []client.PredictionRecord
		if records, err = c.History(); err == nil {
			for _, r := range records {
				fmt.Printf("%s  %8.2f kg/cm²  %s\n",
					r.Timestamp.Format(time.RFC3339), r.StrengthKgCm2, r.Band)
			}
			fmt.Printf("%d records\n", len(records))
		}
	case "export":
		var result *client.ExportResult
		if result, err = c.ExportHistory(); err == nil {
			fmt.Printf("exported %d records to %s\n", result.Records, result.Path)
		}
	case "clear":
		err = c.ClearHistory()
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
