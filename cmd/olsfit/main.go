// Command olsfit trains an ordinary least squares model on a CSV file,
// saves the model before and after training and prints one prediction.
//
//	olsfit -data homeprices.csv -target price -row 3300
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/profile"

	"github.com/ezoic/olsfit/pkg/log"
	"github.com/ezoic/olsfit/trainer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.LogError(err, "olsfit failed")
		os.Exit(1)
	}
}

func formatRow(row []float64) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func run(args []string) error {
	def := trainer.DefaultConfig()
	fs := flag.NewFlagSet("olsfit", flag.ContinueOnError)

	cfg := trainer.Config{}
	fs.StringVar(&cfg.DataPath, "data", def.DataPath, "CSV file with a header row")
	fs.StringVar(&cfg.TargetColumn, "target", def.TargetColumn, "name of the column to predict")
	fs.StringVar(&cfg.BeforePath, "before", def.BeforePath, "artifact path for the untrained model")
	fs.StringVar(&cfg.AfterPath, "after", def.AfterPath, "artifact path for the trained model")
	fs.BoolVar(&cfg.FitIntercept, "fit-intercept", def.FitIntercept, "learn an intercept term")
	fs.StringVar(&cfg.ExportJSONPath, "export-json", "", "write scikit-learn style JSON weights to this path")
	fs.StringVar(&cfg.PlotPath, "plot", "", "save a fit plot to this path (.png, .svg or .pdf)")
	fs.StringVar(&cfg.ReportPath, "report", "", "write an HTML report to this path")
	rowFlag := fs.String("row", formatRow(def.PredictRow), "comma separated feature values to predict")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	jsonLog := fs.Bool("json-log", false, "write logs as JSON")
	jsonOut := fs.Bool("json", false, "print the full result as JSON")
	cpuProfile := fs.String("cpuprofile", "", "write a CPU profile to this directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *jsonLog {
		log.SetOutput(os.Stderr, *logLevel)
	} else {
		log.SetupLogger(*logLevel)
	}

	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile), profile.Quiet).Stop()
	}

	row, err := trainer.ParseRow(*rowFlag)
	if err != nil {
		return err
	}
	cfg.PredictRow = row

	t, err := trainer.New(&cfg)
	if err != nil {
		return err
	}

	res, err := t.Run()
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	for i, name := range res.FeatureNames {
		fmt.Printf("coef[%s] = %.8f\n", name, res.Coefficients[i])
	}
	fmt.Printf("intercept = %.8f\n", res.Intercept)
	fmt.Printf("r2 = %.6f\n", res.Metrics.R2)
	fmt.Printf("prediction(%s) = %.8f\n", formatRow(cfg.PredictRow), res.Prediction)
	return nil
}
