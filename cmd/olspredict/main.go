// Command olspredict loads a model saved by olsfit and predicts one row.
//
//	olspredict -model model_after_training -row 3300
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ezoic/olsfit/core/model"
	"github.com/ezoic/olsfit/linear"
	"github.com/ezoic/olsfit/pkg/log"
	"github.com/ezoic/olsfit/trainer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.LogError(err, "olspredict failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("olspredict", flag.ContinueOnError)
	modelPath := fs.String("model", trainer.DefaultConfig().AfterPath, "gob artifact written by olsfit")
	rowFlag := fs.String("row", "3300", "comma separated feature values to predict")
	describe := fs.Bool("describe", false, "print the model parameters as JSON")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	log.SetupLogger(*logLevel)

	lr := linear.NewLinearRegression()
	if err := model.LoadModel(lr, *modelPath); err != nil {
		return err
	}
	log.GetLogger().Info().
		Str(log.PathKey, *modelPath).
		Str(log.OperationKey, log.OperationLoad).
		Bool("fitted", lr.IsFitted()).
		Msg("Model loaded")

	if *describe {
		out, err := lr.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}

	row, err := trainer.ParseRow(*rowFlag)
	if err != nil {
		return err
	}

	pred, err := lr.PredictRow(row)
	if err != nil {
		return err
	}
	fmt.Printf("%.8f\n", pred)
	return nil
}
