// Package trainer runs the end to end training pipeline: load a CSV file,
// split the target from the features, persist an untrained model, fit it,
// persist the trained model and predict one row.
//
// The steps run in a fixed order and the first failure stops the run.
// Artifacts already written by earlier steps are left in place.
package trainer

import (
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/olsfit/core/model"
	"github.com/ezoic/olsfit/dataset"
	"github.com/ezoic/olsfit/linear"
	"github.com/ezoic/olsfit/metrics"
	"github.com/ezoic/olsfit/pkg/errors"
	"github.com/ezoic/olsfit/pkg/log"
	"github.com/ezoic/olsfit/report"
)

// Pipeline step names, logged under log.StepKey.
const (
	StepLoad          = "load"
	StepSplit         = "split"
	StepConstruct     = "construct"
	StepPersistBefore = "persist_before"
	StepFit           = "fit"
	StepPersistAfter  = "persist_after"
	StepPredict       = "predict"
	StepExport        = "export"
)

// Result summarizes a successful run.
type Result struct {
	Prediction   float64         `json:"prediction"`
	Coefficients []float64       `json:"coefficients"`
	Intercept    float64         `json:"intercept"`
	FeatureNames []string        `json:"feature_names"`
	NSamples     int             `json:"n_samples"`
	Metrics      *metrics.Report `json:"metrics"`
	WeightHash   string          `json:"weight_hash"`
}

// Trainer runs the pipeline for one Config.
type Trainer struct {
	cfg    *Config
	logger log.Logger
}

// New validates cfg and returns a Trainer. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Trainer, error) {
	valid, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &Trainer{
		cfg:    valid,
		logger: log.GetLoggerWithName("trainer").With(log.ComponentKey, "trainer"),
	}, nil
}

// Config returns a copy of the validated configuration.
func (t *Trainer) Config() Config {
	return *t.cfg
}

// step logs the start and completion of fn under name.
func (t *Trainer) step(name string, fn func() error, fields ...interface{}) error {
	start := time.Now()
	t.logger.Debug("Step started", append([]interface{}{log.StepKey, name}, fields...)...)

	if err := fn(); err != nil {
		t.logger.Error("Step failed", err, log.StepKey, name)
		return err
	}

	t.logger.Info("Step completed", append([]interface{}{
		log.StepKey, name,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}, fields...)...)
	return nil
}

// Run executes the pipeline.
func (t *Trainer) Run() (*Result, error) {
	cfg := t.cfg

	var ds *dataset.Dataset
	err := t.step(StepLoad, func() (err error) {
		ds, err = dataset.LoadCSV(cfg.DataPath)
		return err
	}, log.PathKey, cfg.DataPath)
	if err != nil {
		return nil, err
	}

	var split *dataset.Split
	err = t.step(StepSplit, func() (err error) {
		split, err = ds.Split(cfg.TargetColumn)
		return err
	})
	if err != nil {
		return nil, err
	}

	var lr *linear.LinearRegression
	err = t.step(StepConstruct, func() error {
		lr = linear.NewLinearRegression(
			linear.WithFitIntercept(cfg.FitIntercept),
			linear.WithFeatureNames(split.FeatureNames),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = t.step(StepPersistBefore, func() error {
		return model.SaveModel(lr, cfg.BeforePath)
	}, log.OperationKey, log.OperationSave, log.PathKey, cfg.BeforePath)
	if err != nil {
		return nil, err
	}

	err = t.step(StepFit, func() error {
		return lr.Fit(split.X, split.Y)
	}, log.SamplesKey, split.X.RawMatrix().Rows, log.FeaturesKey, len(split.FeatureNames))
	if err != nil {
		return nil, err
	}

	err = t.step(StepPersistAfter, func() error {
		return model.SaveModel(lr, cfg.AfterPath)
	}, log.OperationKey, log.OperationSave, log.PathKey, cfg.AfterPath)
	if err != nil {
		return nil, err
	}

	var prediction float64
	err = t.step(StepPredict, func() (err error) {
		prediction, err = lr.PredictRow(cfg.PredictRow)
		return err
	}, log.OperationKey, log.OperationPredict)
	if err != nil {
		return nil, err
	}

	fitted, err := t.evaluate(lr, split)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Prediction:   prediction,
		Coefficients: lr.GetWeights(),
		Intercept:    lr.GetIntercept(),
		FeatureNames: append([]string(nil), split.FeatureNames...),
		NSamples:     ds.Len(),
		Metrics:      fitted.report,
		WeightHash:   lr.GetWeightHash(),
	}

	if err := t.step(StepExport, func() error { return t.export(lr, split, fitted.predicted) }); err != nil {
		return nil, err
	}

	return res, nil
}

type evaluation struct {
	predicted []float64
	report    *metrics.Report
}

// evaluate scores the model on its training data.
func (t *Trainer) evaluate(lr *linear.LinearRegression, split *dataset.Split) (*evaluation, error) {
	yPred, err := lr.Predict(split.X)
	if err != nil {
		return nil, err
	}
	predicted := mat.Col(nil, 0, yPred)

	rep, err := metrics.Evaluate(split.Y, mat.NewVecDense(len(predicted), predicted))
	if err != nil {
		return nil, err
	}
	if math.IsNaN(rep.R2) {
		t.logger.Warn("R2 is undefined for a constant target")
	}

	t.logger.Info("Training metrics",
		"mse", rep.MSE,
		"rmse", rep.RMSE,
		"mae", rep.MAE,
		"r2", rep.R2,
	)
	return &evaluation{predicted: predicted, report: rep}, nil
}

// export writes the optional outputs named in the config.
func (t *Trainer) export(lr *linear.LinearRegression, split *dataset.Split, predicted []float64) error {
	cfg := t.cfg
	actual := mat.Col(nil, 0, split.Y)

	if cfg.ExportJSONPath != "" {
		if err := lr.ExportToSKLearn(cfg.ExportJSONPath); err != nil {
			return err
		}
		t.logger.Info("Exported weights", log.PathKey, cfg.ExportJSONPath)
	}

	if cfg.PlotPath != "" {
		var err error
		if len(split.FeatureNames) == 1 {
			err = report.PlotFit(cfg.PlotPath, mat.Col(nil, 0, split.X), actual, predicted,
				split.Target+" by "+split.FeatureNames[0])
		} else {
			err = report.PlotResiduals(cfg.PlotPath, actual, predicted)
		}
		if err != nil {
			return err
		}
		t.logger.Info("Saved plot", log.PathKey, cfg.PlotPath)
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, split.Target, actual, predicted); err != nil {
			return err
		}
		t.logger.Info("Saved report", log.PathKey, cfg.ReportPath)
	}

	return nil
}

func writeReport(path, title string, actual, predicted []float64) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close file")
		}
	}()

	return report.WriteHTML(file, title, actual, predicted)
}
