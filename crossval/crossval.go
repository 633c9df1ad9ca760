// Package crossval estimates a price regressor's generalization error by
// k-fold cross-validation and runs the final full-data fit used to score the
// held-out test table.
//
// Each fold trains a freshly constructed mlp.Model: no parameter or
// optimizer state survives from one fold to the next, so validation scores
// never leak information between evaluation units.
package crossval

import (
	"errors"
	"fmt"

	"github.com/tealfork/housebowl/datasets"
	"github.com/tealfork/housebowl/mlp"
)

// Fold is one contiguous index range [Start, End) over the training rows,
// reserved for validation during one cross-validation round.
type Fold struct {
	Start, End int
}

// Folds partitions n rows into k contiguous folds of size n/k each. Rows
// beyond k*(n/k) are excluded from every fold; the folds never overlap.
// k must be at least 2 and n must provide at least one row per fold.
func Folds(n, k int) ([]Fold, error) {
	if k <= 1 {
		return nil, fmt.Errorf("k must be >= 2, got %d", k)
	}
	foldSize := n / k
	if foldSize == 0 {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, k)
	}
	folds := make([]Fold, k)
	for i := 0; i < k; i++ {
		folds[i] = Fold{Start: i * foldSize, End: (i + 1) * foldSize}
	}
	return folds, nil
}

// Result aggregates one k-fold evaluation run.
type Result struct {
	// AvgTrainMetric and AvgValidMetric are the arithmetic means, over all
	// folds, of the final-epoch clamped log-RMSE on each fold's training and
	// validation split.
	AvgTrainMetric float64
	AvgValidMetric float64

	// FirstFoldTrain and FirstFoldValid are the full per-epoch loss traces
	// of the first fold, retained for plotting.
	FirstFoldTrain []float64
	FirstFoldValid []float64
}

// KFoldEvaluate cross-validates the regressor configuration over the
// encoded training data. Fold i's index range is the validation split and
// the remaining folds, concatenated in fold order, are the training split.
// A fresh Model is built per fold from cfg (InputDim is taken from the
// feature matrix; the fold index is folded into a non-zero Seed so folds do
// not share an initialization while reruns stay reproducible).
func KFoldEvaluate(k int, features [][]float32, labels []float32, cfg mlp.Config) (*Result, error) {
	if len(features) != len(labels) {
		return nil, fmt.Errorf("features and labels row counts don't match: %d != %d", len(features), len(labels))
	}
	if len(features) == 0 {
		return nil, errors.New("no training rows")
	}

	folds, err := Folds(len(features), k)
	if err != nil {
		return nil, err
	}

	cfg.InputDim = len(features[0])
	baseSeed := cfg.Seed

	res := &Result{}
	for i, fold := range folds {
		validX := features[fold.Start:fold.End]
		validY := labels[fold.Start:fold.End]

		trainX := make([][]float32, 0, (k-1)*(fold.End-fold.Start))
		trainY := make([]float32, 0, cap(trainX))
		for j, other := range folds {
			if j == i {
				continue
			}
			trainX = append(trainX, features[other.Start:other.End]...)
			trainY = append(trainY, labels[other.Start:other.End]...)
		}

		if baseSeed != 0 {
			cfg.Seed = baseSeed + int64(i)
		}
		trainTrace, validTrace, err := trainFold(cfg, trainX, trainY, validX, validY)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}

		res.AvgTrainMetric += trainTrace[len(trainTrace)-1]
		res.AvgValidMetric += validTrace[len(validTrace)-1]
		if i == 0 {
			res.FirstFoldTrain = trainTrace
			res.FirstFoldValid = validTrace
		}
	}
	res.AvgTrainMetric /= float64(k)
	res.AvgValidMetric /= float64(k)
	return res, nil
}

// trainFold builds one disposable Model, trains it on the fold's training
// split and returns the loss traces. The Model goes out of scope when the
// fold ends.
func trainFold(cfg mlp.Config, trainX [][]float32, trainY []float32, validX [][]float32, validY []float32) ([]float64, []float64, error) {
	model, err := mlp.NewModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	trainDS, err := datasets.NewTabularDataset(trainX, trainY)
	if err != nil {
		return nil, nil, err
	}
	validDS, err := datasets.NewTabularDataset(validX, validY)
	if err != nil {
		return nil, nil, err
	}
	return model.Train(trainDS, validDS)
}

// FitAndPredict trains one fresh Model on the entire training split (no
// validation split) and scores the test matrix. It returns one raw-space
// prediction per test row, in test row order, plus the full-fit training
// trace for reporting.
func FitAndPredict(trainX [][]float32, trainY []float32, testX [][]float32, cfg mlp.Config) (predictions []float32, trainTrace []float64, err error) {
	if len(trainX) == 0 {
		return nil, nil, errors.New("no training rows")
	}
	cfg.InputDim = len(trainX[0])

	model, err := mlp.NewModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	ds, err := datasets.NewTabularDataset(trainX, trainY)
	if err != nil {
		return nil, nil, err
	}
	trainTrace, _, err = model.Train(ds, nil)
	if err != nil {
		return nil, nil, err
	}

	predictions, err = model.Predict(testX)
	if err != nil {
		return nil, nil, err
	}
	return predictions, trainTrace, nil
}
