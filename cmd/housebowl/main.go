// Command housebowl runs the full house-price pipeline: load the train and
// test CSV tables, encode them into aligned feature matrices, estimate the
// configured regressor's generalization error with k-fold cross-validation,
// fit one final model on all training rows, and write the submission CSV
// plus loss-curve plots.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tealfork/housebowl/crossval"
	"github.com/tealfork/housebowl/datasets"
	"github.com/tealfork/housebowl/mlp"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	trainPath := flag.String("train", "assets/train.csv", "path to the training CSV (id, features, target)")
	testPath := flag.String("test", "assets/test.csv", "path to the test CSV (id, features)")
	idColumn := flag.String("id", "Id", "name of the identifier column")
	targetColumn := flag.String("target", "SalePrice", "name of the target column in the training CSV")
	outDir := flag.String("out", "output", "output directory for the submission CSV and plots")

	k := flag.Int("k", 5, "number of cross-validation folds (must be >= 2)")
	epochs := flag.Int("epochs", 100, "number of training epochs")
	learningRate := flag.Float64("learning-rate", 0.005, "learning rate for the Adam optimizer")
	weightDecay := flag.Float64("weight-decay", 0.0, "L2 weight-decay coefficient")
	batchSize := flag.Int("batch", 64, "mini-batch size")
	hidden := flag.String("hidden", "64", "comma-separated hidden layer sizes, e.g. '128,64,32'")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	hiddenSizes, err := parseHiddenSizes(*hidden)
	if err != nil {
		log.Fatalf("bad -hidden value %q: %v", *hidden, err)
	}

	trainTable, err := datasets.LoadTable(*trainPath)
	if err != nil {
		log.Fatalf("failed to load train table: %v", err)
	}
	testTable, err := datasets.LoadTable(*testPath)
	if err != nil {
		log.Fatalf("failed to load test table: %v", err)
	}
	log.Printf("Loaded %d train rows, %d test rows", trainTable.Len(), testTable.Len())

	enc, err := datasets.Encode(trainTable, testTable, *idColumn, *targetColumn)
	if err != nil {
		log.Fatalf("failed to encode features: %v", err)
	}
	log.Printf("Encoded %d feature columns", len(enc.FeatureNames))

	cfg := mlp.Config{
		HiddenSizes:  hiddenSizes,
		LearningRate: *learningRate,
		WeightDecay:  *weightDecay,
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		Seed:         *seed,
	}

	res, err := crossval.KFoldEvaluate(*k, enc.TrainFeatures, enc.Labels, cfg)
	if err != nil {
		log.Fatalf("cross-validation failed: %v", err)
	}
	fmt.Printf("%d-fold cross-validation: avg train log-RMSE = %f, avg valid log-RMSE = %f\n",
		*k, res.AvgTrainMetric, res.AvgValidMetric)

	if err := ensureDir(*outDir); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := plotFoldLoss(*outDir, res.FirstFoldTrain, res.FirstFoldValid); err != nil {
		log.Fatalf("failed to plot fold loss curves: %v", err)
	}

	preds, finalTrace, err := crossval.FitAndPredict(enc.TrainFeatures, enc.Labels, enc.TestFeatures, cfg)
	if err != nil {
		log.Fatalf("final fit failed: %v", err)
	}
	log.Printf("Final fit: train log-RMSE = %f after %d epochs", finalTrace[len(finalTrace)-1], len(finalTrace))

	if err := plotFinalLoss(*outDir, finalTrace); err != nil {
		log.Fatalf("failed to plot final loss curve: %v", err)
	}

	subPath := filepath.Join(*outDir, "submission.csv")
	if err := datasets.WriteSubmission(subPath, *idColumn, *targetColumn, enc.TestIDs, preds); err != nil {
		log.Fatalf("failed to write submission: %v", err)
	}
	log.Printf("Submission written to %s", subPath)
}

// parseHiddenSizes parses a comma-separated list of positive layer widths.
func parseHiddenSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("layer size must be positive, got %d", v)
		}
		sizes = append(sizes, v)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no layer sizes given")
	}
	return sizes, nil
}

// traceXYs converts a per-epoch loss trace into plot points (epoch, value).
func traceXYs(trace []float64) plotter.XYs {
	xys := make(plotter.XYs, len(trace))
	for i, v := range trace {
		xys[i].X = float64(i + 1)
		xys[i].Y = v
	}
	return xys
}

// plotFoldLoss writes a PNG with the designated fold's training (blue) and
// validation (red) log-RMSE per epoch.
func plotFoldLoss(outDir string, train, valid []float64) error {
	p := plot.New()
	p.Title.Text = "Fold 0 log-RMSE per epoch: train (blue), valid (red)"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "log-RMSE"

	tl, err := plotter.NewLine(traceXYs(train))
	if err != nil {
		return err
	}
	tl.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	tl.Width = vg.Points(1.2)
	p.Add(tl)
	p.Legend.Add("train", tl)

	vl, err := plotter.NewLine(traceXYs(valid))
	if err != nil {
		return err
	}
	vl.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	vl.Width = vg.Points(1.2)
	p.Add(vl)
	p.Legend.Add("valid", vl)

	p.Add(plotter.NewGrid())
	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, "fold_loss.png"))
}

// plotFinalLoss writes a PNG with the full-data fit's training log-RMSE per
// epoch.
func plotFinalLoss(outDir string, trace []float64) error {
	p := plot.New()
	p.Title.Text = "Final fit log-RMSE per epoch"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "log-RMSE"

	line, err := plotter.NewLine(traceXYs(trace))
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 40, G: 120, B: 40, A: 255}
	line.Width = vg.Points(1.2)
	p.Add(line)
	p.Legend.Add("train", line)

	p.Add(plotter.NewGrid())
	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, "final_loss.png"))
}

func ensureDir(path string) error {
	// Attempt to create directory if it doesn't exist (silently succeed if present).
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
