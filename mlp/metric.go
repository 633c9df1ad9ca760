package mlp

import "math"

// LogRMSE computes the root-mean-square error between the logarithms of the
// predictions and the targets. Predictions below 1 are clamped to 1 first,
// which keeps the logarithm defined when an untrained model emits zero or
// negative prices; the clamp value is exactly 1, not a smaller epsilon.
//
// This is the reporting metric for the price models. Training minimizes
// plain MSE in raw price space; this metric is only ever computed on the
// side for diagnostics, so the two deliberately disagree.
//
// Targets are assumed strictly positive. Returns 0 for empty input.
func LogRMSE(predictions, targets []float32) float64 {
	if len(predictions) == 0 {
		return 0.0
	}
	var sum float64
	for i := range predictions {
		p := float64(predictions[i])
		if p < 1 {
			p = 1
		}
		d := math.Log(p) - math.Log(float64(targets[i]))
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predictions)))
}
