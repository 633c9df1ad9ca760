package mlp

import (
	"errors"
	"math"
)

// adamState holds the first/second moment estimates for every parameter of
// one Model. It lives for exactly one Train call; a fresh Model always
// trains with fresh optimizer state.
type adamState struct {
	mW, vW [][][]float32
	mB, vB [][]float32
	t      int
}

func newAdamState(m *Model) *adamState {
	L := len(m.weights)
	s := &adamState{
		mW: make([][][]float32, L),
		vW: make([][][]float32, L),
		mB: make([][]float32, L),
		vB: make([][]float32, L),
	}
	for l := 0; l < L; l++ {
		outDim := len(m.biases[l])
		inDim := len(m.weights[l][0])
		s.mW[l] = make([][]float32, outDim)
		s.vW[l] = make([][]float32, outDim)
		for j := 0; j < outDim; j++ {
			s.mW[l][j] = make([]float32, inDim)
			s.vW[l][j] = make([]float32, inDim)
		}
		s.mB[l] = make([]float32, outDim)
		s.vB[l] = make([]float32, outDim)
	}
	return s
}

// update applies one Adam step to a single parameter and returns the new
// value. grad must already include the weight-decay term.
func (s *adamState) update(param, grad float32, lr, beta1, beta2, eps float64, mPtr, vPtr *float32) float32 {
	mv := beta1*float64(*mPtr) + (1-beta1)*float64(grad)
	vv := beta2*float64(*vPtr) + (1-beta2)*float64(grad)*float64(grad)
	*mPtr = float32(mv)
	*vPtr = float32(vv)
	mHat := mv / (1 - math.Pow(beta1, float64(s.t)))
	vHat := vv / (1 - math.Pow(beta2, float64(s.t)))
	return param - float32(lr*mHat/(math.Sqrt(vHat)+eps))
}

// Train runs mini-batch gradient descent over the model for the configured
// epoch count: each epoch shuffles the training rows, walks them in batches
// of Config.BatchSize (the last partial batch included), backpropagates the
// mean-squared error between raw output and raw label, and applies an Adam
// update with Config.LearningRate and Config.WeightDecay.
//
// After every epoch the clamped log-RMSE over the full training split is
// appended to the returned training trace; when valid is non-nil the same
// metric over the validation split is appended to the validation trace.
// Note the optimized loss is raw-space MSE while the traces are log-RMSE;
// the model is fit to prices, the metric reports relative error.
func (m *Model) Train(ds Dataset, valid Dataset) (trainTrace, validTrace []float64, err error) {
	if ds == nil {
		return nil, nil, errors.New("dataset is nil")
	}
	n := ds.Len()
	if n == 0 {
		return nil, nil, errors.New("dataset has no examples")
	}

	epochs := m.Config.Epochs
	if epochs <= 0 {
		epochs = 10
	}
	batchSize := m.Config.BatchSize
	if batchSize <= 0 {
		batchSize = 8
	}
	lr := m.Config.LearningRate
	if lr <= 0 {
		lr = 0.001
	}
	wd := float32(m.Config.WeightDecay)
	beta1, beta2, eps := m.Config.Beta1, m.Config.Beta2, m.Config.Epsilon
	if beta1 == 0 {
		beta1 = 0.9
	}
	if beta2 == 0 {
		beta2 = 0.999
	}
	if eps == 0 {
		eps = 1e-8
	}

	// Fetch the full splits once for the per-epoch metric; the underlying
	// data never changes during training.
	allIdx := make([]int, n)
	for i := range allIdx {
		allIdx[i] = i
	}
	trainInputs, trainLabels, err := ds.Batch(allIdx)
	if err != nil {
		return nil, nil, err
	}
	var validInputs [][]float32
	var validLabels []float32
	if valid != nil {
		vIdx := make([]int, valid.Len())
		for i := range vIdx {
			vIdx[i] = i
		}
		validInputs, validLabels, err = valid.Batch(vIdx)
		if err != nil {
			return nil, nil, err
		}
	}

	opt := newAdamState(m)
	indices := make([]int, n)
	copy(indices, allIdx)

	trainTrace = make([]float64, 0, epochs)
	if valid != nil {
		validTrace = make([]float64, 0, epochs)
	}

	// training loop
	for ep := 0; ep < epochs; ep++ {
		// shuffle indices
		m.rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		// iterate minibatches; gradients are accumulated over the minibatch
		// and applied as one averaged Adam step
		for bstart := 0; bstart < n; bstart += batchSize {
			bend := bstart + batchSize
			if bend > n {
				bend = n
			}
			batchIdx := indices[bstart:bend]

			inputs, labels, err := ds.Batch(batchIdx)
			if err != nil {
				return nil, nil, err
			}
			batchN := len(inputs)
			if batchN == 0 {
				continue
			}

			gradW, gradB := m.batchGradients(inputs, labels)
			if gradW == nil {
				return nil, nil, errors.New("input has incorrect dimension")
			}

			// Averaged Adam update with L2 weight decay folded into the
			// gradient.
			opt.t++
			bInv := float32(1.0 / float64(batchN))
			for l := range m.weights {
				outDim := len(m.biases[l])
				inDim := len(m.weights[l][0])
				for j := 0; j < outDim; j++ {
					db := gradB[l][j] * bInv
					m.biases[l][j] = opt.update(m.biases[l][j], db, lr, beta1, beta2, eps, &opt.mB[l][j], &opt.vB[l][j])
					for i := 0; i < inDim; i++ {
						dw := gradW[l][j][i]*bInv + wd*m.weights[l][j][i]
						m.weights[l][j][i] = opt.update(m.weights[l][j][i], dw, lr, beta1, beta2, eps, &opt.mW[l][j][i], &opt.vW[l][j][i])
					}
				}
			}
		} // end batches

		// per-epoch diagnostic traces
		preds, err := m.Predict(trainInputs)
		if err != nil {
			return nil, nil, err
		}
		trainTrace = append(trainTrace, LogRMSE(preds, trainLabels))
		if valid != nil {
			vPreds, err := m.Predict(validInputs)
			if err != nil {
				return nil, nil, err
			}
			validTrace = append(validTrace, LogRMSE(vPreds, validLabels))
		}
	} // end epochs

	return trainTrace, validTrace, nil
}

// batchGradients accumulates MSE gradients over a minibatch. Returns nil
// accumulators when an input has the wrong dimension.
func (m *Model) batchGradients(inputs [][]float32, labels []float32) ([][][]float32, [][]float32) {
	L := len(m.weights)
	gradW := make([][][]float32, L)
	gradB := make([][]float32, L)
	for l := 0; l < L; l++ {
		outDim := len(m.biases[l])
		inDim := len(m.weights[l][0])
		gradW[l] = make([][]float32, outDim)
		for j := 0; j < outDim; j++ {
			gradW[l][j] = make([]float32, inDim)
		}
		gradB[l] = make([]float32, outDim)
	}

	for ex := range inputs {
		preacts, acts, err := m.forwardSingle(inputs[ex])
		if err != nil {
			return nil, nil
		}

		// dLoss/dOutput = 2*(pred - label)
		outAct := acts[len(acts)-1]
		delta := []float32{2.0 * (outAct[0] - labels[ex])}

		// Backprop, accumulating into gradW/gradB
		for l := L - 1; l >= 0; l-- {
			inAct := acts[l]
			outDim := len(delta)
			inDim := len(inAct)

			for j := 0; j < outDim; j++ {
				gradB[l][j] += delta[j]
				for i := 0; i < inDim; i++ {
					gradW[l][j][i] += delta[j] * inAct[i]
				}
			}

			// propagate delta to previous layer if needed
			if l > 0 {
				prevLen := len(m.weights[l][0])
				newDelta := make([]float32, prevLen)
				for i := 0; i < prevLen; i++ {
					sum := float32(0.0)
					for j := 0; j < outDim; j++ {
						sum += m.weights[l][j][i] * delta[j]
					}
					newDelta[i] = sum
				}
				deriv := activationReLUDeriv(preacts[l-1])
				for i := 0; i < prevLen; i++ {
					newDelta[i] *= deriv[i]
				}
				delta = newDelta
			}
		}
	}
	return gradW, gradB
}
