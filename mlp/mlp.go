package mlp

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config holds configurable hyperparameters for the regressor and training.
type Config struct {
	// HiddenSizes is the list of hidden layer sizes. Example: []int{128, 64, 32}
	// If empty, a single hidden layer of size 64 will be used.
	HiddenSizes []int

	// InputDim is the dimensionality of the input feature vector. It is the
	// width of the encoded feature matrix and must be set by the caller.
	InputDim int

	// LearningRate used by the Adam optimizer (default if 0: 0.001).
	LearningRate float64

	// WeightDecay is the L2 coefficient applied to the weights during
	// updates. Zero disables decay.
	WeightDecay float64

	// Epochs to train for (default if 0 will be set by NewModel to 10).
	Epochs int

	// BatchSize for mini-batch updates (default if 0 will be set by NewModel to 8).
	BatchSize int

	// Seed controls RNG for weight init and shuffling. If zero, a time-based
	// seed is used.
	Seed int64

	// Adam hyperparameters (defaults below if zero).
	Beta1   float64
	Beta2   float64
	Epsilon float64
}

// Dataset is the minimal interface the trainer requires from a training
// dataset. The datasets package's TabularDataset satisfies it; tests can
// supply small in-memory implementations.
type Dataset interface {
	Len() int
	// Batch returns inputs and labels for the provided global indices.
	Batch(indices []int) ([][]float32, []float32, error)
}

// Model is a fully-connected regressor: a configurable stack of hidden
// layers with ReLU between adjacent layers and a single linear output per
// row. A Model owns its parameters exclusively; rebuilding via NewModel
// yields a fresh random initialization, which is what keeps cross-validation
// folds isolated from each other.
type Model struct {
	// Config used for training / initialization.
	Config Config

	// layerSizes includes input size, hidden sizes, then output size (1).
	layerSizes []int

	// weights[l] is a matrix of shape [out][in] for layer l -> l+1
	weights [][][]float32

	// biases[l] is a vector of length out for layer l -> l+1
	biases [][]float32

	// rng used for weight initialization and shuffling
	rng *rand.Rand
}

// NewModel creates a new Model instance with the provided configuration.
// It initializes weights (small random values) and is ready to train.
func NewModel(cfg Config) (*Model, error) {
	if cfg.InputDim <= 0 {
		return nil, errors.New("InputDim must be positive")
	}

	// defaults
	if len(cfg.HiddenSizes) == 0 {
		cfg.HiddenSizes = []int{64}
	}
	for _, h := range cfg.HiddenSizes {
		if h <= 0 {
			return nil, errors.New("hidden sizes must be positive")
		}
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = 0.001
	}
	if cfg.Epochs == 0 {
		cfg.Epochs = 10
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 8
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Beta1 == 0 {
		cfg.Beta1 = 0.9
	}
	if cfg.Beta2 == 0 {
		cfg.Beta2 = 0.999
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = 1e-8
	}

	m := &Model{
		Config: cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}

	const outputDim = 1

	// build layer sizes
	sizes := make([]int, 0, 2+len(cfg.HiddenSizes))
	sizes = append(sizes, cfg.InputDim)
	sizes = append(sizes, cfg.HiddenSizes...)
	sizes = append(sizes, outputDim)
	m.layerSizes = sizes

	// allocate weights and biases
	L := len(sizes) - 1
	m.weights = make([][][]float32, L)
	m.biases = make([][]float32, L)
	for l := 0; l < L; l++ {
		in := sizes[l]
		out := sizes[l+1]
		mat := make([][]float32, out)
		for j := 0; j < out; j++ {
			row := make([]float32, in)
			for i := 0; i < in; i++ {
				// Xavier/Glorot uniform initialization heuristic
				limit := float32(math.Sqrt(6.0 / float64(in+out)))
				row[i] = (m.rng.Float32()*2.0 - 1.0) * limit * 0.5
			}
			mat[j] = row
		}
		m.weights[l] = mat
		m.biases[l] = make([]float32, out)
	}

	return m, nil
}

// InputDim returns the expected feature-vector width.
func (m *Model) InputDim() int { return m.layerSizes[0] }

// activationReLU applies ReLU in-place over the slice.
func activationReLU(x []float32) {
	for i := range x {
		if x[i] < 0 {
			x[i] = 0
		}
	}
}

// activationReLUDeriv returns elementwise derivative of ReLU applied to preact.
// derivative is 1 where preact>0, else 0.
func activationReLUDeriv(preact []float32) []float32 {
	d := make([]float32, len(preact))
	for i := range preact {
		if preact[i] > 0 {
			d[i] = 1.0
		}
	}
	return d
}

// forwardSingle performs a forward pass for a single input vector, returning:
// - preActivations: list of pre-activation vectors per layer (len = L)
// - activations: list of activation vectors per layer (len = L+1, activations[0] = input)
// Note: L is number of layers (hidden+output)
func (m *Model) forwardSingle(input []float32) (preActs [][]float32, acts [][]float32, err error) {
	if len(input) != m.layerSizes[0] {
		return nil, nil, errors.New("input has incorrect dimension")
	}
	L := len(m.weights)
	acts = make([][]float32, L+1)
	acts[0] = make([]float32, len(input))
	copy(acts[0], input)

	preActs = make([][]float32, L)
	for l := 0; l < L; l++ {
		inVec := acts[l]
		outDim := len(m.biases[l])
		inDim := len(inVec)
		pre := make([]float32, outDim)
		W := m.weights[l]
		b := m.biases[l]
		for j := 0; j < outDim; j++ {
			sum := float32(0.0)
			row := W[j]
			for i := 0; i < inDim; i++ {
				sum += row[i] * inVec[i]
			}
			sum += b[j]
			pre[j] = sum
		}
		preActs[l] = pre

		// Activation: ReLU for hidden, linear for last layer
		act := make([]float32, outDim)
		copy(act, pre)
		if l < L-1 {
			activationReLU(act)
		}
		acts[l+1] = act
	}
	return preActs, acts, nil
}

// Predict returns the model's scalar prediction for every input row. It is
// a purely forward pass (no training).
func (m *Model) Predict(inputs [][]float32) ([]float32, error) {
	out := make([]float32, len(inputs))
	for i, in := range inputs {
		_, acts, err := m.forwardSingle(in)
		if err != nil {
			return nil, err
		}
		out[i] = acts[len(acts)-1][0]
	}
	return out, nil
}
