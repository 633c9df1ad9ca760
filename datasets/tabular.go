package datasets

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// TabularDataset presents an encoded feature matrix and its label vector as
// a batched dataset. It serves two consumers: the mlp trainer, which pulls
// index batches via Batch, and gomlx training loops, which iterate via
// Yield/Restart over flat tensor batches.
type TabularDataset struct {
	// BatchSize used by Yield.
	BatchSize int

	features [][]float32
	labels   []float32

	// perm maps dataset order to row order; Shuffle permutes it.
	perm   []int
	cursor int
	rand   *rand.Rand
}

// NewTabularDataset wraps a feature matrix and row-aligned labels. The
// slices are retained, not copied.
func NewTabularDataset(features [][]float32, labels []float32) (*TabularDataset, error) {
	if len(features) != len(labels) {
		return nil, fmt.Errorf("features and labels row counts don't match: %d != %d", len(features), len(labels))
	}
	perm := make([]int, len(features))
	for i := range perm {
		perm[i] = i
	}
	return &TabularDataset{
		BatchSize: 32,
		features:  features,
		labels:    labels,
		perm:      perm,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Len returns the number of examples.
func (d *TabularDataset) Len() int { return len(d.features) }

// Example returns the features and label for one row.
func (d *TabularDataset) Example(i int) ([]float32, float32, error) {
	if i < 0 || i >= len(d.features) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", i, len(d.features))
	}
	return d.features[i], d.labels[i], nil
}

// Batch gathers the rows at the given indices.
func (d *TabularDataset) Batch(indices []int) ([][]float32, []float32, error) {
	inputs := make([][]float32, len(indices))
	labels := make([]float32, len(indices))
	for pos, idx := range indices {
		if idx < 0 || idx >= len(d.features) {
			return nil, nil, fmt.Errorf("index %d out of range [0, %d)", idx, len(d.features))
		}
		inputs[pos] = d.features[idx]
		labels[pos] = d.labels[idx]
	}
	return inputs, labels, nil
}

// Shuffle re-seeds the dataset RNG and permutes the iteration order used by
// Yield. Batch and Example are unaffected; they address rows directly.
func (d *TabularDataset) Shuffle(seed int64) {
	d.rand = rand.New(rand.NewSource(seed))
	d.rand.Shuffle(len(d.perm), func(i, j int) {
		d.perm[i], d.perm[j] = d.perm[j], d.perm[i]
	})
	d.cursor = 0
}

// TabularBatchFlat stores a batch in flat contiguous buffers, ready for
// tensor conversion.
type TabularBatchFlat struct {
	Inputs    []float32
	Labels    []float32
	BatchSize int
	InputDim  int
}

// MakeTabularBatchFlat flattens a batch into contiguous buffers.
func MakeTabularBatchFlat(inputs [][]float32, labels []float32) (*TabularBatchFlat, error) {
	if len(inputs) != len(labels) {
		return nil, fmt.Errorf("inputs and labels batch sizes don't match: %d != %d", len(inputs), len(labels))
	}
	if len(inputs) == 0 {
		return &TabularBatchFlat{}, nil
	}

	batchSize := len(inputs)
	inputDim := len(inputs[0])
	flatInputs := make([]float32, batchSize*inputDim)
	flatLabels := make([]float32, batchSize)

	for i := range batchSize {
		if len(inputs[i]) != inputDim {
			return nil, fmt.Errorf("inconsistent input dimensions at example %d: expected %d, got %d",
				i, inputDim, len(inputs[i]))
		}
		copy(flatInputs[i*inputDim:], inputs[i])
		flatLabels[i] = labels[i]
	}

	return &TabularBatchFlat{
		Inputs:    flatInputs,
		Labels:    flatLabels,
		BatchSize: batchSize,
		InputDim:  inputDim,
	}, nil
}

// ToGomlxTensors converts the flat batch to gomlx tensors: inputs of shape
// [batch][inputDim], labels of shape [batch][1].
func (b *TabularBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.BatchSize == 0 || b.InputDim == 0 {
		emptyInputs := make([][]float32, 0)
		emptyLabels := make([][]float32, 0)
		return tensors.FromAnyValue(emptyInputs), tensors.FromAnyValue(emptyLabels), nil
	}
	inputs := make([][]float32, b.BatchSize)
	labels := make([][]float32, b.BatchSize)
	for i := range b.BatchSize {
		inputs[i] = b.Inputs[i*b.InputDim : (i+1)*b.InputDim]
		labels[i] = b.Labels[i : i+1]
	}
	return tensors.FromAnyValue(inputs), tensors.FromAnyValue(labels), nil
}

// Tensors reads a batch of examples and returns them as gomlx tensors.
func (d *TabularDataset) Tensors(indices []int) (*tensors.Tensor, *tensors.Tensor, error) {
	inputs, labels, err := d.Batch(indices)
	if err != nil {
		return nil, nil, err
	}
	flat, err := MakeTabularBatchFlat(inputs, labels)
	if err != nil {
		return nil, nil, err
	}
	return flat.ToGomlxTensors()
}

// Name returns the name of the dataset.
func (d *TabularDataset) Name() string {
	return "TabularDataset"
}

// Yield returns the next batch in iteration order for the gomlx Dataset
// interface. Batch size is the BatchSize field; the final batch of an epoch
// may be short. Returns an error when the epoch is exhausted; call Restart
// to begin a new epoch.
func (d *TabularDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.cursor >= len(d.perm) {
		return nil, nil, nil, fmt.Errorf("epoch exhausted after %d examples", len(d.perm))
	}
	end := d.cursor + d.BatchSize
	if end > len(d.perm) {
		end = len(d.perm)
	}
	indices := d.perm[d.cursor:end]
	d.cursor = end

	in, lab, err := d.Tensors(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, []*tensors.Tensor{in}, []*tensors.Tensor{lab}, nil
}

// Restart resets the dataset for a new epoch.
func (d *TabularDataset) Restart() error {
	d.cursor = 0
	return nil
}
