package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// This package turns raw house-price CSV tables into numeric feature
// matrices suitable for model training, and writes the final prediction
// table back out.
//
// Layout and intended usage:
//
// RawTable
//   - One CSV file loaded into memory: header-named columns, string cells.
//   - Empty cells and the literal "NA" are treated as missing values.
//
// Encode
//   - Takes the train and test RawTables and produces aligned feature
//     matrices plus the label vector. Numeric columns are standardized with
//     statistics computed over both tables; categorical columns are expanded
//     into indicator columns from a vocabulary collected over both tables,
//     so the train and test matrices always share the same column set and
//     order.
//
// TabularDataset
//   - Wraps an encoded feature matrix + labels and presents them as a
//     batched dataset. Batches can be flattened into contiguous buffers and
//     converted to gomlx tensors, and the dataset implements the method set
//     gomlx training loops expect (Yield/Restart/Name).
//
// Notes on gomlx tensors:
//   - Converting batches into gomlx tensors is a small, well-defined step
//     (tensors.FromAnyValue on [][]float32). The trainer in the mlp package
//     consumes the plain Batch form; the tensor conversion is for callers
//     that want to feed the encoded data to gomlx directly.
type Dataset interface {
	Len() int
	Example(i int) (input []float32, label float32, err error)
	Batch(indices []int) (inputs [][]float32, labels []float32, err error)
	Shuffle(seed int64)

	// To implement gomlx's train.Dataset interface
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
}
