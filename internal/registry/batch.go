package registry

import "fmt"

// Batch is a half-open index range [Start, End) into a slice.
type Batch struct {
	Start int
	End   int
}

// SplitBatches splits n items into batches of at most batchSize.
func SplitBatches(n, batchSize int) ([]Batch, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if n < 0 {
		return nil, fmt.Errorf("item count must be >= 0")
	}

	batches := make([]Batch, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		batches = append(batches, Batch{Start: start, End: end})
	}
	return batches, nil
}
