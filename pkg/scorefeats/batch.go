package scorefeats

import "fmt"

// PadRows right-pads each row with zeros to the length of the longest row
// and returns the padded rows plus each row's true length. The input rows
// are not modified.
func PadRows(rows [][]int64) (padded [][]int64, lengths []int) {
	maxLen := 0
	for _, r := range rows {
		if len(r) > maxLen {
			maxLen = len(r)
		}
	}
	padded = make([][]int64, len(rows))
	lengths = make([]int, len(rows))
	for i, r := range rows {
		row := make([]int64, maxLen)
		copy(row, r)
		padded[i] = row
		lengths[i] = len(r)
	}
	return padded, lengths
}

// PadLabelRows right-pads each [T][D] label matrix with zero rows to the
// longest T in the batch. All matrices must share the same label dimension
// D. Returns the padded batch plus each item's true length.
func PadLabelRows(items [][][]float64) (padded [][][]float64, lengths []int, err error) {
	maxLen, dim := 0, -1
	for i, item := range items {
		if len(item) > maxLen {
			maxLen = len(item)
		}
		for _, row := range item {
			if dim == -1 {
				dim = len(row)
			} else if len(row) != dim {
				return nil, nil, fmt.Errorf("%w: item %d has label dim %d, want %d",
					ErrShapeMismatch, i, len(row), dim)
			}
		}
	}
	if dim == -1 {
		dim = 0
	}
	padded = make([][][]float64, len(items))
	lengths = make([]int, len(items))
	for i, item := range items {
		m := make([][]float64, maxLen)
		for t := range m {
			m[t] = make([]float64, dim)
			if t < len(item) {
				copy(m[t], item[t])
			}
		}
		padded[i] = m
		lengths[i] = len(item)
	}
	return padded, lengths, nil
}

// checkLengths validates a per-item valid-length vector against the batch
// size and a capacity. lengths may be nil (no masking).
func checkLengths(lengths []int, batch, capacity int, stream string) error {
	if lengths == nil {
		return nil
	}
	if len(lengths) != batch {
		return fmt.Errorf("%w: %s lengths has %d entries for batch of %d",
			ErrShapeMismatch, stream, len(lengths), batch)
	}
	for i, n := range lengths {
		if n < 0 || n > capacity {
			return fmt.Errorf("%w: %s length %d for item %d, capacity %d",
				ErrLengthOutOfRange, stream, n, i, capacity)
		}
	}
	return nil
}
