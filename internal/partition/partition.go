// Package partition splits a measurements buffer into record-aligned ranges.
package partition

import (
	"bytes"
	"fmt"
)

// Range is the half-open byte interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }

// ConfigError reports a partition count the data cannot support.
type ConfigError struct {
	Requested int
	Length    int
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cannot split %d bytes into %d partitions: %s", e.Length, e.Requested, e.Reason)
}

// Split returns n contiguous ranges covering data. Every internal boundary
// falls one byte after a '\n', so no range splits a line.
//
// The i-th boundary is the first line start at or after i*len(data)/n. When the
// data has too few lines to give each range at least one of them, Split
// returns a *ConfigError instead of fewer ranges.
func Split(data []byte, n int) ([]Range, error) {
	if n < 1 {
		return nil, &ConfigError{Requested: n, Length: len(data), Reason: "partition count must be positive"}
	}
	if n == 1 {
		return []Range{{Start: 0, End: len(data)}}, nil
	}
	if len(data) < n {
		return nil, &ConfigError{Requested: n, Length: len(data), Reason: "fewer bytes than partitions"}
	}

	divisionSize := len(data) / n
	ranges := make([]Range, 0, n)
	start := 0
	for i := 1; i < n; i++ {
		candidate := max(i*divisionSize, start+1)
		// search from candidate-1 so a candidate already at a line start is kept
		nlPos := bytes.IndexByte(data[candidate-1:], '\n')
		if nlPos == -1 {
			return nil, &ConfigError{
				Requested: n,
				Length:    len(data),
				Reason:    fmt.Sprintf("no line terminator after offset %d", candidate),
			}
		}
		end := candidate + nlPos
		if end >= len(data) {
			return nil, &ConfigError{
				Requested: n,
				Length:    len(data),
				Reason:    fmt.Sprintf("only %d record-aligned partitions available", i),
			}
		}
		ranges = append(ranges, Range{Start: start, End: end})
		start = end
	}
	return append(ranges, Range{Start: start, End: len(data)}), nil
}

// Feasible returns the largest partition count not above n that Split
// accepts for data, or 1 when the data cannot be split at all.
func Feasible(data []byte, n int) int {
	for ; n > 1; n-- {
		if _, err := Split(data, n); err == nil {
			return n
		}
	}
	return 1
}
