// Package aggregate accumulates per-station temperature statistics.
//
// All temperatures are integers in tenths of a degree. A partition is
// scanned into a Table whose keys borrow from the scanned buffer; Merge
// folds such tables into one that owns its keys.
package aggregate

// Aggregate is the running count, sum, min and max of one station.
type Aggregate struct {
	Count    uint64
	Sum      int64
	Min, Max int64
}

// New returns the aggregate of a single measurement.
func New(tenths int64) Aggregate {
	return Aggregate{Count: 1, Sum: tenths, Min: tenths, Max: tenths}
}

// Add folds one measurement into a.
func (a *Aggregate) Add(tenths int64) {
	a.Count++
	a.Sum += tenths
	a.Min = min(a.Min, tenths)
	a.Max = max(a.Max, tenths)
}

// Merge folds o into a.
func (a *Aggregate) Merge(o Aggregate) {
	a.Count += o.Count
	a.Sum += o.Sum
	a.Min = min(a.Min, o.Min)
	a.Max = max(a.Max, o.Max)
}

// Mean returns the average in tenths.
func (a Aggregate) Mean() float64 {
	return float64(a.Sum) / float64(a.Count)
}
