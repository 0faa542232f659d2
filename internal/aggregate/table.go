package aggregate

import (
	"bytes"
	"sort"
)

const (
	fnv1aOffset64 = 14695981039346656037
	fnv1aPrime64  = 1099511628211

	// power of 2 for fast modulo
	initialSlots = 1 << 12
)

type entry struct {
	hash uint64
	key  []byte
	agg  Aggregate
}

// Table maps station names to aggregates. It is an open-addressed hash table
// using the FNV-1a hash of the name, with linear probing. Keys passed to Add
// are stored as given, not copied, so they must outlive the table unless the
// table was created by Merge.
//
// A Table is not safe for concurrent use.
type Table struct {
	// slots holds 1 + the index into entries, 0 for empty
	slots   []int32
	entries []entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		slots:   make([]int32, initialSlots),
		entries: make([]entry, 0, initialSlots/2),
	}
}

func hashKey(key []byte) uint64 {
	h := uint64(fnv1aOffset64)
	for _, b := range key {
		h ^= uint64(b)
		h *= fnv1aPrime64
	}
	return h
}

// lookup returns the entry for key, inserting a zero entry if absent.
func (t *Table) lookup(key []byte, h uint64) (e *entry, inserted bool) {
	mask := uint64(len(t.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		s := t.slots[i]
		if s == 0 {
			if 2*(len(t.entries)+1) > len(t.slots) {
				t.grow()
				return t.lookup(key, h)
			}
			t.entries = append(t.entries, entry{hash: h, key: key})
			t.slots[i] = int32(len(t.entries))
			return &t.entries[len(t.entries)-1], true
		}
		e := &t.entries[s-1]
		if e.hash == h && bytes.Equal(e.key, key) {
			return e, false
		}
	}
}

func (t *Table) grow() {
	slots := make([]int32, 2*len(t.slots))
	mask := uint64(len(slots) - 1)
	for idx := range t.entries {
		i := t.entries[idx].hash & mask
		for slots[i] != 0 {
			i = (i + 1) & mask
		}
		slots[i] = int32(idx + 1)
	}
	t.slots = slots
}

// Add folds one measurement of station into the table.
func (t *Table) Add(station []byte, tenths int64) {
	e, inserted := t.lookup(station, hashKey(station))
	if inserted {
		e.agg = New(tenths)
		return
	}
	e.agg.Add(tenths)
}

// mergeOwned folds agg into the table, copying station on first sight.
func (t *Table) mergeOwned(station []byte, h uint64, agg Aggregate) {
	e, inserted := t.lookup(station, h)
	if inserted {
		e.key = bytes.Clone(station)
		e.agg = agg
		return
	}
	e.agg.Merge(agg)
}

// Get returns the aggregate for station.
func (t *Table) Get(station string) (Aggregate, bool) {
	key := []byte(station)
	mask := uint64(len(t.slots) - 1)
	h := hashKey(key)
	for i := h & mask; ; i = (i + 1) & mask {
		s := t.slots[i]
		if s == 0 {
			return Aggregate{}, false
		}
		if e := &t.entries[s-1]; e.hash == h && bytes.Equal(e.key, key) {
			return e.agg, true
		}
	}
}

// Len returns the number of distinct stations.
func (t *Table) Len() int { return len(t.entries) }

// Each calls fn for every station in insertion order. The station slice must
// not be retained beyond the table's key lifetime.
func (t *Table) Each(fn func(station []byte, agg Aggregate)) {
	for i := range t.entries {
		fn(t.entries[i].key, t.entries[i].agg)
	}
}

// Stations returns the station names in byte order.
func (t *Table) Stations() []string {
	names := make([]string, 0, len(t.entries))
	for i := range t.entries {
		names = append(names, string(t.entries[i].key))
	}
	sort.Strings(names)
	return names
}

// Map copies the table into a map keyed by station name.
func (t *Table) Map() map[string]Aggregate {
	m := make(map[string]Aggregate, len(t.entries))
	for i := range t.entries {
		m[string(t.entries[i].key)] = t.entries[i].agg
	}
	return m
}

// Merge folds tables left to right into a new table that owns copies of its
// keys, one per distinct station. The inputs are not modified and may be
// discarded, together with the buffers they borrow from, afterwards.
func Merge(tables ...*Table) *Table {
	merged := NewTable()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for i := range t.entries {
			e := &t.entries[i]
			merged.mergeOwned(e.key, e.hash, e.agg)
		}
	}
	return merged
}
