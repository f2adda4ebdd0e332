// Package countmin provides count-min sketches: fixed-size frequency
// summaries with one-sided error (counts may be overestimated, never
// underestimated).
package countmin

import (
	"errors"
	"fmt"
	"math"
)

// MaxRows is the maximum number of rows (hash functions) in a Sketch.
const MaxRows = 256

// A Sketch is a count-min sketch of 32-bit event hashes. Counters
// saturate at math.MaxUint32 instead of wrapping around.
type Sketch struct {
	rows  [][]uint32
	ncols uint32
}

// New constructs a sketch with the given dimensions. The error of an
// estimate is at most 2N/ncols with probability 1 - (1/2)^nrows, where N
// is the total number of events.
func New(nrows, ncols int) (*Sketch, error) {
	if nrows < 1 || nrows > MaxRows {
		return nil, fmt.Errorf("countmin: nrows must be in [1, %d], got %d",
			MaxRows, nrows)
	}
	if ncols < 1 {
		return nil, fmt.Errorf("countmin: ncols must be at least 1, got %d", ncols)
	}

	rows := make([][]uint32, nrows)
	for i := range rows {
		rows[i] = make([]uint32, ncols)
	}
	return &Sketch{rows: rows, ncols: uint32(ncols)}, nil
}

// NewFromProb constructs a sketch with error at most ε (relative to the
// total number of events) with probability 1-δ.
func NewFromProb(ε, δ float64) (*Sketch, error) {
	if ε <= 0 || ε >= 1 {
		return nil, fmt.Errorf("countmin: ε=%f not in (0, 1)", ε)
	}
	if δ <= 0 || δ >= 1 {
		return nil, fmt.Errorf("countmin: δ=%f not in (0, 1)", δ)
	}
	nrows := int(math.Ceil(math.Log(1 / δ)))
	ncols := int(math.Ceil(math.E / ε))
	return New(nrows, ncols)
}

// NewFromCounts constructs a sketch from a matrix of counts, e.g. one
// obtained from Counts on another sketch.
func NewFromCounts(rows [][]uint32) (*Sketch, error) {
	if len(rows) == 0 {
		return nil, errors.New("countmin: no rows")
	}
	ncols := -1
	for _, row := range rows {
		switch {
		case row == nil:
			return nil, errors.New("countmin: nil row")
		case ncols == -1:
			ncols = len(row)
		case len(row) != ncols:
			return nil, fmt.Errorf("countmin: rows of unequal length %d and %d",
				ncols, len(row))
		}
	}
	if ncols == 0 {
		return nil, errors.New("countmin: empty rows")
	}
	if len(rows) > MaxRows {
		return nil, fmt.Errorf("countmin: too many rows (%d)", len(rows))
	}
	return &Sketch{rows: rows, ncols: uint32(ncols)}, nil
}

// Copy returns a deep copy of the sketch.
func (cm *Sketch) Copy() *Sketch {
	rows := make([][]uint32, len(cm.rows))
	for i, row := range cm.rows {
		rows[i] = make([]uint32, len(row))
		copy(rows[i], row)
	}
	return &Sketch{rows: rows, ncols: cm.ncols}
}

func (cm *Sketch) NRows() int { return len(cm.rows) }
func (cm *Sketch) NCols() int { return int(cm.ncols) }

// Counts returns the raw counters as a matrix, one row per hash function.
// The returned slices share storage with the sketch.
func (cm *Sketch) Counts() [][]uint32 {
	return cm.rows
}

// splitmix and fmix32 (from MurmurHash3) give each row an independent
// permutation of the event hash.
func rowSeed(i int) uint32 {
	z := uint64(i+1) * 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return uint32(z ^ (z >> 31))
}

func (cm *Sketch) index(i int, h uint32) uint32 {
	x := h ^ rowSeed(i)
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x % cm.ncols
}

func saturate(a, b uint32) uint32 {
	if math.MaxUint32-a < b {
		return math.MaxUint32
	}
	return a + b
}

// Add records count occurrences of an event with hash h.
func (cm *Sketch) Add(h, count uint32) {
	for i := range cm.rows {
		j := cm.index(i, h)
		cm.rows[i][j] = saturate(cm.rows[i][j], count)
	}
}

// Add1 records a single occurrence of an event with hash h.
func (cm *Sketch) Add1(h uint32) {
	cm.Add(h, 1)
}

// AddCU records count occurrences of an event with hash h using the
// conservative update rule: counters are only raised as far as needed to
// make Get return at least the old estimate plus count. Slightly slower
// than Add, but tighter estimates.
func (cm *Sketch) AddCU(h, count uint32) {
	estimate := saturate(cm.Get(h), count)
	for i := range cm.rows {
		j := cm.index(i, h)
		if cm.rows[i][j] < estimate {
			cm.rows[i][j] = estimate
		}
	}
}

// Get estimates the number of occurrences of the event with hash h. The
// estimate is never less than the true count.
func (cm *Sketch) Get(h uint32) uint32 {
	min := uint32(math.MaxUint32)
	for i := range cm.rows {
		if c := cm.rows[i][cm.index(i, h)]; c < min {
			min = c
		}
	}
	return min
}

// Sum adds the counts in other to cm, so that cm summarizes the union of
// both event streams. The sketches must have equal dimensions.
func (cm *Sketch) Sum(other *Sketch) error {
	if len(cm.rows) != len(other.rows) || cm.ncols != other.ncols {
		return fmt.Errorf("countmin: dimensions %d×%d and %d×%d don't match",
			len(cm.rows), cm.ncols, len(other.rows), other.ncols)
	}
	for i, row := range other.rows {
		for j, c := range row {
			cm.rows[i][j] = saturate(cm.rows[i][j], c)
		}
	}
	return nil
}
