package features

import (
	"math"

	"power-vol-lab/internal/frame"
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// rollStat selects the statistic a rolling pass emits.
type rollStat int

const (
	rollMean rollStat = iota
	rollStd
)

// window is a fixed-size trailing window over nullable cells, maintained
// incrementally so each grouped pass stays linear. NULL cells occupy window
// positions but do not enter the statistic or the min-periods count.
type window struct {
	size       int
	minPeriods int

	buf  []*float64 // ring buffer of the last size cells
	head int
	n    int

	count int // non-null cells currently in the window
	sum   float64
	sumSq float64
}

func newWindow(size, minPeriods int) *window {
	return &window{
		size:       size,
		minPeriods: minPeriods,
		buf:        make([]*float64, size),
	}
}

// push appends a cell, evicting the oldest once the window is full.
// Non-finite cells are treated as missing: once a NaN entered sum/sumSq it
// would never leave, since evicting it subtracts NaN again.
func (w *window) push(v *float64) {
	if v != nil && !isFinite(*v) {
		v = nil
	}
	if w.n == w.size {
		if old := w.buf[w.head]; old != nil {
			w.count--
			w.sum -= *old
			w.sumSq -= *old * *old
		}
	} else {
		w.n++
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % w.size
	if v != nil {
		w.count++
		w.sum += *v
		w.sumSq += *v * *v
	}
}

// mean returns the window mean, or nil below min-periods.
func (w *window) mean() *float64 {
	if w.count < w.minPeriods {
		return nil
	}
	m := w.sum / float64(w.count)
	return &m
}

// std returns the sample standard deviation (n-1 denominator), or nil below
// min-periods or with fewer than two values.
func (w *window) std() *float64 {
	if w.count < w.minPeriods || w.count < 2 {
		return nil
	}
	mean := w.sum / float64(w.count)
	variance := (w.sumSq - w.sum*mean) / float64(w.count-1)
	if variance < 0 {
		variance = 0 // float cancellation on near-constant windows
	}
	s := math.Sqrt(variance)
	return &s
}

func (w *window) stat(kind rollStat) *float64 {
	if kind == rollStd {
		return w.std()
	}
	return w.mean()
}

// lagColumn returns src shifted by k rows within each COUNTRY group.
// The first k rows of every group are NULL. f must already be sorted by
// (COUNTRY, DAY_ID) so groups are contiguous.
func lagColumn(f *frame.Frame, src []*float64, k int) []*float64 {
	out := make([]*float64, f.Len())
	var history []*float64
	prevCountry := ""

	for i := 0; i < f.Len(); i++ {
		if i == 0 || f.Country(i) != prevCountry {
			history = history[:0]
			prevCountry = f.Country(i)
		}
		if len(history) >= k {
			if v := history[len(history)-k]; v != nil {
				vv := *v
				out[i] = &vv
			}
		}
		history = append(history, src[i])
	}
	return out
}

// rollColumn computes a trailing rolling statistic of src per COUNTRY group,
// shifted one extra row so the window for row i ends at row i-1. f must
// already be sorted by (COUNTRY, DAY_ID).
func rollColumn(f *frame.Frame, src []*float64, size, minPeriods int, kind rollStat) []*float64 {
	out := make([]*float64, f.Len())
	var w *window
	prevCountry := ""

	for i := 0; i < f.Len(); i++ {
		if i == 0 || f.Country(i) != prevCountry {
			w = newWindow(size, minPeriods)
			prevCountry = f.Country(i)
		}
		out[i] = w.stat(kind)
		w.push(src[i])
	}
	return out
}
