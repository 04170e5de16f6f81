package features

import (
	"sort"

	"power-vol-lab/internal/frame"
)

// dayRank computes the per-day cross-sectional rank of src: within each
// DAY_ID group, the average-tie rank of the cell among that day's non-null
// cells, divided by the full group size (null cells count toward the size but
// rank as NULL). Results are in (0, 1].
func dayRank(f *frame.Frame, src []*float64) []*float64 {
	out := make([]*float64, f.Len())

	groups := make(map[string][]int)
	var keys []string
	for i := 0; i < f.Len(); i++ {
		key := f.Day(i).Key()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range keys {
		rows := groups[key]
		size := float64(len(rows))

		// Rank only the non-null cells, ordered by value.
		var ranked []int
		for _, i := range rows {
			if src[i] != nil {
				ranked = append(ranked, i)
			}
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return *src[ranked[a]] < *src[ranked[b]]
		})

		// Average-tie ranks, 1-based.
		for lo := 0; lo < len(ranked); {
			hi := lo
			for hi+1 < len(ranked) && *src[ranked[hi+1]] == *src[ranked[lo]] {
				hi++
			}
			avg := (float64(lo+1) + float64(hi+1)) / 2
			for j := lo; j <= hi; j++ {
				r := avg / size
				out[ranked[j]] = &r
			}
			lo = hi + 1
		}
	}
	return out
}
