package features

import (
	"errors"
	"math"
	"sort"
	"testing"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/frame"
)

func ptr(v float64) *float64 { return &v }

// twoCountryFrame builds a frame with DE and FR rows over consecutive numeric
// days. DE rows get odd IDs, FR rows even. Per-column values come from the
// value functions, keyed by country and day.
func twoCountryFrame(t *testing.T, days int, cols map[string]func(country string, day int) *float64) *frame.Frame {
	t.Helper()

	var obs []*domain.Observation
	for day := 1; day <= days; day++ {
		for i, country := range []string{"DE", "FR"} {
			o := &domain.Observation{
				ID:      int64(2*day - 1 + i),
				DayID:   domain.Day{Kind: domain.DayNumeric, Num: float64(day)},
				Country: country,
			}
			for col, fn := range cols {
				o.SetRawValue(col, fn(country, day))
			}
			obs = append(obs, o)
		}
	}

	var present []string
	for col := range cols {
		present = append(present, col)
	}
	sort.Strings(present)
	df, err := frame.FromObservations(obs, present)
	if err != nil {
		t.Fatalf("FromObservations failed: %v", err)
	}
	return df
}

// findRow returns the index of the row with the given ID.
func findRow(t *testing.T, df *frame.Frame, id int64) int {
	t.Helper()
	for i := 0; i < df.Len(); i++ {
		if df.ID(i) == id {
			return i
		}
	}
	t.Fatalf("No row with ID %d", id)
	return -1
}

// assertCell checks a single nullable cell against an expected value, nil
// meaning NULL.
func assertCell(t *testing.T, df *frame.Frame, col string, id int64, want *float64) {
	t.Helper()
	got := df.Value(col, findRow(t, df, id))
	switch {
	case want == nil && got != nil:
		t.Errorf("%s id=%d = %v, want NULL", col, id, *got)
	case want != nil && got == nil:
		t.Errorf("%s id=%d = NULL, want %v", col, id, *want)
	case want != nil && got != nil && math.Abs(*got-*want) > 1e-9:
		t.Errorf("%s id=%d = %v, want %v", col, id, *got, *want)
	}
}

func constCol(v float64) func(string, int) *float64 {
	return func(string, int) *float64 { return ptr(v) }
}

func TestBuild_MissingTarget(t *testing.T) {
	df := twoCountryFrame(t, 3, map[string]func(string, int) *float64{
		domain.ColGasRet: constCol(0.01),
	})

	_, err := Build(df, nil, Config{AddTarget: true})
	if !errors.Is(err, ErrMissingTarget) {
		t.Errorf("Build error = %v, want ErrMissingTarget", err)
	}
}

func TestBuild_IDMismatch(t *testing.T) {
	df := twoCountryFrame(t, 2, map[string]func(string, int) *float64{
		domain.ColGasRet: constCol(0.01),
	})

	// Wrong length
	_, err := Build(df, []*domain.Target{{ID: 1, Value: 0.1}}, Config{AddTarget: true})
	if !errors.Is(err, ErrIDMismatch) {
		t.Errorf("Build error = %v, want ErrIDMismatch for short target table", err)
	}

	// Right length, wrong IDs
	targets := []*domain.Target{
		{ID: 1, Value: 0.1}, {ID: 2, Value: 0.1},
		{ID: 3, Value: 0.1}, {ID: 99, Value: 0.1},
	}
	_, err = Build(df, targets, Config{AddTarget: true})
	if !errors.Is(err, ErrIDMismatch) {
		t.Errorf("Build error = %v, want ErrIDMismatch for mismatched IDs", err)
	}
}

func TestBuild_InputNotMutated(t *testing.T) {
	df := twoCountryFrame(t, 3, map[string]func(string, int) *float64{
		domain.ColGasRet: func(country string, day int) *float64 { return ptr(float64(day)) },
	})
	wantCols := len(df.Columns())
	wantID := df.ID(0)

	if _, err := Build(df, nil, Config{}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(df.Columns()) != wantCols {
		t.Errorf("Input gained columns: %d -> %d", wantCols, len(df.Columns()))
	}
	if df.ID(0) != wantID {
		t.Errorf("Input rows reordered: first ID %d -> %d", wantID, df.ID(0))
	}
}

func TestBuild_CountryFlag(t *testing.T) {
	df := twoCountryFrame(t, 2, map[string]func(string, int) *float64{
		domain.ColGasRet: constCol(0.01),
	})

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i := 0; i < built.Len(); i++ {
		want := 0.0
		if built.Country(i) == "FR" {
			want = 1.0
		}
		if v := built.Value(ColIsFR, i); v == nil || *v != want {
			t.Errorf("IS_FR for %s = %v, want %v", built.Country(i), v, want)
		}
	}
}

func TestBuild_LagFirstDayNull(t *testing.T) {
	df := twoCountryFrame(t, 4, map[string]func(string, int) *float64{
		domain.ColGasRet: func(country string, day int) *float64 {
			v := float64(day)
			if country == "FR" {
				v += 100
			}
			return ptr(v)
		},
	})

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	lag := lagged(domain.ColGasRet)
	// First day per country is NULL, later rows see the previous day's value
	// of the same country.
	assertCell(t, built, lag, 1, nil)
	assertCell(t, built, lag, 2, nil)
	assertCell(t, built, lag, 3, ptr(1))
	assertCell(t, built, lag, 4, ptr(101))
	assertCell(t, built, lag, 7, ptr(3))
	assertCell(t, built, lag, 8, ptr(103))
}

func TestBuild_LoadImbalanceSpread(t *testing.T) {
	df := twoCountryFrame(t, 3, map[string]func(string, int) *float64{
		domain.ColDEResidualLoad: constCol(100),
		domain.ColFRResidualLoad: constCol(80),
	})

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Spread of lagged columns: NULL on each country's first day, then the
	// constant difference.
	assertCell(t, built, ColLoadImbalance, 1, nil)
	assertCell(t, built, ColLoadImbalance, 2, nil)
	assertCell(t, built, ColLoadImbalance, 3, ptr(20))
	assertCell(t, built, ColLoadImbalance, 6, ptr(20))
}

func TestBuild_SpreadNullPropagation(t *testing.T) {
	df := twoCountryFrame(t, 3, map[string]func(string, int) *float64{
		domain.ColDEResidualLoad: constCol(100),
		domain.ColFRResidualLoad: func(country string, day int) *float64 {
			if day == 1 {
				return nil
			}
			return ptr(80)
		},
	})

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Day 2 sees day 1's NULL on the FR side of the spread.
	assertCell(t, built, ColLoadImbalance, 3, nil)
	assertCell(t, built, ColLoadImbalance, 5, ptr(20))
}

func TestBuild_ResidualStressEps(t *testing.T) {
	df := twoCountryFrame(t, 2, map[string]func(string, int) *float64{
		domain.ColDEResidualLoad: constCol(50),
		domain.ColDEConsumption:  constCol(0),
	})

	built, err := Build(df, nil, Config{Eps: 1e-6})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Zero consumption divides by eps instead of zero.
	assertCell(t, built, ColDEResidualStress, 3, ptr(50/1e-6))
}

func TestBuild_VolatilityLags(t *testing.T) {
	df := twoCountryFrame(t, 8, map[string]func(string, int) *float64{
		domain.ColGasRet: constCol(0.01),
	})

	var targets []*domain.Target
	for day := 1; day <= 8; day++ {
		targets = append(targets,
			&domain.Target{ID: int64(2*day - 1), Value: float64(day)},
			&domain.Target{ID: int64(2 * day), Value: float64(day) + 100},
		)
	}

	built, err := Build(df, targets, Config{AddTarget: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// volatility carries the merged target
	assertCell(t, built, ColVolatility, 5, ptr(3))
	assertCell(t, built, ColVolatility, 6, ptr(103))

	// Lags within the DE group (odd IDs, value = day)
	assertCell(t, built, "vol_lag1", 1, nil)
	assertCell(t, built, "vol_lag1", 5, ptr(2))
	assertCell(t, built, "vol_lag3", 5, nil)
	assertCell(t, built, "vol_lag3", 9, ptr(2))
	assertCell(t, built, "vol_lag7", 15, ptr(1))

	// FR lags never see DE values
	assertCell(t, built, "vol_lag1", 4, ptr(101))
}

func TestBuild_VolatilityRollingShifted(t *testing.T) {
	df := twoCountryFrame(t, 6, map[string]func(string, int) *float64{
		domain.ColGasRet: constCol(0.01),
	})

	var targets []*domain.Target
	for day := 1; day <= 6; day++ {
		targets = append(targets,
			&domain.Target{ID: int64(2*day - 1), Value: float64(day)},
			&domain.Target{ID: int64(2 * day), Value: float64(day)},
		)
	}

	built, err := Build(df, targets, Config{AddTarget: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// min_periods=3 with the extra one-row shift: the first defined mean is at
	// the fourth row of the group, over the first three values.
	assertCell(t, built, "vol_roll_mean_7", 1, nil)
	assertCell(t, built, "vol_roll_mean_7", 3, nil)
	assertCell(t, built, "vol_roll_mean_7", 5, nil)
	assertCell(t, built, "vol_roll_mean_7", 7, ptr(2)) // mean(1,2,3)
	assertCell(t, built, "vol_roll_mean_7", 9, ptr(2.5))

	// Sample std of 1,2,3
	assertCell(t, built, "vol_roll_std_7", 7, ptr(1))
}

func TestBuild_DayRank(t *testing.T) {
	df := twoCountryFrame(t, 3, map[string]func(string, int) *float64{
		domain.ColDEResidualLoad: func(country string, day int) *float64 {
			v := float64(day * 10)
			if country == "FR" {
				v += 5
			}
			return ptr(v)
		},
	})

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	rank := domain.ColDEResidualLoad + "_day_rank"
	if !built.Has(rank) {
		t.Fatalf("Missing column %s", rank)
	}

	// Day 1 lags are NULL for both countries, so both ranks are NULL while
	// the group size still counts both rows.
	assertCell(t, built, rank, 1, nil)
	assertCell(t, built, rank, 2, nil)

	// Day 2: DE lag 10 < FR lag 15, two rows in the group.
	assertCell(t, built, rank, 3, ptr(0.5))
	assertCell(t, built, rank, 4, ptr(1))

	// Ranks stay in (0, 1]
	for i := 0; i < built.Len(); i++ {
		if v := built.Value(rank, i); v != nil && (*v <= 0 || *v > 1) {
			t.Errorf("Rank out of (0,1] at row %d: %v", i, *v)
		}
	}
}

func TestBuild_DayRankAverageTies(t *testing.T) {
	df := twoCountryFrame(t, 2, map[string]func(string, int) *float64{
		domain.ColDEResidualLoad: constCol(10),
	})

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Day 2 lags tie at 10: both get the average of ranks 1 and 2 over a
	// group of two.
	rank := domain.ColDEResidualLoad + "_day_rank"
	assertCell(t, built, rank, 3, ptr(0.75))
	assertCell(t, built, rank, 4, ptr(0.75))
}

func TestBuild_SkipsAbsentColumns(t *testing.T) {
	df := twoCountryFrame(t, 3, map[string]func(string, int) *float64{
		domain.ColGasRet: constCol(0.01),
	})

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !built.Has(lagged(domain.ColGasRet)) {
		t.Error("Expected lagged GAS_RET column")
	}
	if !built.Has(ColGasRet30m) {
		t.Error("Expected GAS_RET_30m, its only input is present")
	}
	for _, absent := range []string{ColLoadImbalance, ColGasCoalSpread, ColTotalFlow, ColLoadXGas} {
		if built.Has(absent) {
			t.Errorf("Column %s built despite missing inputs", absent)
		}
	}
}

func TestBuild_DayNormalization(t *testing.T) {
	// Raw-text numeric days must sort numerically after normalization, so day
	// "10" comes after day "2".
	obs := []*domain.Observation{
		{ID: 1, DayID: domain.Day{Kind: domain.DayRaw, Raw: "10"}, Country: "DE", GasRet: ptr(3)},
		{ID: 2, DayID: domain.Day{Kind: domain.DayRaw, Raw: "2"}, Country: "DE", GasRet: ptr(1)},
		{ID: 3, DayID: domain.Day{Kind: domain.DayRaw, Raw: "5"}, Country: "DE", GasRet: ptr(2)},
	}
	df, err := frame.FromObservations(obs, []string{domain.ColGasRet})
	if err != nil {
		t.Fatalf("FromObservations failed: %v", err)
	}

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	lag := lagged(domain.ColGasRet)
	assertCell(t, built, lag, 2, nil)    // day 2, first
	assertCell(t, built, lag, 3, ptr(1)) // day 5 sees day 2
	assertCell(t, built, lag, 1, ptr(2)) // day 10 sees day 5
}

func TestBuild_DayNormalizationAtomic(t *testing.T) {
	// One unparseable cell keeps the whole column raw: parseable cells must
	// not be converted, so day "10" still sorts as text before day "2".
	obs := []*domain.Observation{
		{ID: 1, DayID: domain.RawDay("2"), Country: "DE", GasRet: ptr(1)},
		{ID: 2, DayID: domain.RawDay("banana"), Country: "DE", GasRet: ptr(2)},
		{ID: 3, DayID: domain.RawDay("10"), Country: "DE", GasRet: ptr(3)},
	}
	df, err := frame.FromObservations(obs, []string{domain.ColGasRet})
	if err != nil {
		t.Fatalf("FromObservations failed: %v", err)
	}

	built, err := Build(df, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i := 0; i < built.Len(); i++ {
		if built.Day(i).Kind != domain.DayRaw {
			t.Errorf("Day at row %d converted to kind %v despite unparseable cell in column",
				i, built.Day(i).Kind)
		}
	}

	// Text ordering: "10" < "2" < "banana"
	lag := lagged(domain.ColGasRet)
	assertCell(t, built, lag, 3, nil)
	assertCell(t, built, lag, 1, ptr(3))
	assertCell(t, built, lag, 2, ptr(1))
}

func TestBuild_NoLookahead(t *testing.T) {
	values := func(country string, day int) *float64 {
		v := float64(day*day) + 0.5
		if country == "FR" {
			v *= 1.3
		}
		return ptr(v)
	}
	cols := map[string]func(string, int) *float64{
		domain.ColDEResidualLoad: values,
		domain.ColFRResidualLoad: values,
		domain.ColGasRet:         values,
		domain.ColCoalRet:        values,
		domain.ColDEConsumption:  values,
		domain.ColFRConsumption:  values,
		domain.ColDETemp:         values,
	}

	base := twoCountryFrame(t, 6, cols)
	perturbed := base.Clone()

	// Overwrite every raw cell on the last day. If no derived feature looks
	// ahead, every derived cell must be unchanged: day 6 features only read
	// days 1..5, and no later rows exist to observe day 6.
	for i := 0; i < perturbed.Len(); i++ {
		if perturbed.Day(i).Num == 6 {
			for _, col := range perturbed.Columns() {
				perturbed.Column(col)[i] = ptr(9999)
			}
		}
	}

	builtBase, err := Build(base, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	builtPerturbed, err := Build(perturbed, nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	rawCols := make(map[string]bool)
	for col := range cols {
		rawCols[col] = true
	}

	for _, col := range builtBase.Columns() {
		if rawCols[col] {
			continue // raw passthrough differs on day 6 by construction
		}
		for i := 0; i < builtBase.Len(); i++ {
			a := builtBase.Value(col, i)
			b := builtPerturbed.Value(col, findRow(t, builtPerturbed, builtBase.ID(i)))
			if (a == nil) != (b == nil) || (a != nil && *a != *b) {
				t.Errorf("Derived %s at id=%d changed after perturbing the last day: %v vs %v",
					col, builtBase.ID(i), a, b)
			}
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	cols := map[string]func(string, int) *float64{
		domain.ColDEResidualLoad: func(country string, day int) *float64 { return ptr(float64(day) * 1.1) },
		domain.ColFRResidualLoad: func(country string, day int) *float64 { return ptr(float64(day) * 0.9) },
		domain.ColGasRet:         func(country string, day int) *float64 { return ptr(math.Sin(float64(day))) },
	}

	a, err := Build(twoCountryFrame(t, 5, cols), nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := Build(twoCountryFrame(t, 5, cols), nil, Config{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	colsA, colsB := a.Columns(), b.Columns()
	if len(colsA) != len(colsB) {
		t.Fatalf("Column counts differ: %d vs %d", len(colsA), len(colsB))
	}
	for i := range colsA {
		if colsA[i] != colsB[i] {
			t.Fatalf("Column order differs at %d: %s vs %s", i, colsA[i], colsB[i])
		}
	}
	for _, col := range colsA {
		for i := 0; i < a.Len(); i++ {
			va, vb := a.Value(col, i), b.Value(col, i)
			if (va == nil) != (vb == nil) || (va != nil && *va != *vb) {
				t.Errorf("Value %s row %d differs between runs", col, i)
			}
		}
	}
}
