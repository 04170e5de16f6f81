// Package features implements the leakage-free feature build over daily
// electricity-market observations. Every lag/rolling feature for a row only
// sees raw values of the same country at strictly earlier days: raw columns
// are lagged one row first, and every rolling window result is shifted one
// additional row past the window itself.
package features

import (
	"fmt"
	"math"
	"sort"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/frame"
)

// DefaultEps guards the stress-ratio denominators.
const DefaultEps = 1e-8

// Config controls a feature build.
type Config struct {
	// AddTarget merges the target table as the volatility column and enables
	// the volatility lag/rolling block.
	AddTarget bool
	// Eps guards division in the stress ratios. Zero selects DefaultEps.
	Eps float64
}

// Build derives the feature table from raw observations x and, when
// cfg.AddTarget is set, targets y. The input is never mutated; the returned
// frame has the same rows and IDs with all original columns plus the derived
// ones, sorted by (COUNTRY, DAY_ID). Callers relying on the original row
// order re-sort by ID.
//
// Steps, in order: target merge, day normalization, temporal sort, volatility
// lag/rolling features, country flag, lagged raw columns, spreads/ratios,
// regime features, weather anomalies, extra rolling stats, interaction term,
// per-day cross-sectional ranks. Any block referencing an absent column is
// skipped, so the same function serves heterogeneous schemas.
func Build(x *frame.Frame, y []*domain.Target, cfg Config) (*frame.Frame, error) {
	eps := cfg.Eps
	if eps == 0 {
		eps = DefaultEps
	}

	df := x.Clone()

	if cfg.AddTarget {
		if err := mergeTarget(df, y); err != nil {
			return nil, err
		}
	}

	normalizeDays(df)
	df.SortByCountryDay()

	b := &builder{df: df}
	if cfg.AddTarget {
		b.volatilityFeatures()
	}
	b.countryFlag()
	b.laggedRawColumns()
	b.spreads(eps)
	b.regime()
	b.weatherAnomalies()
	b.extraRollingStats()
	b.interaction()
	b.dayRanks()

	if b.err != nil {
		return nil, b.err
	}
	return df, nil
}

// mergeTarget sorts both tables by ID, verifies the ID sequences are
// element-wise identical and attaches the target values as the volatility
// column, aligned by position.
func mergeTarget(df *frame.Frame, y []*domain.Target) error {
	if y == nil {
		return ErrMissingTarget
	}

	df.SortByID()

	ys := make([]*domain.Target, len(y))
	copy(ys, y)
	sort.SliceStable(ys, func(i, j int) bool { return ys[i].ID < ys[j].ID })

	if df.Len() != len(ys) {
		return fmt.Errorf("%w: %d observation rows, %d target rows", ErrIDMismatch, df.Len(), len(ys))
	}
	for i, t := range ys {
		if df.ID(i) != t.ID {
			return fmt.Errorf("%w: position %d has observation ID %d, target ID %d", ErrIDMismatch, i, df.ID(i), t.ID)
		}
	}

	vol := make([]*float64, df.Len())
	for i, t := range ys {
		v := t.Value
		vol[i] = &v
	}
	return df.AddColumn(ColVolatility, vol)
}

// normalizeDays re-attempts parsing of raw-text DAY_ID values. The column
// converts as a whole: if any raw cell still fails to parse, every cell keeps
// its original value.
func normalizeDays(df *frame.Frame) {
	parsed := make(map[int]domain.Day)
	for i := 0; i < df.Len(); i++ {
		if d := df.Day(i); d.Kind == domain.DayRaw {
			p := domain.ParseDay(d.Raw)
			if p.Kind == domain.DayRaw {
				return
			}
			parsed[i] = p
		}
	}
	for i, d := range parsed {
		df.SetDay(i, d)
	}
}

// builder accumulates derived columns; the first error stops further work.
type builder struct {
	df  *frame.Frame
	err error
}

func (b *builder) add(name string, values []*float64) {
	if b.err != nil {
		return
	}
	b.err = b.df.AddColumn(name, values)
}

func (b *builder) volatilityFeatures() {
	vol := b.df.Column(ColVolatility)
	for _, lag := range volLags {
		b.add(fmt.Sprintf("vol_lag%d", lag), lagColumn(b.df, vol, lag))
	}
	for _, w := range volWindows {
		b.add(fmt.Sprintf("vol_roll_std_%d", w), rollColumn(b.df, vol, w, 3, rollStd))
		b.add(fmt.Sprintf("vol_roll_mean_%d", w), rollColumn(b.df, vol, w, 3, rollMean))
	}
}

func (b *builder) countryFlag() {
	values := make([]*float64, b.df.Len())
	for i := range values {
		v := 0.0
		if b.df.Country(i) == "FR" {
			v = 1.0
		}
		values[i] = &v
	}
	b.add(ColIsFR, values)
}

func (b *builder) laggedRawColumns() {
	for _, col := range domain.RawColumns() {
		if b.df.Has(col) {
			b.add(lagged(col), lagColumn(b.df, b.df.Column(col), 1))
		}
	}
}

func (b *builder) spreads(eps float64) {
	df := b.df

	sub := func(x, y float64) float64 { return x - y }

	diff := func(name, left, right string) {
		if df.HasAll(lagged(left), lagged(right)) {
			b.add(name, zip(df.Column(lagged(left)), df.Column(lagged(right)), sub))
		}
	}

	diff(ColLoadImbalance, domain.ColDEResidualLoad, domain.ColFRResidualLoad)
	diff(ColWindImbalance, domain.ColDEWindPow, domain.ColFRWindPow)
	diff(ColSolarImbalance, domain.ColDESolar, domain.ColFRSolar)
	diff(ColNuclearImbalance, domain.ColFRNuclear, domain.ColDENuclear)
	diff(ColFlowPressure, domain.ColDEFRExchange, domain.ColFRDEExchange)

	if df.HasAll(lagged(domain.ColDEFRExchange), lagged(domain.ColFRDEExchange)) {
		b.add(ColTotalFlow, zip(
			df.Column(lagged(domain.ColDEFRExchange)),
			df.Column(lagged(domain.ColFRDEExchange)),
			func(x, y float64) float64 { return math.Abs(x) + math.Abs(y) },
		))
	}

	stress := func(name, load, consumption string) {
		if df.HasAll(lagged(load), lagged(consumption)) {
			b.add(name, zip(
				df.Column(lagged(load)),
				df.Column(lagged(consumption)),
				func(x, y float64) float64 { return x / (y + eps) },
			))
		}
	}
	stress(ColDEResidualStress, domain.ColDEResidualLoad, domain.ColDEConsumption)
	stress(ColFRResidualStress, domain.ColFRResidualLoad, domain.ColFRConsumption)

	diff(ColGasCoalSpread, domain.ColGasRet, domain.ColCoalRet)

	if df.HasAll(lagged(domain.ColCarbonRet), lagged(domain.ColDECoal), lagged(domain.ColDELignite)) {
		solidFuel := zip(df.Column(lagged(domain.ColDECoal)), df.Column(lagged(domain.ColDELignite)),
			func(x, y float64) float64 { return x + y })
		b.add(ColCarbonPressure, zip(df.Column(lagged(domain.ColCarbonRet)), solidFuel,
			func(x, y float64) float64 { return x * y }))
	}
}

func (b *builder) regime() {
	df := b.df

	if df.Has(lagged(domain.ColGasRet)) {
		b.add(ColGasRet30m, rollColumn(df, df.Column(lagged(domain.ColGasRet)), 30, 1, rollMean))
	}
	if df.Has(lagged(domain.ColDEResidualLoad)) {
		b.add(ColLoadTrend30, rollColumn(df, df.Column(lagged(domain.ColDEResidualLoad)), 30, 10, rollMean))
	}

	renewables := []string{
		lagged(domain.ColDEWindPow), lagged(domain.ColDESolar),
		lagged(domain.ColFRWindPow), lagged(domain.ColFRSolar),
	}
	if df.HasAll(renewables...) {
		add := func(x, y float64) float64 { return x + y }
		de := zip(df.Column(renewables[0]), df.Column(renewables[1]), add)
		fr := zip(df.Column(renewables[2]), df.Column(renewables[3]), add)
		b.add(ColRelRenewable, zip(de, fr, func(x, y float64) float64 { return x - y }))
	}
}

func (b *builder) weatherAnomalies() {
	df := b.df
	for _, col := range domain.WeatherColumns() {
		lc := lagged(col)
		if !df.Has(lc) {
			continue
		}
		trailing := rollColumn(df, df.Column(lc), 7, 3, rollMean)
		b.add(col+"_ANOM", zip(df.Column(lc), trailing,
			func(x, y float64) float64 { return x - y }))
	}
}

func (b *builder) extraRollingStats() {
	df := b.df
	for _, col := range extraRollingColumns {
		lc := lagged(col)
		if !df.Has(lc) {
			continue
		}
		for _, w := range extraRollingWindows {
			b.add(fmt.Sprintf("%s_rm_%d", col, w), rollColumn(df, df.Column(lc), w, 2, rollMean))
			b.add(fmt.Sprintf("%s_std_%d", col, w), rollColumn(df, df.Column(lc), w, 2, rollStd))
		}
	}
}

func (b *builder) interaction() {
	df := b.df
	if df.HasAll(ColLoadImbalance, ColGasRet30m) {
		b.add(ColLoadXGas, zip(df.Column(ColLoadImbalance), df.Column(ColGasRet30m),
			func(x, y float64) float64 { return x * y }))
	}
}

func (b *builder) dayRanks() {
	df := b.df
	for _, col := range rankColumns {
		lc := lagged(col)
		if df.Has(lc) {
			b.add(col+"_day_rank", dayRank(df, df.Column(lc)))
		}
	}
}

// zip applies op elementwise; a NULL on either side yields NULL.
func zip(a, b []*float64, op func(x, y float64) float64) []*float64 {
	out := make([]*float64, len(a))
	for i := range a {
		if a[i] == nil || b[i] == nil {
			continue
		}
		v := op(*a[i], *b[i])
		out[i] = &v
	}
	return out
}
