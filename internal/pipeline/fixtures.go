package pipeline

import (
	"context"
	"math"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/frame"
	"power-vol-lab/internal/ingestion"
)

// Fixture shape: two countries over consecutive days, every raw column
// populated with smooth deterministic values. Residual loads are constant so
// spread features have known values in tests and demo runs.
const (
	fixtureDays           = 10
	fixtureDEResidualLoad = 100.0
	fixtureFRResidualLoad = 80.0
)

// FixtureObservations builds the deterministic demo observation table.
// Row IDs interleave countries by day: DE gets odd IDs, FR even.
func FixtureObservations() []*domain.Observation {
	var obs []*domain.Observation

	for day := 1; day <= fixtureDays; day++ {
		d := float64(day)
		for i, country := range []string{"DE", "FR"} {
			o := &domain.Observation{
				ID:      int64(2*day - 1 + i),
				DayID:   domain.Day{Kind: domain.DayNumeric, Num: d},
				Country: country,
			}

			set := func(col string, v float64) {
				value := v
				o.SetRawValue(col, &value)
			}

			set(domain.ColDEResidualLoad, fixtureDEResidualLoad)
			set(domain.ColFRResidualLoad, fixtureFRResidualLoad)
			set(domain.ColDEWindPow, 40+10*math.Sin(d/3))
			set(domain.ColFRWindPow, 25+8*math.Sin(d/4))
			set(domain.ColDESolar, 20+5*math.Cos(d/2))
			set(domain.ColFRSolar, 15+4*math.Cos(d/2))
			set(domain.ColFRNuclear, 55+2*math.Sin(d/5))
			set(domain.ColDENuclear, 8+math.Sin(d/5))
			set(domain.ColDEFRExchange, 3+math.Sin(d))
			set(domain.ColFRDEExchange, 2+math.Cos(d))
			set(domain.ColGasRet, 0.01*math.Sin(d))
			set(domain.ColCoalRet, 0.008*math.Cos(d))
			set(domain.ColCarbonRet, 0.005*math.Sin(d/2))
			set(domain.ColDECoal, 12+2*math.Cos(d/3))
			set(domain.ColDELignite, 14+math.Sin(d/3))
			set(domain.ColDETemp, 10+5*math.Sin(d/6))
			set(domain.ColFRTemp, 12+5*math.Sin(d/6))
			set(domain.ColDEWind, 6+2*math.Sin(d/2))
			set(domain.ColFRWind, 5+2*math.Cos(d/2))
			set(domain.ColDERain, 1+math.Abs(math.Sin(d)))
			set(domain.ColFRRain, 1+math.Abs(math.Cos(d)))
			set(domain.ColDEConsumption, 140+5*math.Sin(d/7))
			set(domain.ColFRConsumption, 120+5*math.Cos(d/7))

			obs = append(obs, o)
		}
	}

	return obs
}

// FixtureTargets builds one volatility target per fixture row.
func FixtureTargets() []*domain.Target {
	var targets []*domain.Target
	for day := 1; day <= fixtureDays; day++ {
		d := float64(day)
		targets = append(targets,
			&domain.Target{ID: int64(2*day - 1), Value: 0.1 + 0.02*math.Sin(d)},
			&domain.Target{ID: int64(2 * day), Value: 0.08 + 0.02*math.Cos(d)},
		)
	}
	return targets
}

// fixtureObservationSource serves the fixture table as an ObservationSource.
type fixtureObservationSource struct{}

// NewFixtureObservationSource creates a source backed by the fixture table.
func NewFixtureObservationSource() ingestion.ObservationSource {
	return fixtureObservationSource{}
}

func (fixtureObservationSource) Fetch(context.Context) (*frame.Frame, error) {
	return frame.FromObservations(FixtureObservations(), nil)
}

// fixtureTargetSource serves the fixture targets as a TargetSource.
type fixtureTargetSource struct{}

// NewFixtureTargetSource creates a source backed by the fixture targets.
func NewFixtureTargetSource() ingestion.TargetSource {
	return fixtureTargetSource{}
}

func (fixtureTargetSource) Fetch(context.Context) ([]*domain.Target, error) {
	return FixtureTargets(), nil
}
