package domain

// Raw market/weather column names. All raw columns are optional in any given
// dataset; derivations referencing an absent column are skipped.
const (
	ColDEResidualLoad = "DE_RESIDUAL_LOAD"
	ColFRResidualLoad = "FR_RESIDUAL_LOAD"
	ColDEWindPow      = "DE_WINDPOW"
	ColFRWindPow      = "FR_WINDPOW"
	ColDESolar        = "DE_SOLAR"
	ColFRSolar        = "FR_SOLAR"
	ColFRNuclear      = "FR_NUCLEAR"
	ColDENuclear      = "DE_NUCLEAR"
	ColDEFRExchange   = "DE_FR_EXCHANGE"
	ColFRDEExchange   = "FR_DE_EXCHANGE"
	ColGasRet         = "GAS_RET"
	ColCoalRet        = "COAL_RET"
	ColCarbonRet      = "CARBON_RET"
	ColDECoal         = "DE_COAL"
	ColDELignite      = "DE_LIGNITE"
	ColDETemp         = "DE_TEMP"
	ColFRTemp         = "FR_TEMP"
	ColDEWind         = "DE_WIND"
	ColFRWind         = "FR_WIND"
	ColDERain         = "DE_RAIN"
	ColFRRain         = "FR_RAIN"
	ColDEConsumption  = "DE_CONSUMPTION"
	ColFRConsumption  = "FR_CONSUMPTION"
)

// RawColumns lists every raw column in canonical order.
func RawColumns() []string {
	return []string{
		ColDEResidualLoad, ColFRResidualLoad, ColDEWindPow, ColFRWindPow,
		ColDESolar, ColFRSolar, ColFRNuclear, ColDENuclear, ColDEFRExchange,
		ColFRDEExchange, ColGasRet, ColCoalRet, ColCarbonRet, ColDECoal,
		ColDELignite, ColDETemp, ColFRTemp, ColDEWind, ColFRWind, ColDERain,
		ColFRRain, ColDEConsumption, ColFRConsumption,
	}
}

// WeatherColumns lists the columns eligible for anomaly features.
func WeatherColumns() []string {
	return []string{ColDETemp, ColFRTemp, ColDEWind, ColFRWind, ColDERain, ColFRRain}
}

// Observation is a single daily market observation for one country.
// Raw cells are nullable; nil means the value is missing for that day.
type Observation struct {
	ID      int64  // unique row identifier
	DayID   Day    // observation day
	Country string // entity key, e.g. "DE" or "FR"

	DEResidualLoad *float64
	FRResidualLoad *float64
	DEWindPow      *float64
	FRWindPow      *float64
	DESolar        *float64
	FRSolar        *float64
	FRNuclear      *float64
	DENuclear      *float64
	DEFRExchange   *float64
	FRDEExchange   *float64
	GasRet         *float64
	CoalRet        *float64
	CarbonRet      *float64
	DECoal         *float64
	DELignite      *float64
	DETemp         *float64
	FRTemp         *float64
	DEWind         *float64
	FRWind         *float64
	DERain         *float64
	FRRain         *float64
	DEConsumption  *float64
	FRConsumption  *float64
}

// RawValues maps raw column names to the observation's cells.
func (o *Observation) RawValues() map[string]*float64 {
	return map[string]*float64{
		ColDEResidualLoad: o.DEResidualLoad,
		ColFRResidualLoad: o.FRResidualLoad,
		ColDEWindPow:      o.DEWindPow,
		ColFRWindPow:      o.FRWindPow,
		ColDESolar:        o.DESolar,
		ColFRSolar:        o.FRSolar,
		ColFRNuclear:      o.FRNuclear,
		ColDENuclear:      o.DENuclear,
		ColDEFRExchange:   o.DEFRExchange,
		ColFRDEExchange:   o.FRDEExchange,
		ColGasRet:         o.GasRet,
		ColCoalRet:        o.CoalRet,
		ColCarbonRet:      o.CarbonRet,
		ColDECoal:         o.DECoal,
		ColDELignite:      o.DELignite,
		ColDETemp:         o.DETemp,
		ColFRTemp:         o.FRTemp,
		ColDEWind:         o.DEWind,
		ColFRWind:         o.FRWind,
		ColDERain:         o.DERain,
		ColFRRain:         o.FRRain,
		ColDEConsumption:  o.DEConsumption,
		ColFRConsumption:  o.FRConsumption,
	}
}

// SetRawValue sets a raw cell by column name. Unknown columns are ignored,
// matching the lenient-schema design.
func (o *Observation) SetRawValue(col string, v *float64) {
	switch col {
	case ColDEResidualLoad:
		o.DEResidualLoad = v
	case ColFRResidualLoad:
		o.FRResidualLoad = v
	case ColDEWindPow:
		o.DEWindPow = v
	case ColFRWindPow:
		o.FRWindPow = v
	case ColDESolar:
		o.DESolar = v
	case ColFRSolar:
		o.FRSolar = v
	case ColFRNuclear:
		o.FRNuclear = v
	case ColDENuclear:
		o.DENuclear = v
	case ColDEFRExchange:
		o.DEFRExchange = v
	case ColFRDEExchange:
		o.FRDEExchange = v
	case ColGasRet:
		o.GasRet = v
	case ColCoalRet:
		o.CoalRet = v
	case ColCarbonRet:
		o.CarbonRet = v
	case ColDECoal:
		o.DECoal = v
	case ColDELignite:
		o.DELignite = v
	case ColDETemp:
		o.DETemp = v
	case ColFRTemp:
		o.FRTemp = v
	case ColDEWind:
		o.DEWind = v
	case ColFRWind:
		o.FRWind = v
	case ColDERain:
		o.DERain = v
	case ColFRRain:
		o.FRRain = v
	case ColDEConsumption:
		o.DEConsumption = v
	case ColFRConsumption:
		o.FRConsumption = v
	}
}
