package features

import "power-vol-lab/internal/domain"

// Derived column names.
const (
	ColVolatility = "volatility"
	ColIsFR       = "IS_FR"

	ColLoadImbalance    = "LOAD_IMBALANCE"
	ColWindImbalance    = "WIND_IMBALANCE"
	ColSolarImbalance   = "SOLAR_IMBALANCE"
	ColNuclearImbalance = "NUCLEAR_IMBALANCE"
	ColFlowPressure     = "FLOW_PRESSURE"
	ColTotalFlow        = "TOTAL_FLOW"
	ColDEResidualStress = "DE_RESIDUAL_STRESS"
	ColFRResidualStress = "FR_RESIDUAL_STRESS"
	ColGasCoalSpread    = "GAS_COAL_SPREAD"
	ColCarbonPressure   = "CARBON_PRESSURE"

	ColGasRet30m    = "GAS_RET_30m"
	ColLoadTrend30  = "LOAD_TREND_30"
	ColRelRenewable = "REL_RENEWABLE"

	ColLoadXGas = "LOADxGAS"
)

// lagSuffix marks the one-day-lagged copy of a raw column, the single
// mechanism preventing same-day leakage for downstream derived features.
const lagSuffix = "_lag1"

// volLags are the volatility lag depths.
var volLags = []int{1, 3, 7}

// volWindows are the volatility rolling window sizes.
var volWindows = []int{7, 30}

// extraRollingWindows are the window sizes of the extra rolling stats block.
var extraRollingWindows = []int{3, 7, 30}

// extraRollingColumns lists raw columns that get the extra 3/7/30-row
// mean/std blocks (over their lagged copies).
var extraRollingColumns = []string{
	domain.ColDEResidualLoad, domain.ColFRResidualLoad,
	domain.ColDEWindPow, domain.ColFRWindPow,
	domain.ColDEConsumption, domain.ColFRConsumption,
}

// rankColumns lists columns whose lagged copies get per-day cross-sectional
// ranks. Entries without a lagged copy in the table are skipped.
var rankColumns = []string{
	domain.ColDEResidualLoad, domain.ColFRResidualLoad,
	ColLoadImbalance, ColTotalFlow,
}

// lagged returns the lagged column name for col.
func lagged(col string) string {
	return col + lagSuffix
}
