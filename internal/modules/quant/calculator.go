// Package quant computes simplified technical measures (MFI, OBV, VWAP
// deviation, CMF) from one day of OHLCV plus broker transaction totals.
package quant

import (
	"math"

	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/pkg/formulas"
)

// Calculator derives the quantitative sub-bundle. Stateless.
type Calculator struct{}

// NewCalculator creates a new quantitative calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate computes all four measures. Degenerate inputs (zero range,
// zero volume, zero average) produce neutral defaults, never NaN/Inf.
//
// totalVolumeLots/totalValue are the day's broker transaction totals
// (both sides); volumeRatio is today's volume over its rolling average.
func (c *Calculator) Calculate(bar domain.PriceBar, totalVolumeLots, totalValue, volumeRatio float64) domain.Quantitative {
	q := domain.Quantitative{}
	q.MFI, q.MFISignal = c.moneyFlowIndex(volumeRatio, bar.ChangePct)
	q.OBV, q.OBVSignal = c.obv(bar, volumeRatio)
	q.VWAP, q.VWAPDeviationPct, q.VWAPSignal = c.vwapDeviation(bar.Close, totalVolumeLots, totalValue)
	q.CMF, q.CMFSignal = c.chaikinMoneyFlow(bar)
	return q
}

// moneyFlowIndex is a single-day MFI proxy: it starts neutral at 50 and
// shifts only when the volume-vs-average percentage and the price
// change agree in sign, clamped to [20,80].
func (c *Calculator) moneyFlowIndex(volumeRatio, changePct float64) (float64, domain.QuantSignal) {
	mfi := 50.0

	volumeVsAvgPct := 0.0
	if volumeRatio > 0 {
		volumeVsAvgPct = (volumeRatio - 1) * 100
	}

	if volumeVsAvgPct*changePct > 0 {
		shift := math.Abs(volumeVsAvgPct)/10 + math.Abs(changePct)*2
		shift = math.Min(shift, 30)
		if changePct > 0 {
			mfi += shift
		} else {
			mfi -= shift
		}
	}
	mfi = formulas.Clamp(mfi, 20, 80)

	switch {
	case mfi > 70:
		return mfi, domain.QuantOverbought
	case mfi < 30:
		return mfi, domain.QuantOversold
	case mfi > 50:
		return mfi, domain.QuantBullish
	default:
		return mfi, domain.QuantBearish
	}
}

// obv is a single-day OBV proxy: today's volume signed by price
// direction. Divergence fires when price direction and volume trend
// disagree.
func (c *Calculator) obv(bar domain.PriceBar, volumeRatio float64) (float64, domain.QuantSignal) {
	obv := 0.0
	switch {
	case bar.ChangePct > 0:
		obv = bar.Volume
	case bar.ChangePct < 0:
		obv = -bar.Volume
	}

	switch {
	case bar.ChangePct < 0 && volumeRatio > 1:
		// Price down on rising volume: accumulation into weakness.
		return obv, domain.QuantBullishDiv
	case bar.ChangePct > 0 && volumeRatio > 0 && volumeRatio < 1:
		// Price up on fading volume.
		return obv, domain.QuantBearishDiv
	default:
		return obv, domain.QuantNeutral
	}
}

// vwapDeviation estimates VWAP as total transaction value over total
// share volume (lot-size adjusted) and classifies price vs VWAP with a
// ±2% deadband.
func (c *Calculator) vwapDeviation(closePrice, totalVolumeLots, totalValue float64) (float64, float64, domain.QuantSignal) {
	vwap := formulas.SafeRatio(totalValue, totalVolumeLots*domain.LotSize)
	if vwap == 0 {
		return 0, 0, domain.QuantNeutral
	}

	deviationPct := (closePrice - vwap) / vwap * 100
	switch {
	case deviationPct > 2:
		return vwap, deviationPct, domain.QuantReclaim
	case deviationPct < -2:
		return vwap, deviationPct, domain.QuantRejection
	default:
		return vwap, deviationPct, domain.QuantNeutral
	}
}

// chaikinMoneyFlow is the single-period money-flow multiplier,
// ((close−low)−(high−close))/(high−low), with a zero-range guard.
func (c *Calculator) chaikinMoneyFlow(bar domain.PriceBar) (float64, domain.QuantSignal) {
	if bar.High == bar.Low {
		return 0, domain.QuantNeutral
	}
	cmf := ((bar.Close - bar.Low) - (bar.High - bar.Close)) / (bar.High - bar.Low)

	switch {
	case cmf > 0.1:
		return cmf, domain.QuantBullish
	case cmf < -0.1:
		return cmf, domain.QuantBearish
	default:
		return cmf, domain.QuantNeutral
	}
}
