package indicators

import (
	"math"

	"github.com/nugraha/bandarscope/internal/domain"
)

// priceAction runs the independent one-day pattern detectors. Each is a
// pure threshold comparison over the bar plus the volume-ratio context;
// several can fire for the same day.
func (d *Deriver) priceAction(bar domain.PriceBar, volumeRatio, bidAskRatio float64) domain.PriceAction {
	moderate := (1 + d.cfg.BidAskStrong) / 2

	var pa domain.PriceAction

	// Compression: tight daily range and near-flat close.
	if bar.Close > 0 {
		rangePct := (bar.High - bar.Low) / bar.Close * 100
		pa.Compression = rangePct <= 2 && math.Abs(bar.ChangePct) <= 1
	}

	// Bear trap / false breakdown: intraday break below the open that
	// recovers on above-average volume.
	if bar.Open > 0 && bar.Low > 0 {
		pa.BearTrap = bar.Low <= 0.97*bar.Open &&
			bar.Close >= 1.02*bar.Low &&
			volumeRatio >= 1.3
	}

	// Healthy pullback: mild decline on quiet volume.
	pa.HealthyPullback = bar.ChangePct < 0 && bar.ChangePct >= -3 &&
		volumeRatio > 0 && volumeRatio < 0.8

	// Floor defense: the low is tested but the close holds near the
	// open with buy-side imbalance soaking up the selling.
	if bar.Open > 0 {
		pa.FloorDefense = bar.Low <= 0.98*bar.Open &&
			math.Abs(bar.ChangePct) <= d.cfg.FlatBandPct &&
			bidAskRatio >= moderate
	}

	// Gap-up breakout: open gaps above the prior close on expanded
	// volume. Prior close is reconstructed from the change percentage.
	if bar.ChangePct > -100 {
		prevClose := bar.Close / (1 + bar.ChangePct/100)
		if prevClose > 0 {
			pa.GapUpBreakout = bar.Open >= 1.02*prevClose && volumeRatio >= 1.5
		}
	}

	return pa
}
