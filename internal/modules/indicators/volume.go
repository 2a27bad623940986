package indicators

import (
	"math"

	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/pkg/formulas"
)

// volumeAnalysis classifies today's total volume against its rolling
// average. Bands are monotonic and classify every nonnegative ratio
// into exactly one bucket (enforced by Thresholds.Validate).
//
// volHist is oldest-first and excludes today.
func (d *Deriver) volumeAnalysis(todayVolume float64, volHist []domain.VolumePoint) domain.VolumeAnalysis {
	values := make([]float64, 0, len(volHist))
	for _, p := range volHist {
		values = append(values, p.TotalVolume)
	}

	avg := formulas.RollingAverage(values, d.cfg.VolumeWindow, d.cfg.MinVolumeSamples)
	if avg == nil {
		return domain.VolumeAnalysis{
			Signal:      domain.VolumeInsufficientData,
			Severity:    domain.SeverityNone,
			SampleCount: len(values),
		}
	}

	ratio := formulas.SafeRatio(todayVolume, *avg)
	analysis := domain.VolumeAnalysis{
		Ratio:       ratio,
		AvgVolume:   *avg,
		SampleCount: len(values),
		Severity:    domain.SeverityNone,
	}

	switch {
	case ratio < d.cfg.SpikeNormalMax:
		analysis.Signal = domain.VolumeNormal
	case ratio < d.cfg.SpikeStealthHigh:
		analysis.Signal = domain.VolumeStealthAccum
		analysis.Severity = domain.SeverityModerate
	case ratio < d.cfg.SpikeBreakout:
		analysis.Signal = domain.VolumeStealthAccum
		analysis.Severity = domain.SeverityHigh
	default:
		// Could be news-driven or distributive; the scoring policy
		// decides using price direction.
		analysis.Signal = domain.VolumeBreakout
	}
	return analysis
}

// dryUp detects a volume dry-up phase: enough abnormally quiet days in
// the recent window, optionally confirmed by a breakout-level spike
// ratio (accumulation complete). Confidence grows monotonically with
// dry-up day count and spike ratio, capped at 95.
func (d *Deriver) dryUp(volHist []domain.VolumePoint, spikeRatio float64) domain.DryUpAnalysis {
	none := domain.DryUpAnalysis{Phase: domain.DryUpNone}
	if len(volHist) < d.cfg.DryUpMinDays {
		return none
	}

	values := make([]float64, 0, len(volHist))
	for _, p := range volHist {
		values = append(values, p.TotalVolume)
	}
	reference := formulas.Mean(values)
	if reference == 0 {
		return none
	}

	window := values
	if len(window) > d.cfg.DryUpWindow {
		window = window[len(window)-d.cfg.DryUpWindow:]
	}

	dryDays := 0
	for _, v := range window {
		if v < d.cfg.DryUpDecay*reference {
			dryDays++
		}
	}
	if dryDays < d.cfg.DryUpMinDays {
		return none
	}

	analysis := domain.DryUpAnalysis{
		DryUpDays:  dryDays,
		Confidence: math.Min(95, 40+7*float64(dryDays)+6*spikeRatio),
	}
	if spikeRatio >= d.cfg.DryUpBreakoutRatio {
		analysis.Phase = domain.DryUpBreakout
	} else {
		analysis.Phase = domain.DryUpAccumulating
	}
	return analysis
}

// bidAsk reads buy-vs-sell pressure. Thresholds are symmetric around
// 1.0 (strong vs 1/strong), so the detector can never fire both
// accumulation and distribution for the same data.
//
// A sell-free day has no defined ratio (reported as 0 per the
// zero-denominator guard) but is still one-sided buying, so it
// classifies by price alone.
func (d *Deriver) bidAsk(buyVolume, sellVolume, changePct float64) domain.BidAskAnalysis {
	strong := d.cfg.BidAskStrong
	moderate := (1 + strong) / 2
	flat := d.cfg.FlatBandPct

	if sellVolume == 0 {
		analysis := domain.BidAskAnalysis{Ratio: 0, Signal: domain.BidAskNeutral}
		if buyVolume > 0 {
			if changePct < -flat {
				analysis.Signal = domain.BidAskStealthAccum
			} else if math.Abs(changePct) <= flat {
				analysis.Signal = domain.BidAskHiddenSupport
			}
		}
		return analysis
	}

	ratio := buyVolume / sellVolume
	analysis := domain.BidAskAnalysis{Ratio: ratio, Signal: domain.BidAskNeutral}

	switch {
	case ratio >= strong && changePct < -flat:
		// Heavy buying while price drifts down: absorption.
		analysis.Signal = domain.BidAskStealthAccum
	case ratio >= moderate && math.Abs(changePct) <= flat:
		analysis.Signal = domain.BidAskHiddenSupport
	case ratio <= 1/strong && changePct >= -flat:
		// Heavy selling into a flat-or-rising tape.
		analysis.Signal = domain.BidAskDistribution
	}
	return analysis
}
