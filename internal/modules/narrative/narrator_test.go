package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nugraha/bandarscope/internal/domain"
)

func sampleResult() domain.ScoreResult {
	return domain.ScoreResult{
		Score:      72,
		Signal:     domain.SignalStrongBuy,
		Conviction: 4,
		Policy:     "conservative",
		Factors:    []string{"Foreign net buy 3.0B", "Stealth accumulation volume 2.2x average"},
		Metrics: domain.ScoreMetrics{
			AvgBandarCost:    1000,
			PremiumToCostPct: 5.0,
			BullishFactors:   2,
			Tier1Signals:     1,
		},
	}
}

func sampleBundle() domain.IndicatorBundle {
	return domain.IndicatorBundle{
		Symbol:      "TLKM",
		ForeignFlow: domain.ForeignFlow{BuyValue: 5e9, SellValue: 2e9, NetValue: 3e9},
		BrokerSummary: []domain.BrokerActivity{
			{Code: "YU", IsForeign: true, BuyVolume: 1000, BuyValue: 1e8, NetValue: 3e9},
		},
		Volume: domain.VolumeAnalysis{Signal: domain.VolumeStealthAccum, Ratio: 2.2, SampleCount: 20},
		Quant:  domain.Quantitative{MFI: 62, MFISignal: domain.QuantBullish, CMF: 0.2, CMFSignal: domain.QuantBullish},
	}
}

func TestNarrate_SectionStructure(t *testing.T) {
	n := NewNarrator()
	bar := domain.PriceBar{Close: 1050, ChangePct: 1.0}

	report := n.Narrate(bar, sampleResult(), sampleBundle())

	require.Len(t, report.Sections, 5)
	titles := make([]string, 0, len(report.Sections))
	for _, s := range report.Sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{
		"Executive Summary",
		"Cost Basis Analysis",
		"Foreign Flow",
		"Volume & Momentum",
		"Broker Holdings",
	}, titles)

	assert.Contains(t, report.Summary, "TLKM")
	assert.Contains(t, report.Summary, "STRONG_BUY")
	assert.Contains(t, report.Summary, "score 72")
}

func TestNarrate_ExecutiveSectionCarriesFactors(t *testing.T) {
	n := NewNarrator()

	report := n.Narrate(domain.PriceBar{Close: 1050}, sampleResult(), sampleBundle())

	exec := report.Sections[0]
	assert.Contains(t, exec.Bullets, "Foreign net buy 3.0B")
	assert.Contains(t, exec.Bullets, "Stealth accumulation volume 2.2x average")
}

func TestNarrate_CostBasisZoneWording(t *testing.T) {
	n := NewNarrator()

	cases := []struct {
		premium float64
		phrase  string
	}{
		{-30, "deep value zone"},
		{5, "sweet spot"},
		{25, "extended"},
		{60, "danger zone"},
	}
	for _, tc := range cases {
		result := sampleResult()
		result.Metrics.PremiumToCostPct = tc.premium

		report := n.Narrate(domain.PriceBar{Close: 1050}, result, sampleBundle())

		cost := report.Sections[1]
		require.Len(t, cost.Bullets, 2)
		assert.Contains(t, cost.Bullets[1], tc.phrase, "premium %.0f%%", tc.premium)
	}
}

func TestNarrate_UnknownCostBasis(t *testing.T) {
	n := NewNarrator()
	result := sampleResult()
	result.Metrics.AvgBandarCost = 0

	report := n.Narrate(domain.PriceBar{Close: 1050}, result, sampleBundle())

	cost := report.Sections[1]
	require.Len(t, cost.Bullets, 1)
	assert.Contains(t, cost.Bullets[0], "cost basis unknown")
}

func TestNarrate_DegradedBundleSummary(t *testing.T) {
	n := NewNarrator()
	bundle := domain.IndicatorBundle{Symbol: "TLKM", Degraded: true,
		Volume: domain.VolumeAnalysis{Signal: domain.VolumeInsufficientData}}
	result := domain.ScoreResult{Score: 50, Signal: domain.SignalHold, Policy: "conservative"}

	report := n.Narrate(domain.PriceBar{Close: 1050}, result, bundle)

	assert.Contains(t, report.Summary, "no broker data available")
}

func TestRenderText(t *testing.T) {
	n := NewNarrator()
	bar := domain.PriceBar{Close: 960, ChangePct: -4.0}
	bundle := sampleBundle()
	bundle.Volume = domain.VolumeAnalysis{Signal: domain.VolumeBreakout, Ratio: 3.0, SampleCount: 20}

	text := RenderText(n.Narrate(bar, sampleResult(), bundle))

	assert.True(t, strings.HasPrefix(text, "TLKM:"))
	assert.Contains(t, text, "Executive Summary\n")
	assert.Contains(t, text, "  - ")
	assert.Contains(t, text, "Red Flags (HIGH)")
}
