package scoring

import (
	"fmt"

	"github.com/nugraha/bandarscope/internal/domain"
)

// LegacyPolicy is the original flat additive formula: fixed weights, no
// confirmation gating. Retained as a regression baseline only; one
// strong factor can push it straight into BUY territory, which is why
// it is not the canonical policy.
type LegacyPolicy struct {
	bands SignalBands
}

// NewLegacyPolicy creates the legacy baseline policy.
func NewLegacyPolicy() *LegacyPolicy {
	return &LegacyPolicy{bands: DefaultBands}
}

// Name implements ScoringPolicy.
func (p *LegacyPolicy) Name() string { return "legacy" }

// Score implements ScoringPolicy.
func (p *LegacyPolicy) Score(in Input) domain.ScoreResult {
	b := in.Bundle
	t := newTally()

	if b.ForeignFlow.NetValue > 0 {
		t.add(10, "Foreign net buying")
	} else if b.ForeignFlow.NetValue < 0 {
		t.add(-10, "Foreign net selling")
	}

	if b.ForeignStreak.Direction == domain.StreakBuy && b.ForeignStreak.Days >= 2 {
		t.add(8, fmt.Sprintf("%d-day foreign buy streak", b.ForeignStreak.Days))
	} else if b.ForeignStreak.Direction == domain.StreakSell && b.ForeignStreak.Days >= 2 {
		t.add(-8, fmt.Sprintf("%d-day foreign sell streak", b.ForeignStreak.Days))
	}

	switch b.Volume.Signal {
	case domain.VolumeStealthAccum:
		t.add(8, "Stealth accumulation volume")
	case domain.VolumeBreakout:
		t.add(10, "Volume breakout")
	}

	if b.DryUp.Phase != domain.DryUpNone {
		t.add(8, "Volume dry-up detected")
	}

	switch b.BidAsk.Signal {
	case domain.BidAskStealthAccum, domain.BidAskHiddenSupport:
		t.add(8, "Buy-side imbalance")
	case domain.BidAskDistribution:
		t.add(-8, "Sell-side imbalance")
	}

	if b.Concentration.Signal != domain.ConcentrationNone {
		t.add(12, "Broker concentration")
	}

	cost := costBasis(b, in.Bar.Close)
	if cost.Known && cost.PremiumPct <= 15 {
		t.add(6, "Price near bandar cost")
	}

	score := clampScore(t.score)
	conviction := 1 + t.bullish/2
	if conviction > 5 {
		conviction = 5
	}
	return domain.ScoreResult{
		Score:      score,
		Signal:     p.bands.Classify(score),
		Conviction: conviction,
		Factors:    t.factors,
		Policy:     p.Name(),
		Metrics: domain.ScoreMetrics{
			AvgBandarCost:    cost.AvgCost,
			PremiumToCostPct: cost.PremiumPct,
			BullishFactors:   t.bullish,
			BearishFactors:   t.bearish,
			Tier1Signals:     t.tier1,
		},
	}
}
