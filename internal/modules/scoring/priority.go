package scoring

import (
	"fmt"

	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/pkg/formulas"
)

// PriorityBudgets are the per-bucket point budgets of the
// priority-stack policy, ranked: broker accumulation > volume/price >
// foreign flow > quantitative > relative strength. Each bucket's
// aggregate delta is clamped to ± its budget before being applied.
type PriorityBudgets struct {
	BrokerAccumulation float64
	VolumePrice        float64
	ForeignFlow        float64
	Quantitative       float64
	RelativeStrength   float64
}

// DefaultPriorityBudgets is the production budget table.
func DefaultPriorityBudgets() PriorityBudgets {
	return PriorityBudgets{
		BrokerAccumulation: 15,
		VolumePrice:        12,
		ForeignFlow:        10,
		Quantitative:       8,
		RelativeStrength:   5,
	}
}

// SetupTier labels the ideal-setup checklist result.
const (
	SetupExcellent = "EXCELLENT"
	SetupGood      = "GOOD"
	SetupFair      = "FAIR"
	SetupPoor      = "POOR"
)

// PriorityPolicy ranks factor families into budgeted buckets and adds
// an auxiliary "ideal setup" quality gauge from nine boolean checks.
// No confirmation gating: conviction comes from the setup tier.
type PriorityPolicy struct {
	budgets PriorityBudgets
	bands   SignalBands
}

// NewPriorityPolicy creates the priority-stack policy.
func NewPriorityPolicy() *PriorityPolicy {
	return &PriorityPolicy{budgets: DefaultPriorityBudgets(), bands: DefaultBands}
}

// Name implements ScoringPolicy.
func (p *PriorityPolicy) Name() string { return "priority" }

// Score implements ScoringPolicy.
func (p *PriorityPolicy) Score(in Input) domain.ScoreResult {
	b := in.Bundle
	t := newTally()
	cost := costBasis(b, in.Bar.Close)

	p.bucket(t, p.brokerAccumulation(b), p.budgets.BrokerAccumulation, "broker accumulation")
	p.bucket(t, p.volumePrice(b, in.Bar), p.budgets.VolumePrice, "volume/price")
	p.bucket(t, p.foreign(b), p.budgets.ForeignFlow, "foreign flow")
	p.bucket(t, p.quantitative(b.Quant), p.budgets.Quantitative, "quantitative")
	p.bucket(t, p.relativeStrength(in), p.budgets.RelativeStrength, "relative strength")

	passed, total := p.idealSetup(b, cost)
	setupScore := formulas.SafeRatio(float64(passed), float64(total))
	tier := setupTier(setupScore)
	t.factors = append(t.factors, fmt.Sprintf("Ideal setup %d/%d checks (%s)", passed, total, tier))

	score := clampScore(t.score)
	return domain.ScoreResult{
		Score:      score,
		Signal:     p.bands.Classify(score),
		Conviction: p.conviction(setupScore),
		Factors:    t.factors,
		Policy:     p.Name(),
		Metrics: domain.ScoreMetrics{
			AvgBandarCost:    cost.AvgCost,
			PremiumToCostPct: cost.PremiumPct,
			BullishFactors:   t.bullish,
			BearishFactors:   t.bearish,
			Tier1Signals:     t.tier1,
			SetupScore:       setupScore,
			SetupTier:        tier,
		},
	}
}

// bucket clamps a raw bucket delta to its budget and records it.
func (p *PriorityPolicy) bucket(t *tally, raw, budget float64, name string) {
	delta := formulas.Clamp(raw, -budget, budget)
	if delta == 0 {
		return
	}
	direction := "bullish"
	if delta < 0 {
		direction = "bearish"
	}
	t.add(delta, fmt.Sprintf("%s bucket %s %+.1f", name, direction, delta))
}

func (p *PriorityPolicy) brokerAccumulation(b domain.IndicatorBundle) float64 {
	raw := 0.0
	switch b.Concentration.Signal {
	case domain.ConcentrationCoordinated:
		raw += 10
	case domain.ConcentrationSingleDominant:
		raw += 8
	}
	if net := bandarNetValue(b); net != 0 {
		raw += formulas.Clamp(net/1e9*2, -8, 8)
	}
	if b.Concentration.TopShare >= 0.4 {
		raw += 3
	}
	return raw
}

func (p *PriorityPolicy) volumePrice(b domain.IndicatorBundle, bar domain.PriceBar) float64 {
	raw := 0.0
	switch b.Volume.Signal {
	case domain.VolumeStealthAccum:
		if b.Volume.Severity == domain.SeverityHigh {
			raw += 6
		} else {
			raw += 4
		}
	case domain.VolumeBreakout:
		if bar.ChangePct > 0 {
			raw += 5
		} else {
			raw -= 6
		}
	}
	switch b.DryUp.Phase {
	case domain.DryUpBreakout:
		raw += 8
	case domain.DryUpAccumulating:
		raw += 4
	}
	switch b.BidAsk.Signal {
	case domain.BidAskStealthAccum:
		raw += 5
	case domain.BidAskHiddenSupport:
		raw += 3
	case domain.BidAskDistribution:
		raw -= 6
	}
	if b.PriceAction.BearTrap {
		raw += 3
	}
	if b.PriceAction.GapUpBreakout {
		raw += 3
	}
	if b.PriceAction.FloorDefense {
		raw += 2
	}
	return raw
}

func (p *PriorityPolicy) foreign(b domain.IndicatorBundle) float64 {
	raw := formulas.Clamp(b.ForeignFlow.NetValue/1e9*2, -7, 7)
	sign := 1.0
	if b.ForeignStreak.Direction == domain.StreakSell {
		sign = -1
	}
	switch b.ForeignStreak.Strength {
	case domain.StreakStrengthStrong:
		raw += sign * 5
	case domain.StreakStrengthModerate:
		raw += sign * 3
	case domain.StreakStrengthWeak:
		raw += sign * 1
	}
	return raw
}

func (p *PriorityPolicy) quantitative(q domain.Quantitative) float64 {
	raw := 0.0
	switch q.MFISignal {
	case domain.QuantOversold:
		raw += 3
	case domain.QuantOverbought:
		raw -= 3
	case domain.QuantBullish:
		raw += 1
	case domain.QuantBearish:
		raw -= 1
	}
	switch q.OBVSignal {
	case domain.QuantBullishDiv:
		raw += 3
	case domain.QuantBearishDiv:
		raw -= 3
	}
	switch q.VWAPSignal {
	case domain.QuantReclaim:
		raw += 2
	case domain.QuantRejection:
		raw -= 2
	}
	switch q.CMFSignal {
	case domain.QuantBullish:
		raw += 2
	case domain.QuantBearish:
		raw -= 2
	}
	return raw
}

func (p *PriorityPolicy) relativeStrength(in Input) float64 {
	if in.Market == nil {
		return 0
	}
	if in.Market.IndexChangePct < -1 && in.Bar.ChangePct > 0 {
		return 4
	}
	if in.Market.IndexChangePct > 1 && in.Bar.ChangePct < 0 {
		return -3
	}
	return 0
}

// idealSetup runs the nine independent boolean checks. The fraction
// passed maps to a quality tier used as a secondary conviction gauge.
func (p *PriorityPolicy) idealSetup(b domain.IndicatorBundle, cost CostBasis) (passed, total int) {
	checks := []bool{
		// Ownership stability: a sustained buy streak or dominant brokers.
		b.ForeignStreak.Direction == domain.StreakBuy && b.ForeignStreak.Days >= 3,
		// Concentration present.
		b.Concentration.Signal != domain.ConcentrationNone,
		// Accumulation pressure: buy-side imbalance.
		b.BidAsk.Ratio >= 1.2,
		// Concentration share: top-3 holding a meaningful slice.
		b.Concentration.TopShare >= 0.4,
		// Cost-basis sweet spot.
		cost.Known && cost.PremiumPct >= -20 && cost.PremiumPct <= 15,
		// Not overextended above the cohort's cost.
		!cost.Known || cost.PremiumPct <= 40,
		// Ongoing big-broker buying.
		bandarNetValue(b) > 0,
		// OBV positive.
		b.Quant.OBV > 0 || b.Quant.OBVSignal == domain.QuantBullishDiv,
		// CMF positive.
		b.Quant.CMF > 0,
	}
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return passed, len(checks)
}

func setupTier(score float64) string {
	switch {
	case score >= 0.78:
		return SetupExcellent
	case score >= 0.56:
		return SetupGood
	case score >= 0.33:
		return SetupFair
	default:
		return SetupPoor
	}
}

func (p *PriorityPolicy) conviction(setupScore float64) int {
	conviction := 1 + int(setupScore*4)
	if conviction > 5 {
		conviction = 5
	}
	return conviction
}
