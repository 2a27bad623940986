package scoring

import (
	"fmt"
	"math"

	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/pkg/formulas"
)

// ConservativeWeights is the canonical policy's weight table. Deltas
// are additive on the 50 baseline; value-scaled deltas are monotone in
// the underlying value.
type ConservativeWeights struct {
	ForeignFlowMax     float64 // cap for value-scaled foreign flow delta
	ForeignFlowPerBn   float64 // delta per billion of foreign net value
	StreakStrong       float64
	StreakModerate     float64
	StreakWeak         float64
	StealthHigh        float64
	StealthModerate    float64
	BreakoutUp         float64
	BreakoutDown       float64 // negative: breakout on a falling price
	VDUBreakout        float64
	VDUAccumulating    float64
	BidAskAccum        float64
	BidAskSupport      float64
	BidAskDistribution float64 // negative
	ConcentrationBase  float64
	ConcentrationPerBn float64
	ConcentrationMax   float64
	CoordinatedBonus   float64
	BearTrap           float64
	FloorDefense       float64
	HealthyPullback    float64
	Compression        float64
	GapUpBreakout      float64
	QuantOversold      float64
	QuantOverbought    float64 // negative
	QuantDivergence    float64 // OBV divergence, signed by direction
	QuantVWAP          float64 // reclaim/rejection, signed
	QuantCMF           float64 // bullish/bearish, signed
	ValueZone          float64 // deep discount to bandar cost
	SweetSpot          float64
	DangerZone         float64 // negative
	RelativeStrength   float64

	// Gating caps.
	NoConfirmationCap float64 // max score with <2 bullish factors
	NoTier1Cap        float64 // max score without a tier-1 signal
	CriticalBearCap   float64 // max score with a critical bearish factor
}

// DefaultConservativeWeights is the production table for the
// conservative ("honest") policy.
func DefaultConservativeWeights() ConservativeWeights {
	return ConservativeWeights{
		ForeignFlowMax:     12,
		ForeignFlowPerBn:   3,
		StreakStrong:       10,
		StreakModerate:     6,
		StreakWeak:         3,
		StealthHigh:        8,
		StealthModerate:    5,
		BreakoutUp:         5,
		BreakoutDown:       -6,
		VDUBreakout:        12,
		VDUAccumulating:    6,
		BidAskAccum:        8,
		BidAskSupport:      5,
		BidAskDistribution: -8,
		ConcentrationBase:  10,
		ConcentrationPerBn: 1,
		ConcentrationMax:   14,
		CoordinatedBonus:   2,
		BearTrap:           6,
		FloorDefense:       5,
		HealthyPullback:    4,
		Compression:        3,
		GapUpBreakout:      5,
		QuantOversold:      4,
		QuantOverbought:    -4,
		QuantDivergence:    4,
		QuantVWAP:          3,
		QuantCMF:           3,
		ValueZone:          8,
		SweetSpot:          5,
		DangerZone:         -8,
		RelativeStrength:   3,

		NoConfirmationCap: 59, // below the BUY band
		NoTier1Cap:        69, // below the STRONG_BUY band
		CriticalBearCap:   45, // at most HOLD
	}
}

// ConservativePolicy is the canonical, confirmation-gated formula:
// one strong factor alone can never produce a high-confidence signal.
type ConservativePolicy struct {
	weights ConservativeWeights
	bands   SignalBands
}

// NewConservativePolicy creates the canonical scoring policy.
func NewConservativePolicy() *ConservativePolicy {
	return &ConservativePolicy{
		weights: DefaultConservativeWeights(),
		bands:   DefaultBands,
	}
}

// Name implements ScoringPolicy.
func (p *ConservativePolicy) Name() string { return "conservative" }

// Score implements ScoringPolicy.
func (p *ConservativePolicy) Score(in Input) domain.ScoreResult {
	w := p.weights
	b := in.Bundle
	t := newTally()

	// Foreign flow: value-scaled, monotone in net value.
	if b.ForeignFlow.NetValue != 0 {
		billions := b.ForeignFlow.NetValue / 1e9
		delta := formulas.Clamp(billions*w.ForeignFlowPerBn, -w.ForeignFlowMax, w.ForeignFlowMax)
		if b.ForeignFlow.NetValue > 0 {
			t.add(delta, fmt.Sprintf("Foreign net buy %.1fB", billions))
		} else {
			t.add(delta, fmt.Sprintf("Foreign net sell %.1fB", -billions))
		}
	}

	// Foreign streak: a strong streak is a tier-1 signal.
	p.scoreStreak(t, b.ForeignStreak)

	// Volume spike classification.
	switch b.Volume.Signal {
	case domain.VolumeStealthAccum:
		if b.Volume.Severity == domain.SeverityHigh {
			t.add(w.StealthHigh, fmt.Sprintf("Stealth accumulation volume %.1fx average", b.Volume.Ratio))
		} else {
			t.add(w.StealthModerate, fmt.Sprintf("Elevated volume %.1fx average", b.Volume.Ratio))
		}
	case domain.VolumeBreakout:
		if in.Bar.ChangePct > 0 {
			// Breakout confirmed by price: tier-1.
			t.addTier1(w.BreakoutUp, fmt.Sprintf("Volume breakout %.1fx with price up %.1f%%", b.Volume.Ratio, in.Bar.ChangePct))
		} else {
			t.add(w.BreakoutDown, fmt.Sprintf("Volume breakout %.1fx on falling price (possible distribution)", b.Volume.Ratio))
		}
	}

	// Volume dry-up.
	switch b.DryUp.Phase {
	case domain.DryUpBreakout:
		t.addTier1(w.VDUBreakout, fmt.Sprintf("Dry-up breakout after %d quiet days (confidence %.0f)", b.DryUp.DryUpDays, b.DryUp.Confidence))
	case domain.DryUpAccumulating:
		t.add(w.VDUAccumulating, fmt.Sprintf("Volume dry-up phase, %d quiet days", b.DryUp.DryUpDays))
	}

	// Bid-ask imbalance.
	switch b.BidAsk.Signal {
	case domain.BidAskStealthAccum:
		t.add(w.BidAskAccum, fmt.Sprintf("Buy/sell imbalance %.2f absorbing weakness", b.BidAsk.Ratio))
	case domain.BidAskHiddenSupport:
		t.add(w.BidAskSupport, fmt.Sprintf("Hidden support, buy/sell imbalance %.2f", b.BidAsk.Ratio))
	case domain.BidAskDistribution:
		t.add(w.BidAskDistribution, fmt.Sprintf("Distribution, buy/sell imbalance %.2f", b.BidAsk.Ratio))
	}

	// Broker concentration: tier-1, value-scaled.
	if b.Concentration.Signal != domain.ConcentrationNone {
		delta := w.ConcentrationBase + math.Min(concentrationNetValue(b)/1e9*w.ConcentrationPerBn, w.ConcentrationMax-w.ConcentrationBase)
		if b.Concentration.Signal == domain.ConcentrationCoordinated {
			delta += w.CoordinatedBonus
			t.addTier1(delta, fmt.Sprintf("Coordinated accumulation by %d dominant brokers", len(b.Concentration.Dominant)))
		} else {
			t.addTier1(delta, fmt.Sprintf("Single dominant broker %s accumulating", b.Concentration.Dominant[0].Code))
		}
	}

	// Price-action patterns.
	if b.PriceAction.BearTrap {
		t.add(w.BearTrap, "Bear trap: breakdown recovered on volume")
	}
	if b.PriceAction.FloorDefense {
		t.add(w.FloorDefense, "Floor defense at support")
	}
	if b.PriceAction.HealthyPullback {
		t.add(w.HealthyPullback, "Healthy low-volume pullback")
	}
	if b.PriceAction.Compression {
		t.add(w.Compression, "Price compression, tight range")
	}
	if b.PriceAction.GapUpBreakout {
		t.add(w.GapUpBreakout, "Gap-up breakout on volume")
	}

	// Quantitative measures.
	p.scoreQuant(t, b.Quant)

	// Cost-basis zone vs the bandar cohort's average cost.
	cost := costBasis(b, in.Bar.Close)
	if cost.Known {
		switch {
		case cost.PremiumPct <= -20:
			t.add(w.ValueZone, fmt.Sprintf("Deep value zone, %.1f%% below bandar cost", -cost.PremiumPct))
		case cost.PremiumPct <= 15:
			t.add(w.SweetSpot, fmt.Sprintf("Cost-basis sweet spot, %.1f%% premium", cost.PremiumPct))
		case cost.PremiumPct > 40:
			t.add(w.DangerZone, fmt.Sprintf("Danger zone, %.1f%% above bandar cost", cost.PremiumPct))
		}
	}

	// Relative strength vs the index.
	if in.Market != nil && in.Market.IndexChangePct < -2 && in.Bar.ChangePct > 0 {
		t.add(w.RelativeStrength, fmt.Sprintf("Relative strength: up %.1f%% against index %.1f%%", in.Bar.ChangePct, in.Market.IndexChangePct))
	}

	// Gating. A critical bearish factor caps the score regardless of
	// how many bullish factors are present.
	if p.criticalBearish(b) {
		t.capAt(p.weights.CriticalBearCap, "Capped: critical bearish factor present")
	}
	if t.bullish < 2 {
		t.capAt(p.weights.NoConfirmationCap, "Capped: fewer than 2 confirming bullish factors")
	}
	if t.tier1 == 0 {
		t.capAt(p.weights.NoTier1Cap, "Capped: no tier-1 signal for strong conviction")
	}

	score := clampScore(t.score)
	return domain.ScoreResult{
		Score:      score,
		Signal:     p.bands.Classify(score),
		Conviction: p.conviction(t, b, cost),
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

func (p *ConservativePolicy) scoreStreak(t *tally, streak domain.ForeignStreak) {
	w := p.weights
	sign := 1.0
	verb := "buying"
	if streak.Direction == domain.StreakSell {
		sign = -1
		verb = "selling"
	}
	switch {
	case streak.Direction == domain.StreakNone:
	case streak.Strength == domain.StreakStrengthStrong:
		delta := sign * w.StreakStrong
		factor := fmt.Sprintf("%d-day foreign %s streak", streak.Days, verb)
		if sign > 0 {
			t.addTier1(delta, factor)
		} else {
			t.add(delta, factor)
		}
	case streak.Strength == domain.StreakStrengthModerate:
		t.add(sign*w.StreakModerate, fmt.Sprintf("%d-day foreign %s streak", streak.Days, verb))
	case streak.Strength == domain.StreakStrengthWeak:
		t.add(sign*w.StreakWeak, fmt.Sprintf("%d-day foreign %s streak", streak.Days, verb))
	}
}

func (p *ConservativePolicy) scoreQuant(t *tally, q domain.Quantitative) {
	w := p.weights
	switch q.MFISignal {
	case domain.QuantOversold:
		t.add(w.QuantOversold, fmt.Sprintf("MFI oversold at %.0f", q.MFI))
	case domain.QuantOverbought:
		t.add(w.QuantOverbought, fmt.Sprintf("MFI overbought at %.0f", q.MFI))
	}
	switch q.OBVSignal {
	case domain.QuantBullishDiv:
		t.add(w.QuantDivergence, "Bullish OBV divergence: volume rising into weakness")
	case domain.QuantBearishDiv:
		t.add(-w.QuantDivergence, "Bearish OBV divergence: volume fading on strength")
	}
	switch q.VWAPSignal {
	case domain.QuantReclaim:
		t.add(w.QuantVWAP, fmt.Sprintf("Price %.1f%% above VWAP", q.VWAPDeviationPct))
	case domain.QuantRejection:
		t.add(-w.QuantVWAP, fmt.Sprintf("Price %.1f%% below VWAP", q.VWAPDeviationPct))
	}
	switch q.CMFSignal {
	case domain.QuantBullish:
		t.add(w.QuantCMF, fmt.Sprintf("CMF positive at %.2f", q.CMF))
	case domain.QuantBearish:
		t.add(-w.QuantCMF, fmt.Sprintf("CMF negative at %.2f", q.CMF))
	}
}

// criticalBearish reports foreign exodus or major distribution: the
// asymmetric cap fires on either, regardless of bullish factors.
func (p *ConservativePolicy) criticalBearish(b domain.IndicatorBundle) bool {
	exodus := b.ForeignStreak.Direction == domain.StreakSell &&
		b.ForeignStreak.Strength == domain.StreakStrengthStrong
	majorDistribution := b.BidAsk.Signal == domain.BidAskDistribution &&
		b.Volume.Ratio >= 2
	return exodus || majorDistribution
}

// conviction layers a 1-5 confidence rating on the score from
// high-trust factor combinations.
func (p *ConservativePolicy) conviction(t *tally, b domain.IndicatorBundle, cost CostBasis) int {
	conviction := 1
	if b.Concentration.Signal != domain.ConcentrationNone {
		conviction++
	}
	if cost.Known && cost.PremiumPct <= 15 {
		conviction++
	}
	if bandarNetValue(b) > 0 {
		conviction++
	}
	if t.tier1 >= 2 {
		conviction++
	}
	if conviction > 5 {
		conviction = 5
	}
	return conviction
}
