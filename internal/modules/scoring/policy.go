// Package scoring aggregates an indicator bundle into a bounded score,
// a discrete signal, a conviction level, and an auditable factor list.
//
// Three formula revisions exist in production history. They are modeled
// as independent ScoringPolicy implementations with their own weight
// tables and gating semantics; the conservative policy is canonical.
// Their arithmetic is deliberately not merged.
package scoring

import (
	"math"

	"github.com/nugraha/bandarscope/internal/domain"
)

// Score bounds and baseline shared by every policy.
const (
	ScoreMin      = 0
	ScoreMax      = 100
	ScoreBaseline = 50
)

// Input is everything a policy sees for one scoring pass.
type Input struct {
	Bar    domain.PriceBar
	Bundle domain.IndicatorBundle
	Market *domain.MarketContext // optional
}

// ScoringPolicy is one named formula revision: a weights table plus
// gating rules. Implementations must be pure and deterministic.
type ScoringPolicy interface {
	Name() string
	Score(in Input) domain.ScoreResult
}

// SignalBands maps a clamped score to a discrete signal. Bands are
// monotonic and contiguous, covering the whole score range.
type SignalBands struct {
	StrongBuy int
	Buy       int
	Hold      int
	Reduce    int
}

// DefaultBands is the canonical signal mapping.
var DefaultBands = SignalBands{StrongBuy: 70, Buy: 60, Hold: 45, Reduce: 35}

// Classify maps a score to its signal. Total over every valid score.
func (b SignalBands) Classify(score int) domain.Signal {
	switch {
	case score >= b.StrongBuy:
		return domain.SignalStrongBuy
	case score >= b.Buy:
		return domain.SignalBuy
	case score >= b.Hold:
		return domain.SignalHold
	case score >= b.Reduce:
		return domain.SignalReduce
	default:
		return domain.SignalSell
	}
}

// clampScore bounds a raw score to the declared closed interval.
func clampScore(score float64) int {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return int(math.Round(score))
}

// tally accumulates additive deltas with their explanations. Factors
// are appended in the order applied so the output stays auditable:
// score − baseline equals the sum of explained deltas before gating.
type tally struct {
	score   float64
	factors []string
	bullish int
	bearish int
	tier1   int
}

func newTally() *tally {
	return &tally{score: ScoreBaseline, factors: []string{}}
}

// add applies a delta with its explanation. Positive deltas count as
// bullish factors, negative as bearish; zero deltas are not recorded.
func (t *tally) add(delta float64, factor string) {
	if delta == 0 {
		return
	}
	t.score += delta
	t.factors = append(t.factors, factor)
	if delta > 0 {
		t.bullish++
	} else {
		t.bearish++
	}
}

// addTier1 applies a delta from a high-conviction ("tier-1") signal:
// multi-day streaks, broker concentration, confirmed breakouts.
func (t *tally) addTier1(delta float64, factor string) {
	t.add(delta, factor)
	if delta > 0 {
		t.tier1++
	}
}

// capAt lowers the running score to at most max, recording why.
func (t *tally) capAt(max float64, reason string) {
	if t.score > max {
		t.score = max
		t.factors = append(t.factors, reason)
	}
}

// CostBasis summarizes the net-buying bandar cohort's average cost and
// the current price's premium to it.
type CostBasis struct {
	AvgCost    float64
	PremiumPct float64
	Known      bool
}

// costBasis computes the average cost per share of the net-buying
// cohort: bandar brokers when any are net buyers, otherwise the broker
// summary's net buyers. Lot-size adjusted; a cohort that bought nothing
// yields an unknown cost basis.
func costBasis(bundle domain.IndicatorBundle, price float64) CostBasis {
	cohort := netBuyers(bundle.BandarBrokers)
	if len(cohort) == 0 {
		cohort = netBuyers(bundle.BrokerSummary)
	}

	var totalValue, totalLots float64
	for _, b := range cohort {
		totalValue += b.BuyValue
		totalLots += b.BuyVolume
	}
	if totalLots == 0 || totalValue == 0 {
		return CostBasis{}
	}

	avgCost := totalValue / (totalLots * domain.LotSize)
	return CostBasis{
		AvgCost:    avgCost,
		PremiumPct: (price - avgCost) / avgCost * 100,
		Known:      true,
	}
}

func netBuyers(brokers []domain.BrokerActivity) []domain.BrokerActivity {
	out := make([]domain.BrokerActivity, 0, len(brokers))
	for _, b := range brokers {
		if b.NetValue > 0 {
			out = append(out, b)
		}
	}
	return out
}

// bandarNetValue sums net value across the bandar cohort.
func bandarNetValue(bundle domain.IndicatorBundle) float64 {
	var net float64
	for _, b := range bundle.BandarBrokers {
		net += b.NetValue
	}
	return net
}

// concentrationNetValue sums net value across dominant brokers.
func concentrationNetValue(bundle domain.IndicatorBundle) float64 {
	var net float64
	for _, d := range bundle.Concentration.Dominant {
		net += d.NetValue
	}
	return net
}
