package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nugraha/bandarscope/internal/domain"
)

func TestPriority_BucketsClampToBudget(t *testing.T) {
	p := NewPriorityPolicy()

	// Stack the broker-accumulation bucket far past its budget: dominant
	// coordinated buying, a huge bandar net, and a high top-3 share.
	bundle := neutralBundle()
	bundle.Concentration = domain.BrokerConcentration{
		Signal: domain.ConcentrationCoordinated,
		Dominant: []domain.DominantBroker{
			{Code: "AK", Appearances: 5, NetValue: 20e9},
			{Code: "BK", Appearances: 4, NetValue: 15e9},
		},
		TopShare: 0.9,
	}
	bundle.BandarBrokers = []domain.BrokerActivity{
		{Code: "AK", BuyVolume: 1000, BuyValue: 20e9, NetValue: 20e9},
	}

	result := p.Score(Input{Bar: neutralBar(), Bundle: bundle})

	// Raw bucket is 10+8+3=21 but the budget caps it at 15. The other
	// buckets are silent, so the score lands at exactly baseline+15.
	assert.Equal(t, 65, result.Score)
	assert.Equal(t, domain.SignalBuy, result.Signal)
}

func TestPriority_SetupTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		tier  string
	}{
		{1.0, SetupExcellent},
		{0.78, SetupExcellent},
		{0.77, SetupGood},
		{0.56, SetupGood},
		{0.55, SetupFair},
		{0.33, SetupFair},
		{0.32, SetupPoor},
		{0.0, SetupPoor},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tier, setupTier(tc.score), "setup score %.2f", tc.score)
	}
}

func TestPriority_IdealSetupChecklist(t *testing.T) {
	p := NewPriorityPolicy()

	// A bundle engineered to pass every check.
	bundle := neutralBundle()
	bundle.ForeignStreak = domain.ForeignStreak{Direction: domain.StreakBuy, Strength: domain.StreakStrengthModerate, Days: 4, NetValue: 6e9}
	bundle.Concentration = domain.BrokerConcentration{
		Signal:   domain.ConcentrationSingleDominant,
		Dominant: []domain.DominantBroker{{Code: "AK", Appearances: 4, NetValue: 8e9}},
		TopShare: 0.5,
	}
	bundle.BidAsk = domain.BidAskAnalysis{Signal: domain.BidAskHiddenSupport, Ratio: 1.3}
	bundle.BandarBrokers = []domain.BrokerActivity{
		{Code: "AK", BuyVolume: 10000, BuyValue: 1e9, NetValue: 8e9},
	}
	bundle.Quant.OBV = 5000
	bundle.Quant.CMF = 0.3
	bundle.Quant.CMFSignal = domain.QuantBullish

	bar := neutralBar()
	bar.Close = 1000 // cohort cost 1e9/(10000×100) = 1,000: zero premium

	result := p.Score(Input{Bar: bar, Bundle: bundle})

	assert.Equal(t, 1.0, result.Metrics.SetupScore, "all nine checks pass")
	assert.Equal(t, SetupExcellent, result.Metrics.SetupTier)
	assert.Equal(t, 5, result.Conviction)
	assert.Contains(t, result.Factors, "Ideal setup 9/9 checks (EXCELLENT)")
}

func TestPriority_NeutralBundle(t *testing.T) {
	p := NewPriorityPolicy()

	result := p.Score(Input{Bar: neutralBar(), Bundle: neutralBundle()})

	// Only the unknown-cost "not overextended" check passes.
	assert.Equal(t, ScoreBaseline, result.Score)
	assert.Equal(t, domain.SignalHold, result.Signal)
	assert.Equal(t, SetupPoor, result.Metrics.SetupTier)
}

func TestPriority_RelativeWeaknessPenalty(t *testing.T) {
	p := NewPriorityPolicy()

	bar := neutralBar()
	bar.ChangePct = -1.0
	market := &domain.MarketContext{IndexChangePct: 2.0}

	result := p.Score(Input{Bar: bar, Bundle: neutralBundle(), Market: market})

	assert.Less(t, result.Score, ScoreBaseline, "lagging a rising index costs points")
}
