package scoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/nugraha/bandarscope/internal/domain"
)

func TestLegacy_FlatWeightsWithoutGating(t *testing.T) {
	p := NewLegacyPolicy()

	// A single strong factor pushes the ungated legacy formula straight
	// into BUY territory, which is exactly why it is not canonical.
	bundle := neutralBundle()
	bundle.Concentration = domain.BrokerConcentration{
		Signal:   domain.ConcentrationSingleDominant,
		Dominant: []domain.DominantBroker{{Code: "AK", Appearances: 4, NetValue: 8e9}},
	}

	result := p.Score(Input{Bar: neutralBar(), Bundle: bundle})

	assert.Equal(t, 62, result.Score)
	assert.Equal(t, domain.SignalBuy, result.Signal)
	assert.Equal(t, "legacy", result.Policy)
}

func TestLegacy_NeutralBundleScoresBaseline(t *testing.T) {
	p := NewLegacyPolicy()

	result := p.Score(Input{Bar: neutralBar(), Bundle: neutralBundle()})

	assert.Equal(t, ScoreBaseline, result.Score)
	assert.Equal(t, domain.SignalHold, result.Signal)
}

func TestLegacy_SymmetricForeignWeights(t *testing.T) {
	p := NewLegacyPolicy()

	buy := neutralBundle()
	buy.ForeignFlow = domain.ForeignFlow{NetValue: 1e9}
	sell := neutralBundle()
	sell.ForeignFlow = domain.ForeignFlow{NetValue: -1e9}

	buyScore := p.Score(Input{Bar: neutralBar(), Bundle: buy}).Score
	sellScore := p.Score(Input{Bar: neutralBar(), Bundle: sell}).Score

	assert.Equal(t, 60, buyScore)
	assert.Equal(t, 40, sellScore)
}

func TestPolicyByName(t *testing.T) {
	assert.Equal(t, "conservative", PolicyByName("conservative").Name())
	assert.Equal(t, "priority", PolicyByName("priority").Name())
	assert.Equal(t, "legacy", PolicyByName("legacy").Name())
	assert.Equal(t, "conservative", PolicyByName("").Name(), "unknown names fall back to canonical")
	assert.Equal(t, "conservative", PolicyByName("experimental").Name())
}

func TestEngine_DegradedBundleStillScores(t *testing.T) {
	engine := NewEngine(NewConservativePolicy(), zerolog.Nop())

	bundle := neutralBundle()
	bundle.Degraded = true

	result := engine.Score(neutralBar(), bundle, nil)

	assert.Equal(t, ScoreBaseline, result.Score)
	assert.Equal(t, domain.SignalHold, result.Signal)
}
