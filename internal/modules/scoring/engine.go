package scoring

import (
	"github.com/rs/zerolog"

	"github.com/nugraha/bandarscope/internal/domain"
)

// Engine runs the selected scoring policy. It holds no mutable state
// and is safe to invoke concurrently across symbols.
type Engine struct {
	policy ScoringPolicy
	log    zerolog.Logger
}

// NewEngine creates a scoring engine with the given policy.
func NewEngine(policy ScoringPolicy, log zerolog.Logger) *Engine {
	return &Engine{
		policy: policy,
		log:    log.With().Str("component", "scoring").Str("policy", policy.Name()).Logger(),
	}
}

// PolicyByName resolves a policy name ("conservative", "priority",
// "legacy"); unknown names fall back to the canonical conservative
// policy.
func PolicyByName(name string) ScoringPolicy {
	switch name {
	case "priority":
		return NewPriorityPolicy()
	case "legacy":
		return NewLegacyPolicy()
	default:
		return NewConservativePolicy()
	}
}

// Score produces a ScoreResult for one symbol/day. Deterministic given
// identical inputs; a degraded bundle still yields a valid neutral
// result rather than an error.
func (e *Engine) Score(bar domain.PriceBar, bundle domain.IndicatorBundle, market *domain.MarketContext) domain.ScoreResult {
	if bundle.Degraded {
		e.log.Warn().Str("symbol", bundle.Symbol).Msg("scoring degraded bundle, result will be neutral")
	}

	result := e.policy.Score(Input{Bar: bar, Bundle: bundle, Market: market})

	e.log.Debug().
		Str("symbol", bundle.Symbol).
		Int("score", result.Score).
		Str("signal", string(result.Signal)).
		Int("factors", len(result.Factors)).
		Msg("scored symbol")
	return result
}

// Policy returns the engine's active policy.
func (e *Engine) Policy() ScoringPolicy { return e.policy }
