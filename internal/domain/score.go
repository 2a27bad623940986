package domain

// Signal is the discrete trade signal derived from the final score.
type Signal string

const (
	SignalStrongBuy Signal = "STRONG_BUY"
	SignalBuy       Signal = "BUY"
	SignalHold      Signal = "HOLD"
	SignalReduce    Signal = "REDUCE"
	SignalSell      Signal = "SELL"
)

// ScoreMetrics is the numeric summary attached to a ScoreResult.
type ScoreMetrics struct {
	// AvgBandarCost is the average cost per share of the net-buying
	// bandar cohort (lot-size adjusted), 0 when the cohort bought nothing.
	AvgBandarCost float64 `json:"avg_bandar_cost"`
	// PremiumToCostPct is (price − avg cost) / avg cost × 100.
	PremiumToCostPct float64 `json:"premium_to_cost_pct"`
	BullishFactors   int     `json:"bullish_factors"`
	BearishFactors   int     `json:"bearish_factors"`
	Tier1Signals     int     `json:"tier1_signals"`
	// SetupScore/SetupTier are the priority policy's auxiliary "ideal
	// setup" checklist result; zero-valued under other policies.
	SetupScore float64 `json:"setup_score,omitempty"`
	SetupTier  string  `json:"setup_tier,omitempty"`
}

// ScoreResult is the output of one scoring pass. Stateless; never
// mutated after construction. Factors are in the order the adjustments
// were applied, so score − 50 equals the sum of their deltas before
// clamping and gating.
type ScoreResult struct {
	Score      int          `json:"score"` // clamped [0,100]
	Signal     Signal       `json:"signal"`
	Conviction int          `json:"conviction"` // 1-5
	Factors    []string     `json:"factors"`
	Metrics    ScoreMetrics `json:"metrics"`
	Policy     string       `json:"policy"` // name of the scoring policy used
}
