package domain

// VolumeSignal classifies today's volume against its rolling average.
type VolumeSignal string

const (
	VolumeNormal           VolumeSignal = "NORMAL"
	VolumeStealthAccum     VolumeSignal = "STEALTH_ACCUMULATION"
	VolumeBreakout         VolumeSignal = "BREAKOUT"
	VolumeInsufficientData VolumeSignal = "INSUFFICIENT_DATA"
)

// Severity levels used by volume sub-signals and red flags.
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityModerate Severity = "MODERATE"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// severityRank orders severities for max-aggregation.
var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityModerate: 1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b Severity) Severity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// ForeignFlow aggregates buy/sell activity of foreign-flagged brokers.
type ForeignFlow struct {
	BuyVolume  float64 `json:"buy_volume"`
	BuyValue   float64 `json:"buy_value"`
	SellVolume float64 `json:"sell_volume"`
	SellValue  float64 `json:"sell_value"`
	NetVolume  float64 `json:"net_volume"`
	NetValue   float64 `json:"net_value"`
}

// VolumeAnalysis is the spike classification of today's total volume.
type VolumeAnalysis struct {
	Signal      VolumeSignal `json:"signal"`
	Severity    Severity     `json:"severity"` // only for STEALTH_ACCUMULATION
	Ratio       float64      `json:"ratio"`    // today / rolling average, 0 when avg is 0
	AvgVolume   float64      `json:"avg_volume"`
	SampleCount int          `json:"sample_count"`
}

// DryUpPhase labels the state of a volume dry-up detection.
type DryUpPhase string

const (
	DryUpNone         DryUpPhase = "NONE"
	DryUpAccumulating DryUpPhase = "VDU_ACCUMULATING"
	DryUpBreakout     DryUpPhase = "VDU_BREAKOUT"
)

// DryUpAnalysis reports a detected volume dry-up phase.
type DryUpAnalysis struct {
	Phase      DryUpPhase `json:"phase"`
	DryUpDays  int        `json:"dry_up_days"`
	Confidence float64    `json:"confidence"` // 0-95
}

// BidAskSignal classifies the buy/sell volume imbalance.
type BidAskSignal string

const (
	BidAskNeutral       BidAskSignal = "NEUTRAL"
	BidAskStealthAccum  BidAskSignal = "STEALTH_ACCUMULATION"
	BidAskHiddenSupport BidAskSignal = "HIDDEN_SUPPORT"
	BidAskDistribution  BidAskSignal = "DISTRIBUTION"
)

// BidAskAnalysis is the buy-vs-sell pressure read for one day.
type BidAskAnalysis struct {
	Signal BidAskSignal `json:"signal"`
	Ratio  float64      `json:"ratio"` // buy volume / sell volume, 0 when sell is 0
}

// StreakDirection is the sign of a consecutive foreign-flow run.
type StreakDirection string

const (
	StreakNone StreakDirection = "NONE"
	StreakBuy  StreakDirection = "BUY"
	StreakSell StreakDirection = "SELL"
)

// StreakStrength buckets a streak by day count.
type StreakStrength string

const (
	StreakStrengthNone     StreakStrength = "NONE"
	StreakStrengthWeak     StreakStrength = "WEAK"
	StreakStrengthModerate StreakStrength = "MODERATE"
	StreakStrengthStrong   StreakStrength = "STRONG"
)

// ForeignStreak is a run of consecutive same-signed foreign net flow days.
type ForeignStreak struct {
	Direction StreakDirection `json:"direction"`
	Strength  StreakStrength  `json:"strength"`
	Days      int             `json:"days"`
	NetValue  float64         `json:"net_value"` // total over the streak
}

// ConcentrationSignal differentiates how top-broker buying is distributed.
type ConcentrationSignal string

const (
	ConcentrationNone           ConcentrationSignal = "NONE"
	ConcentrationSingleDominant ConcentrationSignal = "SINGLE_DOMINANT"
	ConcentrationCoordinated    ConcentrationSignal = "COORDINATED"
)

// DominantBroker is a broker that repeatedly appears in daily top-3
// net-buy rankings.
type DominantBroker struct {
	Code        string  `json:"code"`
	Appearances int     `json:"appearances"`
	NetValue    float64 `json:"net_value"`
}

// BrokerConcentration summarizes repeated top-ranked buying.
type BrokerConcentration struct {
	Signal   ConcentrationSignal `json:"signal"`
	Dominant []DominantBroker    `json:"dominant"`
	// TopShare is the top-3 share of total buy value today, 0 when the
	// cohort total is 0.
	TopShare float64 `json:"top_share"`
}

// PriceAction holds the independent one-day pattern detectors. Several
// can fire at once; each contributes its own factor downstream.
type PriceAction struct {
	Compression     bool `json:"compression"`
	BearTrap        bool `json:"bear_trap"`
	HealthyPullback bool `json:"healthy_pullback"`
	FloorDefense    bool `json:"floor_defense"`
	GapUpBreakout   bool `json:"gap_up_breakout"`
}

// QuantSignal is a coarse direction label for a quantitative measure.
type QuantSignal string

const (
	QuantNeutral    QuantSignal = "NEUTRAL"
	QuantBullish    QuantSignal = "BULLISH"
	QuantBearish    QuantSignal = "BEARISH"
	QuantOverbought QuantSignal = "OVERBOUGHT"
	QuantOversold   QuantSignal = "OVERSOLD"
	QuantBullishDiv QuantSignal = "BULLISH_DIVERGENCE"
	QuantBearishDiv QuantSignal = "BEARISH_DIVERGENCE"
	QuantReclaim    QuantSignal = "RECLAIM"
	QuantRejection  QuantSignal = "REJECTION"
)

// Quantitative carries the simplified technical measures.
type Quantitative struct {
	MFI              float64     `json:"mfi"` // clamped [20,80]
	MFISignal        QuantSignal `json:"mfi_signal"`
	OBV              float64     `json:"obv"` // signed volume
	OBVSignal        QuantSignal `json:"obv_signal"`
	VWAP             float64     `json:"vwap"`
	VWAPDeviationPct float64     `json:"vwap_deviation_pct"`
	VWAPSignal       QuantSignal `json:"vwap_signal"`
	CMF              float64     `json:"cmf"` // [-1,1]
	CMFSignal        QuantSignal `json:"cmf_signal"`
}

// IndicatorBundle aggregates all derived signals for one symbol/day.
// Built fresh per request; no caching inside the core.
type IndicatorBundle struct {
	Symbol        string              `json:"symbol"`
	Degraded      bool                `json:"degraded"` // true when built from missing data
	ForeignFlow   ForeignFlow         `json:"foreign_flow"`
	BrokerSummary []BrokerActivity    `json:"broker_summary"` // top-N by |net value|
	BandarBrokers []BrokerActivity    `json:"bandar_brokers"` // watch-list or large-trade brokers
	Volume        VolumeAnalysis      `json:"volume"`
	DryUp         DryUpAnalysis       `json:"dry_up"`
	BidAsk        BidAskAnalysis      `json:"bid_ask"`
	ForeignStreak ForeignStreak       `json:"foreign_streak"`
	Concentration BrokerConcentration `json:"concentration"`
	PriceAction   PriceAction         `json:"price_action"`
	Quant         Quantitative        `json:"quant"`
}
