package config

import "fmt"

// Thresholds centralizes every tunable band, window and watch-list used
// by the indicator deriver and the scoring engine. The deriver and
// engine take this struct explicitly instead of reading package-level
// constants, so bands are testable and tunable without code edits.
type Thresholds struct {
	// VolumeWindow is the rolling-average window for volume (trading days).
	VolumeWindow int
	// MinVolumeSamples is the minimum history needed for a meaningful
	// average; fewer samples reports INSUFFICIENT_DATA instead of a ratio.
	MinVolumeSamples int

	// Volume spike bands. Monotonic: NormalMax < StealthHigh < Breakout.
	// ratio < NormalMax            → NORMAL
	// [NormalMax, StealthHigh)     → STEALTH_ACCUMULATION (moderate)
	// [StealthHigh, Breakout)      → STEALTH_ACCUMULATION (high)
	// ≥ Breakout                   → BREAKOUT
	SpikeNormalMax   float64
	SpikeStealthHigh float64
	SpikeBreakout    float64

	// Volume dry-up detection.
	DryUpWindow        int     // days scanned for dry-up days
	DryUpDecay         float64 // day volume < Decay × reference avg ⇒ dry-up day
	DryUpMinDays       int     // minimum dry-up days for a phase
	DryUpBreakoutRatio float64 // spike ratio confirming VDU_BREAKOUT

	// Bid-ask imbalance. Strong must be > 1; the bearish threshold is
	// its reciprocal so both sides are symmetric around 1.0.
	BidAskStrong float64
	// FlatBandPct is the |change %| band treated as a flat price.
	FlatBandPct float64

	// Foreign streak strength (consecutive days). Monotonic.
	StreakStrong   int
	StreakModerate int
	StreakWeak     int

	// Broker concentration.
	ConcentrationDays    int // trailing days of top-3 rankings scanned
	ConcentrationMinDays int // appearances needed to count as dominant

	// BandarLargeTradeValue flags any broker whose absolute net value
	// for the day exceeds this amount, regardless of watch-list.
	BandarLargeTradeValue float64
	// TopBrokerCount caps the broker summary length.
	TopBrokerCount int

	// ForeignBrokers are broker codes treated as foreign-facing.
	ForeignBrokers []string
	// BandarWatchlist are broker codes watched as bandar candidates.
	BandarWatchlist []string
}

// DefaultThresholds returns the production policy table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		VolumeWindow:     20,
		MinVolumeSamples: 5,

		SpikeNormalMax:   1.5,
		SpikeStealthHigh: 2.0,
		SpikeBreakout:    3.0,

		DryUpWindow:        10,
		DryUpDecay:         0.7,
		DryUpMinDays:       4,
		DryUpBreakoutRatio: 2.0,

		BidAskStrong: 1.5,
		FlatBandPct:  1.0,

		StreakStrong:   5,
		StreakModerate: 3,
		StreakWeak:     2,

		ConcentrationDays:    5,
		ConcentrationMinDays: 3,

		BandarLargeTradeValue: 5_000_000_000,
		TopBrokerCount:        5,

		// IDX foreign-facing broker codes.
		ForeignBrokers: []string{"AK", "BK", "CG", "CS", "DB", "KZ", "ML", "MS", "RX", "YU", "ZP"},
		// Brokers historically associated with large coordinated flows.
		BandarWatchlist: []string{"AK", "BK", "CC", "DH", "KZ", "MG", "PD", "YP", "YU", "ZP"},
	}
}

// Validate enforces ordering invariants on the bands so every
// nonnegative ratio classifies into exactly one bucket.
func (t Thresholds) Validate() error {
	if t.VolumeWindow <= 0 || t.MinVolumeSamples <= 0 {
		return fmt.Errorf("volume window and minimum samples must be positive")
	}
	if t.MinVolumeSamples > t.VolumeWindow {
		return fmt.Errorf("minimum samples %d exceeds volume window %d", t.MinVolumeSamples, t.VolumeWindow)
	}
	if !(t.SpikeNormalMax < t.SpikeStealthHigh && t.SpikeStealthHigh < t.SpikeBreakout) {
		return fmt.Errorf("spike bands must be strictly increasing: %.2f, %.2f, %.2f",
			t.SpikeNormalMax, t.SpikeStealthHigh, t.SpikeBreakout)
	}
	if t.BidAskStrong <= 1 {
		return fmt.Errorf("bid-ask strong threshold must exceed 1.0, got %.2f", t.BidAskStrong)
	}
	if !(t.StreakWeak <= t.StreakModerate && t.StreakModerate <= t.StreakStrong) {
		return fmt.Errorf("streak thresholds must be non-decreasing: %d, %d, %d",
			t.StreakWeak, t.StreakModerate, t.StreakStrong)
	}
	if t.DryUpDecay <= 0 || t.DryUpDecay >= 1 {
		return fmt.Errorf("dry-up decay must be in (0,1), got %.2f", t.DryUpDecay)
	}
	return nil
}

// IsForeign reports whether a broker code is in the foreign set.
func (t Thresholds) IsForeign(code string) bool {
	for _, c := range t.ForeignBrokers {
		if c == code {
			return true
		}
	}
	return false
}

// IsWatched reports whether a broker code is on the bandar watch-list.
func (t Thresholds) IsWatched(code string) bool {
	for _, c := range t.BandarWatchlist {
		if c == code {
			return true
		}
	}
	return false
}
