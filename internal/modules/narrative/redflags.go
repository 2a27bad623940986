package narrative

import (
	"fmt"

	"github.com/nugraha/bandarscope/internal/domain"
)

// Red-flag codes.
const (
	FlagDistribution       = "DISTRIBUTION"
	FlagCoordinatedExit    = "COORDINATED_EXIT"
	FlagForeignExodus      = "FOREIGN_EXODUS"
	FlagUnsustainableRally = "UNSUSTAINABLE_RALLY"
	FlagPossiblePump       = "POSSIBLE_PUMP"
)

// DetectRedFlags scans the bundle for adverse patterns, independent of
// whichever scoring policy is active. These drive user-facing warnings.
func DetectRedFlags(bar domain.PriceBar, bundle domain.IndicatorBundle) RedFlagReport {
	report := RedFlagReport{Flags: []RedFlag{}, RiskLevel: domain.SeverityNone}

	add := func(code string, severity domain.Severity, detail string) {
		report.Flags = append(report.Flags, RedFlag{Code: code, Severity: severity, Detail: detail})
		report.RiskLevel = domain.MaxSeverity(report.RiskLevel, severity)
	}

	// High volume with a falling price: distribution.
	if bundle.Volume.Ratio >= 2 && bar.ChangePct <= -3 {
		add(FlagDistribution, domain.SeverityHigh,
			fmt.Sprintf("Volume %.1fx average while price fell %.1f%%: distribution", bundle.Volume.Ratio, -bar.ChangePct))
	}

	// Three or more brokers simultaneously net-selling: coordinated exit.
	sellers := 0
	for _, b := range bundle.BrokerSummary {
		if b.NetValue < 0 {
			sellers++
		}
	}
	if sellers >= 3 {
		severity := domain.SeverityHigh
		if sellers >= 5 {
			severity = domain.SeverityCritical
		}
		add(FlagCoordinatedExit, severity,
			fmt.Sprintf("%d top brokers net-selling simultaneously", sellers))
	}

	// Ten or more consecutive foreign sell days: exodus.
	if bundle.ForeignStreak.Direction == domain.StreakSell && bundle.ForeignStreak.Days >= 10 {
		add(FlagForeignExodus, domain.SeverityCritical,
			fmt.Sprintf("%d-day foreign sell streak, %.1fB net out", bundle.ForeignStreak.Days, -bundle.ForeignStreak.NetValue/1e9))
	}

	// Rising price on sub-average volume: unsustainable rally.
	if bar.ChangePct >= 2 && bundle.Volume.Ratio > 0 && bundle.Volume.Ratio < 1 {
		add(FlagUnsustainableRally, domain.SeverityMedium,
			fmt.Sprintf("Price up %.1f%% on %.1fx average volume", bar.ChangePct, bundle.Volume.Ratio))
	}

	// Large price+volume spike with no corroboration from broker
	// concentration or foreign buying: possible pump.
	if bundle.Volume.Ratio >= 2.5 && bar.ChangePct >= 4 &&
		bundle.Concentration.Signal == domain.ConcentrationNone &&
		bundle.ForeignFlow.NetValue <= 0 {
		add(FlagPossiblePump, domain.SeverityHigh,
			fmt.Sprintf("Price up %.1f%% on %.1fx volume with no broker or foreign corroboration", bar.ChangePct, bundle.Volume.Ratio))
	}

	return report
}
