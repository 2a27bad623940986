package narrative

import (
	"fmt"

	"github.com/nugraha/bandarscope/internal/domain"
)

// Narrator formats score results into report sections. Stateless.
type Narrator struct{}

// NewNarrator creates a new narrator
func NewNarrator() *Narrator {
	return &Narrator{}
}

// Narrate builds the full report for one scored symbol. Depends only on
// the score result, the bundle, and the broker summary; deterministic.
func (n *Narrator) Narrate(bar domain.PriceBar, result domain.ScoreResult, bundle domain.IndicatorBundle) Report {
	report := Report{
		Summary:  n.summary(result, bundle),
		RedFlags: DetectRedFlags(bar, bundle),
	}

	report.Sections = append(report.Sections,
		n.executiveSection(result),
		n.costBasisSection(bar, result),
		n.foreignSection(bundle),
		n.volumeSection(bundle),
		n.brokerSection(bundle),
	)
	return report
}

func (n *Narrator) summary(result domain.ScoreResult, bundle domain.IndicatorBundle) string {
	if bundle.Degraded {
		return fmt.Sprintf("%s: no broker data available, neutral stance (%s, score %d)",
			bundle.Symbol, result.Signal, result.Score)
	}
	return fmt.Sprintf("%s: %s (score %d/100, conviction %d/5)",
		bundle.Symbol, result.Signal, result.Score, result.Conviction)
}

func (n *Narrator) executiveSection(result domain.ScoreResult) Section {
	s := newSection("Executive Summary")
	s.addf("Signal %s at score %d under the %s policy", result.Signal, result.Score, result.Policy)
	s.addf("%d bullish vs %d bearish factors, %d tier-1 signals",
		result.Metrics.BullishFactors, result.Metrics.BearishFactors, result.Metrics.Tier1Signals)
	for _, factor := range result.Factors {
		s.addf("%s", factor)
	}
	return s.build()
}

func (n *Narrator) costBasisSection(bar domain.PriceBar, result domain.ScoreResult) Section {
	s := newSection("Cost Basis Analysis")
	if result.Metrics.AvgBandarCost == 0 {
		s.addf("No net-buying cohort; cost basis unknown")
		return s.build()
	}
	s.addf("Bandar cohort average cost %.0f vs price %.0f", result.Metrics.AvgBandarCost, bar.Close)
	premium := result.Metrics.PremiumToCostPct
	switch {
	case premium <= -20:
		s.addf("Price %.1f%% below cohort cost: deep value zone", -premium)
	case premium <= 15:
		s.addf("Price within %.1f%% of cohort cost: sweet spot", premium)
	case premium <= 40:
		s.addf("Price %.1f%% above cohort cost: extended", premium)
	default:
		s.addf("Price %.1f%% above cohort cost: danger zone", premium)
	}
	return s.build()
}

func (n *Narrator) foreignSection(bundle domain.IndicatorBundle) Section {
	s := newSection("Foreign Flow")
	flow := bundle.ForeignFlow
	if flow.BuyValue == 0 && flow.SellValue == 0 {
		s.addf("No foreign broker activity")
		return s.build()
	}
	s.addf("Foreign buy %.1fB / sell %.1fB, net %+.1fB",
		flow.BuyValue/1e9, flow.SellValue/1e9, flow.NetValue/1e9)
	streak := bundle.ForeignStreak
	if streak.Days >= 2 {
		s.addf("%d-day %s streak (%s), %+.1fB over the run",
			streak.Days, streak.Direction, streak.Strength, streak.NetValue/1e9)
	}
	return s.build()
}

func (n *Narrator) volumeSection(bundle domain.IndicatorBundle) Section {
	s := newSection("Volume & Momentum")
	v := bundle.Volume
	if v.Signal == domain.VolumeInsufficientData {
		s.addf("Insufficient volume history (%d samples)", v.SampleCount)
	} else {
		s.addf("Volume %.1fx its %d-sample average (%s)", v.Ratio, v.SampleCount, v.Signal)
	}
	if bundle.DryUp.Phase != domain.DryUpNone {
		s.addf("%s: %d dry-up days, confidence %.0f",
			bundle.DryUp.Phase, bundle.DryUp.DryUpDays, bundle.DryUp.Confidence)
	}
	if bundle.BidAsk.Signal != domain.BidAskNeutral {
		s.addf("Bid/ask imbalance %.2f (%s)", bundle.BidAsk.Ratio, bundle.BidAsk.Signal)
	}
	q := bundle.Quant
	s.addf("MFI %.0f (%s), CMF %.2f (%s), VWAP deviation %+.1f%%",
		q.MFI, q.MFISignal, q.CMF, q.CMFSignal, q.VWAPDeviationPct)
	return s.build()
}

func (n *Narrator) brokerSection(bundle domain.IndicatorBundle) Section {
	s := newSection("Broker Holdings")
	if len(bundle.BrokerSummary) == 0 {
		s.addf("No broker activity recorded")
		return s.build()
	}
	for _, b := range bundle.BrokerSummary {
		role := "net buy"
		net := b.NetValue
		if net < 0 {
			role = "net sell"
			net = -net
		}
		tag := ""
		if b.IsForeign {
			tag = " [foreign]"
		}
		s.addf("%s%s %s %.1fB (avg buy %.0f)", b.Code, tag, role, net/1e9, b.AvgBuyPrice())
	}
	if len(bundle.Concentration.Dominant) > 0 {
		s.addf("Dominant brokers over the window: %d (%s)",
			len(bundle.Concentration.Dominant), bundle.Concentration.Signal)
	}
	return s.build()
}
