package indicators

import (
	"math"
	"sort"

	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/pkg/formulas"
)

// topBrokers returns the top-N brokers by absolute net value.
func (d *Deriver) topBrokers(activities []domain.BrokerActivity) []domain.BrokerActivity {
	sorted := make([]domain.BrokerActivity, len(activities))
	copy(sorted, activities)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].NetValue) > math.Abs(sorted[j].NetValue)
	})
	if len(sorted) > d.cfg.TopBrokerCount {
		sorted = sorted[:d.cfg.TopBrokerCount]
	}
	return sorted
}

// bandarBrokers selects brokers on the watch-list or whose absolute net
// value crosses the large-trade threshold.
func (d *Deriver) bandarBrokers(activities []domain.BrokerActivity) []domain.BrokerActivity {
	out := make([]domain.BrokerActivity, 0)
	for _, a := range activities {
		if d.cfg.IsWatched(a.Code) || math.Abs(a.NetValue) >= d.cfg.BandarLargeTradeValue {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i].NetValue) > math.Abs(out[j].NetValue)
	})
	return out
}

// concentration scans the last N trading days: each day the top 3
// brokers by positive net value are ranked, and brokers appearing in
// enough daily top-3 lists are dominant. One dominant broker is
// single-broker concentration; several are coordinated buying.
//
// totalBuyValue is today's cohort total; a zero total defines the
// top-3 share as 0.
func (d *Deriver) concentration(byDay map[string][]domain.BrokerTransaction, totalBuyValue float64) domain.BrokerConcentration {
	days := sortedDaysDesc(byDay)
	if len(days) > d.cfg.ConcentrationDays {
		days = days[:d.cfg.ConcentrationDays]
	}

	appearances := make(map[string]int)
	netByCode := make(map[string]float64)
	var todayTop3Buy float64

	for i, day := range days {
		acts := d.aggregate(byDay[day])
		sort.Slice(acts, func(a, b int) bool { return acts[a].NetValue > acts[b].NetValue })

		count := 0
		for _, act := range acts {
			if act.NetValue <= 0 || count == 3 {
				break
			}
			appearances[act.Code]++
			netByCode[act.Code] += act.NetValue
			if i == 0 {
				todayTop3Buy += act.BuyValue
			}
			count++
		}
	}

	dominant := make([]domain.DominantBroker, 0)
	for code, n := range appearances {
		if n >= d.cfg.ConcentrationMinDays {
			dominant = append(dominant, domain.DominantBroker{
				Code:        code,
				Appearances: n,
				NetValue:    netByCode[code],
			})
		}
	}
	sort.Slice(dominant, func(i, j int) bool { return dominant[i].NetValue > dominant[j].NetValue })

	signal := domain.ConcentrationNone
	switch {
	case len(dominant) == 1:
		signal = domain.ConcentrationSingleDominant
	case len(dominant) > 1:
		signal = domain.ConcentrationCoordinated
	}

	return domain.BrokerConcentration{
		Signal:   signal,
		Dominant: dominant,
		TopShare: formulas.SafeRatio(todayTop3Buy, totalBuyValue),
	}
}
