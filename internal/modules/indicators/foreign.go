package indicators

import (
	"github.com/nugraha/bandarscope/internal/domain"
)

// foreignFlow partitions brokers by foreign membership and sums both
// sides. Net is buy − sell.
func (d *Deriver) foreignFlow(activities []domain.BrokerActivity) domain.ForeignFlow {
	var flow domain.ForeignFlow
	for _, a := range activities {
		if !a.IsForeign {
			continue
		}
		flow.BuyVolume += a.BuyVolume
		flow.BuyValue += a.BuyValue
		flow.SellVolume += a.SellVolume
		flow.SellValue += a.SellValue
	}
	flow.NetVolume = flow.BuyVolume - flow.SellVolume
	flow.NetValue = flow.BuyValue - flow.SellValue
	return flow
}

// foreignStreak counts consecutive same-signed foreign net flow days,
// walking from the most recent day backward. The streak stops at the
// first sign change or zero-flow day.
//
// hist must be most-recent-first.
func (d *Deriver) foreignStreak(hist []domain.FlowPoint) domain.ForeignStreak {
	streak := domain.ForeignStreak{
		Direction: domain.StreakNone,
		Strength:  domain.StreakStrengthNone,
	}
	if len(hist) == 0 || hist[0].ForeignNetValue == 0 {
		return streak
	}

	positive := hist[0].ForeignNetValue > 0
	for _, point := range hist {
		if point.ForeignNetValue == 0 {
			break
		}
		if (point.ForeignNetValue > 0) != positive {
			break
		}
		streak.Days++
		streak.NetValue += point.ForeignNetValue
	}

	if positive {
		streak.Direction = domain.StreakBuy
	} else {
		streak.Direction = domain.StreakSell
	}

	switch {
	case streak.Days >= d.cfg.StreakStrong:
		streak.Strength = domain.StreakStrengthStrong
	case streak.Days >= d.cfg.StreakModerate:
		streak.Strength = domain.StreakStrengthModerate
	case streak.Days >= d.cfg.StreakWeak:
		streak.Strength = domain.StreakStrengthWeak
	}
	return streak
}
