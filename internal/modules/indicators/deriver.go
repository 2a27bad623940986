// Package indicators derives the accumulation/distribution indicator
// bundle for one symbol/day from broker transaction aggregates,
// historical volume, and foreign-flow history.
package indicators

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/nugraha/bandarscope/internal/config"
	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/internal/modules/quant"
)

// Deriver builds IndicatorBundles. It is stateless apart from its
// configuration and safe to use concurrently across symbols.
type Deriver struct {
	cfg   config.Thresholds
	quant *quant.Calculator
	log   zerolog.Logger
}

// New creates a new indicator deriver
func New(cfg config.Thresholds, log zerolog.Logger) *Deriver {
	return &Deriver{
		cfg:   cfg,
		quant: quant.NewCalculator(),
		log:   log.With().Str("component", "indicators").Logger(),
	}
}

// Derive computes the full indicator bundle for a symbol.
//
// rows may span multiple trading days; the most recent day feeds the
// flow/imbalance indicators while the per-day grouping feeds broker
// concentration. volHist is oldest-first daily total volume (lots);
// flowHist is most-recent-first daily foreign net value.
//
// Missing data never fails: no rows for the symbol/date yields a valid
// neutral ("degraded") bundle. Malformed rows reject loudly since they
// indicate a collaborator contract violation.
func (d *Deriver) Derive(
	symbol string,
	rows []domain.BrokerTransaction,
	volHist []domain.VolumePoint,
	flowHist []domain.FlowPoint,
	bar domain.PriceBar,
) (bundle domain.IndicatorBundle, err error) {
	if err := bar.Validate(); err != nil {
		return domain.IndicatorBundle{}, fmt.Errorf("price bar for %s: %w", symbol, err)
	}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return domain.IndicatorBundle{}, fmt.Errorf("transaction row for %s: %w", symbol, err)
		}
	}

	if len(rows) == 0 {
		d.log.Warn().Str("symbol", symbol).Msg("no broker transactions, returning degraded bundle")
		return d.degradedBundle(symbol), nil
	}

	// Fail open to neutral: an unexpected failure inside derivation is
	// substituted with the degraded bundle so the screener stays
	// available under partial data loss.
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn().Str("symbol", symbol).Interface("panic", r).
				Msg("indicator derivation failed, substituting degraded bundle")
			bundle = d.degradedBundle(symbol)
			err = nil
		}
	}()

	byDay := groupByDay(rows)
	latest := latestDay(byDay)
	activities := d.aggregate(byDay[latest])

	var totalBuyVol, totalSellVol, totalBuyVal, totalSellVal float64
	for _, a := range activities {
		totalBuyVol += a.BuyVolume
		totalSellVol += a.SellVolume
		totalBuyVal += a.BuyValue
		totalSellVal += a.SellValue
	}

	volume := d.volumeAnalysis(totalBuyVol+totalSellVol, volHist)
	dryUp := d.dryUp(volHist, volume.Ratio)
	bidAsk := d.bidAsk(totalBuyVol, totalSellVol, bar.ChangePct)

	bundle = domain.IndicatorBundle{
		Symbol:        symbol,
		ForeignFlow:   d.foreignFlow(activities),
		BrokerSummary: d.topBrokers(activities),
		BandarBrokers: d.bandarBrokers(activities),
		Volume:        volume,
		DryUp:         dryUp,
		BidAsk:        bidAsk,
		ForeignStreak: d.foreignStreak(flowHist),
		Concentration: d.concentration(byDay, totalBuyVal),
		PriceAction:   d.priceAction(bar, volume.Ratio, bidAsk.Ratio),
		Quant:         d.quant.Calculate(bar, totalBuyVol+totalSellVol, totalBuyVal+totalSellVal, volume.Ratio),
	}
	return bundle, nil
}

// degradedBundle is the well-defined neutral result for missing data:
// zero counts and neutral signals everywhere. Callers must treat it as
// a valid, if uninformative, bundle.
func (d *Deriver) degradedBundle(symbol string) domain.IndicatorBundle {
	return domain.IndicatorBundle{
		Symbol:        symbol,
		Degraded:      true,
		BrokerSummary: []domain.BrokerActivity{},
		BandarBrokers: []domain.BrokerActivity{},
		Volume:        domain.VolumeAnalysis{Signal: domain.VolumeInsufficientData, Severity: domain.SeverityNone},
		DryUp:         domain.DryUpAnalysis{Phase: domain.DryUpNone},
		BidAsk:        domain.BidAskAnalysis{Signal: domain.BidAskNeutral},
		ForeignStreak: domain.ForeignStreak{Direction: domain.StreakNone, Strength: domain.StreakStrengthNone},
		Concentration: domain.BrokerConcentration{Signal: domain.ConcentrationNone, Dominant: []domain.DominantBroker{}},
		Quant: domain.Quantitative{
			MFI:        50,
			MFISignal:  domain.QuantNeutral,
			OBVSignal:  domain.QuantNeutral,
			VWAPSignal: domain.QuantNeutral,
			CMFSignal:  domain.QuantNeutral,
		},
	}
}

// aggregate folds raw buy/sell rows into per-broker activity for one day.
func (d *Deriver) aggregate(rows []domain.BrokerTransaction) []domain.BrokerActivity {
	byCode := make(map[string]*domain.BrokerActivity)
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		act, ok := byCode[row.BrokerCode]
		if !ok {
			act = &domain.BrokerActivity{
				Code:      row.BrokerCode,
				Name:      row.BrokerName,
				IsForeign: d.cfg.IsForeign(row.BrokerCode),
			}
			byCode[row.BrokerCode] = act
			order = append(order, row.BrokerCode)
		}
		switch row.Side {
		case domain.SideBuy:
			act.BuyVolume += row.Volume
			act.BuyValue += row.Value
		case domain.SideSell:
			act.SellVolume += row.Volume
			act.SellValue += row.Value
		}
	}

	out := make([]domain.BrokerActivity, 0, len(order))
	for _, code := range order {
		act := byCode[code]
		act.NetVolume = act.BuyVolume - act.SellVolume
		act.NetValue = act.BuyValue - act.SellValue
		out = append(out, *act)
	}
	return out
}

// groupByDay splits rows into per-trading-day groups keyed by calendar
// date in the row's own location, matching how the store and the sync
// path key their series.
func groupByDay(rows []domain.BrokerTransaction) map[string][]domain.BrokerTransaction {
	byDay := make(map[string][]domain.BrokerTransaction)
	for _, row := range rows {
		day := row.Date.Format("2006-01-02")
		byDay[day] = append(byDay[day], row)
	}
	return byDay
}

func latestDay(byDay map[string][]domain.BrokerTransaction) string {
	latest := ""
	for day := range byDay {
		if day > latest {
			latest = day
		}
	}
	return latest
}

// sortedDaysDesc returns the distinct trading days, most recent first.
func sortedDaysDesc(byDay map[string][]domain.BrokerTransaction) []string {
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days
}
