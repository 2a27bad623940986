// Package screener orchestrates one scoring pass per symbol: load data,
// derive indicators, score, narrate.
package screener

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nugraha/bandarscope/internal/clients/feed"
	"github.com/nugraha/bandarscope/internal/config"
	"github.com/nugraha/bandarscope/internal/database/repositories"
	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/internal/modules/indicators"
	"github.com/nugraha/bandarscope/internal/modules/narrative"
	"github.com/nugraha/bandarscope/internal/modules/scoring"
)

// ScreenResult is the full screener payload for one symbol.
type ScreenResult struct {
	Symbol    string                 `json:"symbol"`
	Price     domain.PriceBar        `json:"price"`
	Bundle    domain.IndicatorBundle `json:"bundle"`
	Score     domain.ScoreResult     `json:"score"`
	Narrative narrative.Report       `json:"narrative"`
}

// Service wires the data layers to the scoring core. The core itself
// is pure; all I/O happens here.
type Service struct {
	cfg      *config.Config
	repo     *repositories.MarketRepository
	client   *feed.Client
	deriver  *indicators.Deriver
	engine   *scoring.Engine
	narrator *narrative.Narrator
	log      zerolog.Logger
}

// NewService creates a screener service.
func NewService(
	cfg *config.Config,
	repo *repositories.MarketRepository,
	client *feed.Client,
	deriver *indicators.Deriver,
	engine *scoring.Engine,
	narrator *narrative.Narrator,
	log zerolog.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		repo:     repo,
		client:   client,
		deriver:  deriver,
		engine:   engine,
		narrator: narrator,
		log:      log.With().Str("service", "screener").Logger(),
	}
}

// Screen runs one full scoring pass for a symbol. Missing local data
// degrades to a neutral bundle; only upstream price failure or a
// contract violation is an error.
func (s *Service) Screen(ctx context.Context, symbol string) (*ScreenResult, error) {
	bar, err := s.client.GetPriceBar(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", symbol, err)
	}

	rows, err := s.repo.GetTransactions(symbol, s.cfg.Thresholds.ConcentrationDays)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", symbol, err)
	}
	volHist, err := s.repo.GetVolumeHistory(symbol, s.cfg.Thresholds.VolumeWindow)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", symbol, err)
	}
	flowHist, err := s.repo.GetForeignFlowHistory(symbol, 30)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", symbol, err)
	}

	bundle, err := s.deriver.Derive(symbol, rows, volHist, flowHist, bar)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", symbol, err)
	}

	var market *domain.MarketContext
	if change, err := s.client.GetIndexChange(ctx); err == nil {
		market = &domain.MarketContext{IndexChangePct: change}
	} else {
		s.log.Debug().Err(err).Msg("index change unavailable, scoring without market context")
	}

	result := s.engine.Score(bar, bundle, market)
	report := s.narrator.Narrate(bar, result, bundle)

	return &ScreenResult{
		Symbol:    symbol,
		Price:     bar,
		Bundle:    bundle,
		Score:     result,
		Narrative: report,
	}, nil
}

// Sync pulls the latest upstream data for a symbol into the local
// store: broker rows plus derived daily volume and foreign-flow points.
func (s *Service) Sync(ctx context.Context, symbol string) error {
	rows, err := s.client.GetBrokerSummary(ctx, symbol, s.cfg.Thresholds.ConcentrationDays)
	if err != nil {
		return fmt.Errorf("sync %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		s.log.Warn().Str("symbol", symbol).Msg("upstream returned no broker rows")
		return nil
	}
	if err := s.repo.SaveTransactions(symbol, rows); err != nil {
		return fmt.Errorf("sync %s: %w", symbol, err)
	}

	// Fold the day's rows into the history series the deriver consumes.
	type dayAgg struct {
		date       time.Time
		volume     float64
		foreignNet float64
	}
	byDay := map[string]*dayAgg{}
	for _, row := range rows {
		key := row.Date.Format("2006-01-02")
		agg, ok := byDay[key]
		if !ok {
			agg = &dayAgg{date: row.Date}
			byDay[key] = agg
		}
		agg.volume += row.Volume
		if s.cfg.Thresholds.IsForeign(row.BrokerCode) {
			if row.Side == domain.SideBuy {
				agg.foreignNet += row.Value
			} else {
				agg.foreignNet -= row.Value
			}
		}
	}
	for _, agg := range byDay {
		if err := s.repo.UpsertDailyVolume(symbol, domain.VolumePoint{Date: agg.date, TotalVolume: agg.volume}); err != nil {
			return fmt.Errorf("sync %s: %w", symbol, err)
		}
		if err := s.repo.UpsertForeignFlow(symbol, domain.FlowPoint{Date: agg.date, ForeignNetValue: agg.foreignNet}); err != nil {
			return fmt.Errorf("sync %s: %w", symbol, err)
		}
	}

	s.log.Info().Str("symbol", symbol).Int("rows", len(rows)).Msg("symbol synced")
	return nil
}
