package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nugraha/bandarscope/internal/modules/screener"
)

// SyncJob refreshes the local store from the upstream feed for every
// watchlist symbol after the trading session closes.
type SyncJob struct {
	service   *screener.Service
	watchlist []string
	log       zerolog.Logger
}

// NewSyncJob creates the daily watchlist sync job.
func NewSyncJob(service *screener.Service, watchlist []string, log zerolog.Logger) *SyncJob {
	return &SyncJob{
		service:   service,
		watchlist: watchlist,
		log:       log.With().Str("job", "watchlist-sync").Logger(),
	}
}

// Name implements Job.
func (j *SyncJob) Name() string { return "watchlist-sync" }

// Run implements Job. A single symbol failure is logged and skipped so
// one bad upstream response does not starve the rest of the watchlist.
func (j *SyncJob) Run() error {
	runID := uuid.New().String()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	synced := 0
	for _, symbol := range j.watchlist {
		if err := j.service.Sync(ctx, symbol); err != nil {
			j.log.Warn().Err(err).Str("run_id", runID).Str("symbol", symbol).Msg("symbol sync failed")
			continue
		}
		synced++
	}

	j.log.Info().
		Str("run_id", runID).
		Int("synced", synced).
		Int("total", len(j.watchlist)).
		Msg("watchlist sync finished")
	return nil
}
