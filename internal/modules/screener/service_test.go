package screener

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nugraha/bandarscope/internal/clients/feed"
	"github.com/nugraha/bandarscope/internal/config"
	"github.com/nugraha/bandarscope/internal/database"
	"github.com/nugraha/bandarscope/internal/database/repositories"
	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/internal/modules/indicators"
	"github.com/nugraha/bandarscope/internal/modules/narrative"
	"github.com/nugraha/bandarscope/internal/modules/scoring"
)

var serviceMemCounter int

// upstream fakes the feed endpoints the service consumes.
func upstream(t *testing.T, brokerRows string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/price":
			w.Write([]byte(`{"date":"2026-08-27","open":1000,"high":1060,"low":990,"close":1050,"volume":25000,"change_pct":5.0}`))
		case "/v1/broker-summary":
			w.Write([]byte(brokerRows))
		case "/v1/index":
			w.Write([]byte(`{"change_pct":-0.5}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testService(t *testing.T, baseURL string) *Service {
	t.Helper()
	serviceMemCounter++
	db, err := database.New(database.Config{
		Path: fmt.Sprintf("file:screener_test_%d?mode=memory&cache=shared", serviceMemCounter),
		Name: "screener-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := repositories.NewMarketRepository(db, zerolog.Nop())
	require.NoError(t, err)

	cfg := &config.Config{Thresholds: config.DefaultThresholds()}
	client := feed.NewClient(baseURL, "", zerolog.Nop())
	deriver := indicators.New(cfg.Thresholds, zerolog.Nop())
	engine := scoring.NewEngine(scoring.NewConservativePolicy(), zerolog.Nop())

	return NewService(cfg, repo, client, deriver, engine, narrative.NewNarrator(), zerolog.Nop())
}

func TestScreen_WithoutLocalDataIsNeutral(t *testing.T) {
	srv := upstream(t, `[]`)
	defer srv.Close()
	s := testService(t, srv.URL)

	result, err := s.Screen(context.Background(), "TLKM")
	require.NoError(t, err)

	assert.True(t, result.Bundle.Degraded, "no stored rows degrades the bundle")
	assert.Equal(t, 50, result.Score.Score)
	assert.Equal(t, domain.SignalHold, result.Score.Signal)
	assert.Contains(t, result.Narrative.Summary, "TLKM")
}

func TestSyncThenScreen(t *testing.T) {
	srv := upstream(t, `[
		{"date":"2026-08-27","broker_code":"YU","broker_name":"CGS","side":"BUY","volume":1000,"value":1000000000},
		{"date":"2026-08-27","broker_code":"PD","side":"SELL","volume":400,"value":400000000},
		{"date":"2026-08-26","broker_code":"YU","side":"BUY","volume":800,"value":800000000}
	]`)
	defer srv.Close()
	s := testService(t, srv.URL)

	require.NoError(t, s.Sync(context.Background(), "TLKM"))

	result, err := s.Screen(context.Background(), "TLKM")
	require.NoError(t, err)

	assert.False(t, result.Bundle.Degraded)
	assert.Equal(t, "TLKM", result.Symbol)
	assert.Equal(t, 1050.0, result.Price.Close)

	// Latest-day aggregates: YU net buy 1B (foreign), PD net sell 0.4B.
	assert.Equal(t, 1e9, result.Bundle.ForeignFlow.NetValue)
	require.Len(t, result.Bundle.BrokerSummary, 2)

	// Sync derived the flow history the streak detector walks.
	assert.Equal(t, domain.StreakBuy, result.Bundle.ForeignStreak.Direction)
	assert.Equal(t, 2, result.Bundle.ForeignStreak.Days)

	assert.GreaterOrEqual(t, result.Score.Score, 0)
	assert.LessOrEqual(t, result.Score.Score, 100)
	assert.Len(t, result.Narrative.Sections, 5)
}

func TestSync_PersistsHistorySeries(t *testing.T) {
	srv := upstream(t, `[
		{"date":"2026-08-27","broker_code":"YU","side":"BUY","volume":1000,"value":1000000000},
		{"date":"2026-08-27","broker_code":"PD","side":"SELL","volume":400,"value":400000000}
	]`)
	defer srv.Close()
	s := testService(t, srv.URL)

	require.NoError(t, s.Sync(context.Background(), "TLKM"))

	volHist, err := s.repo.GetVolumeHistory("TLKM", 30)
	require.NoError(t, err)
	require.Len(t, volHist, 1)
	assert.Equal(t, 1400.0, volHist[0].TotalVolume, "both sides count toward daily volume")

	flowHist, err := s.repo.GetForeignFlowHistory("TLKM", 30)
	require.NoError(t, err)
	require.Len(t, flowHist, 1)
	assert.Equal(t, 1e9, flowHist[0].ForeignNetValue, "PD is domestic and must not count")
}

func TestScreen_UpstreamPriceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	s := testService(t, srv.URL)

	_, err := s.Screen(context.Background(), "TLKM")
	assert.Error(t, err, "a symbol cannot be screened without a price")
}
