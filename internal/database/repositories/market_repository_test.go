package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nugraha/bandarscope/internal/database"
	"github.com/nugraha/bandarscope/internal/domain"
)

var memCounter int

func testRepo(t *testing.T) *MarketRepository {
	t.Helper()
	memCounter++
	db, err := database.New(database.Config{
		Path: fmt.Sprintf("file:market_test_%d?mode=memory&cache=shared", memCounter),
		Name: "market-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewMarketRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func txDay(offset int) time.Time {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestSaveAndGetTransactions(t *testing.T) {
	repo := testRepo(t)

	rows := []domain.BrokerTransaction{
		{Date: txDay(0), BrokerCode: "YU", BrokerName: "CGS", Side: domain.SideBuy, Volume: 1000, Value: 1e9},
		{Date: txDay(0), BrokerCode: "YU", Side: domain.SideSell, Volume: 200, Value: 2e8},
		{Date: txDay(1), BrokerCode: "PD", Side: domain.SideBuy, Volume: 500, Value: 5e8},
	}
	require.NoError(t, repo.SaveTransactions("TLKM", rows))

	got, err := repo.GetTransactions("TLKM", 30)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "YU", got[0].BrokerCode, "oldest date first")
	assert.Equal(t, "PD", got[2].BrokerCode)
	assert.Equal(t, domain.SideBuy, got[2].Side)
	assert.Equal(t, 500.0, got[2].Volume)
}

func TestSaveTransactions_UpsertReplaces(t *testing.T) {
	repo := testRepo(t)

	row := domain.BrokerTransaction{Date: txDay(0), BrokerCode: "YU", Side: domain.SideBuy, Volume: 1000, Value: 1e9}
	require.NoError(t, repo.SaveTransactions("TLKM", []domain.BrokerTransaction{row}))

	row.Volume = 1500
	row.Value = 1.5e9
	require.NoError(t, repo.SaveTransactions("TLKM", []domain.BrokerTransaction{row}))

	got, err := repo.GetTransactions("TLKM", 30)
	require.NoError(t, err)
	require.Len(t, got, 1, "re-syncing the same day must not duplicate rows")
	assert.Equal(t, 1500.0, got[0].Volume)
}

func TestSaveTransactions_RejectsMalformedRows(t *testing.T) {
	repo := testRepo(t)

	rows := []domain.BrokerTransaction{
		{Date: txDay(0), BrokerCode: "YU", Side: domain.SideBuy, Volume: -5, Value: 1e9},
	}

	err := repo.SaveTransactions("TLKM", rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := repo.GetTransactions("TLKM", 30)
	require.NoError(t, err)
	assert.Empty(t, got, "a rejected batch must not partially persist")
}

func TestGetTransactions_TrailingDayWindow(t *testing.T) {
	repo := testRepo(t)

	for i := 0; i < 10; i++ {
		row := domain.BrokerTransaction{Date: txDay(i), BrokerCode: "YU", Side: domain.SideBuy, Volume: 100, Value: 1e8}
		require.NoError(t, repo.SaveTransactions("TLKM", []domain.BrokerTransaction{row}))
	}

	got, err := repo.GetTransactions("TLKM", 3)
	require.NoError(t, err)
	require.Len(t, got, 3, "window limits distinct days, not rows")
	assert.Equal(t, txDay(7), got[0].Date)
	assert.Equal(t, txDay(9), got[2].Date)
}

func TestVolumeHistory_OldestFirst(t *testing.T) {
	repo := testRepo(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.UpsertDailyVolume("TLKM", domain.VolumePoint{
			Date:        txDay(i),
			TotalVolume: float64(1000 + i),
		}))
	}

	got, err := repo.GetVolumeHistory("TLKM", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1002.0, got[0].TotalVolume, "trailing window, oldest first")
	assert.Equal(t, 1004.0, got[2].TotalVolume)
}

func TestForeignFlowHistory_MostRecentFirst(t *testing.T) {
	repo := testRepo(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.UpsertForeignFlow("TLKM", domain.FlowPoint{
			Date:            txDay(i),
			ForeignNetValue: float64(i) * 1e9,
		}))
	}

	got, err := repo.GetForeignFlowHistory("TLKM", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 4e9, got[0].ForeignNetValue, "streak walking needs newest first")
	assert.Equal(t, 2e9, got[2].ForeignNetValue)
}

func TestRepositories_SymbolIsolation(t *testing.T) {
	repo := testRepo(t)

	require.NoError(t, repo.UpsertDailyVolume("TLKM", domain.VolumePoint{Date: txDay(0), TotalVolume: 100}))
	require.NoError(t, repo.UpsertDailyVolume("BBRI", domain.VolumePoint{Date: txDay(0), TotalVolume: 200}))

	got, err := repo.GetVolumeHistory("TLKM", 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].TotalVolume)
}
