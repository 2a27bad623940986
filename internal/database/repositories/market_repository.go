// Package repositories provides data access for stored market data.
package repositories

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nugraha/bandarscope/internal/database"
	"github.com/nugraha/bandarscope/internal/domain"
)

// MarketRepository stores and loads raw broker transaction aggregates
// and the daily volume / foreign-flow history series. Computed scores
// are never persisted.
type MarketRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMarketRepository creates a market repository and ensures the schema.
func NewMarketRepository(db *database.DB, log zerolog.Logger) (*MarketRepository, error) {
	repo := &MarketRepository{
		db:  db,
		log: log.With().Str("repository", "market").Logger(),
	}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize market schema: %w", err)
	}
	return repo, nil
}

func (r *MarketRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS broker_transactions (
		symbol      TEXT NOT NULL,
		date        TEXT NOT NULL,
		broker_code TEXT NOT NULL,
		broker_name TEXT NOT NULL DEFAULT '',
		side        TEXT NOT NULL CHECK (side IN ('BUY','SELL')),
		volume      REAL NOT NULL CHECK (volume >= 0),
		value       REAL NOT NULL CHECK (value >= 0),
		PRIMARY KEY (symbol, date, broker_code, side)
	);
	CREATE INDEX IF NOT EXISTS idx_broker_tx_symbol_date ON broker_transactions(symbol, date);

	CREATE TABLE IF NOT EXISTS daily_volume (
		symbol       TEXT NOT NULL,
		date         TEXT NOT NULL,
		total_volume REAL NOT NULL CHECK (total_volume >= 0),
		PRIMARY KEY (symbol, date)
	);

	CREATE TABLE IF NOT EXISTS foreign_flow (
		symbol    TEXT NOT NULL,
		date      TEXT NOT NULL,
		net_value REAL NOT NULL,
		PRIMARY KEY (symbol, date)
	);`
	if _, err := r.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveTransactions upserts one day's broker rows for a symbol.
func (r *MarketRepository) SaveTransactions(symbol string, rows []domain.BrokerTransaction) error {
	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO broker_transactions (symbol, date, broker_code, broker_name, side, volume, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date, broker_code, side)
		DO UPDATE SET broker_name = excluded.broker_name, volume = excluded.volume, value = excluded.value`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return fmt.Errorf("refusing to store malformed row: %w", err)
		}
		if _, err := stmt.Exec(symbol, row.Date.Format("2006-01-02"), row.BrokerCode,
			row.BrokerName, string(row.Side), row.Volume, row.Value); err != nil {
			return fmt.Errorf("failed to insert row for %s/%s: %w", symbol, row.BrokerCode, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

// GetTransactions loads broker rows for a symbol over the trailing
// number of days, newest date last.
func (r *MarketRepository) GetTransactions(symbol string, days int) ([]domain.BrokerTransaction, error) {
	rows, err := r.db.Query(`
		SELECT date, broker_code, broker_name, side, volume, value
		FROM broker_transactions
		WHERE symbol = ?
		  AND date IN (
			SELECT DISTINCT date FROM broker_transactions
			WHERE symbol = ? ORDER BY date DESC LIMIT ?)
		ORDER BY date ASC`, symbol, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []domain.BrokerTransaction
	for rows.Next() {
		var tr domain.BrokerTransaction
		var dateStr, side string
		if err := rows.Scan(&dateStr, &tr.BrokerCode, &tr.BrokerName, &side, &tr.Volume, &tr.Value); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		tr.Side = domain.TradeSide(side)
		tr.Date, _ = time.Parse("2006-01-02", dateStr)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// UpsertDailyVolume records one day's total volume.
func (r *MarketRepository) UpsertDailyVolume(symbol string, point domain.VolumePoint) error {
	_, err := r.db.Exec(`
		INSERT INTO daily_volume (symbol, date, total_volume) VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET total_volume = excluded.total_volume`,
		symbol, point.Date.Format("2006-01-02"), point.TotalVolume)
	if err != nil {
		return fmt.Errorf("failed to upsert daily volume for %s: %w", symbol, err)
	}
	return nil
}

// GetVolumeHistory returns up to `days` of daily volume, oldest first.
func (r *MarketRepository) GetVolumeHistory(symbol string, days int) ([]domain.VolumePoint, error) {
	rows, err := r.db.Query(`
		SELECT date, total_volume FROM (
			SELECT date, total_volume FROM daily_volume
			WHERE symbol = ? ORDER BY date DESC LIMIT ?
		) ORDER BY date ASC`, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query volume history for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []domain.VolumePoint
	for rows.Next() {
		var p domain.VolumePoint
		var dateStr string
		if err := rows.Scan(&dateStr, &p.TotalVolume); err != nil {
			return nil, fmt.Errorf("failed to scan volume row: %w", err)
		}
		p.Date, _ = time.Parse("2006-01-02", dateStr)
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertForeignFlow records one day's foreign net value.
func (r *MarketRepository) UpsertForeignFlow(symbol string, point domain.FlowPoint) error {
	_, err := r.db.Exec(`
		INSERT INTO foreign_flow (symbol, date, net_value) VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET net_value = excluded.net_value`,
		symbol, point.Date.Format("2006-01-02"), point.ForeignNetValue)
	if err != nil {
		return fmt.Errorf("failed to upsert foreign flow for %s: %w", symbol, err)
	}
	return nil
}

// GetForeignFlowHistory returns up to `days` of foreign net value,
// most recent first (the order streak detection walks).
func (r *MarketRepository) GetForeignFlowHistory(symbol string, days int) ([]domain.FlowPoint, error) {
	rows, err := r.db.Query(`
		SELECT date, net_value FROM foreign_flow
		WHERE symbol = ? ORDER BY date DESC LIMIT ?`, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign flow for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []domain.FlowPoint
	for rows.Next() {
		var p domain.FlowPoint
		var dateStr string
		if err := rows.Scan(&dateStr, &p.ForeignNetValue); err != nil {
			return nil, fmt.Errorf("failed to scan flow row: %w", err)
		}
		p.Date, _ = time.Parse("2006-01-02", dateStr)
		out = append(out, p)
	}
	return out, rows.Err()
}
