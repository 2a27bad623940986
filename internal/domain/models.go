// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"time"
)

// LotSize is the number of shares per lot. Exchange broker feeds report
// volume in lots, so every value/volume → price conversion divides by
// volume * LotSize.
const LotSize = 100.0

// TradeSide represents the side of a broker transaction
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// BrokerTransaction is one raw buy or sell aggregate row for a broker,
// as delivered by the upstream feed or the local store. Volume is in lots.
type BrokerTransaction struct {
	Date       time.Time `json:"date"`
	BrokerCode string    `json:"broker_code"`
	BrokerName string    `json:"broker_name"`
	Side       TradeSide `json:"side"`
	Volume     float64   `json:"volume"` // lots
	Value      float64   `json:"value"`  // currency
}

// Validate rejects rows that violate the collaborator contract.
// Missing data is a sparsity condition handled elsewhere; malformed
// rows fail loudly here.
func (t BrokerTransaction) Validate() error {
	if t.BrokerCode == "" {
		return fmt.Errorf("%w: empty broker code", ErrInvalidInput)
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return fmt.Errorf("%w: unknown side %q for broker %s", ErrInvalidInput, t.Side, t.BrokerCode)
	}
	if t.Volume < 0 {
		return fmt.Errorf("%w: negative volume %.2f for broker %s", ErrInvalidInput, t.Volume, t.BrokerCode)
	}
	if t.Value < 0 {
		return fmt.Errorf("%w: negative value %.2f for broker %s", ErrInvalidInput, t.Value, t.BrokerCode)
	}
	return nil
}

// BrokerActivity is the per-broker buy/sell aggregate for one symbol and
// one aggregation window. Immutable once computed; never persisted.
type BrokerActivity struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	BuyVolume  float64 `json:"buy_volume"` // lots
	BuyValue   float64 `json:"buy_value"`
	SellVolume float64 `json:"sell_volume"` // lots
	SellValue  float64 `json:"sell_value"`
	NetVolume  float64 `json:"net_volume"`
	NetValue   float64 `json:"net_value"`
	IsForeign  bool    `json:"is_foreign"`
}

// AvgBuyPrice returns the average buy price per share, applying the lot
// size divisor. Zero volume yields 0, never NaN.
func (b BrokerActivity) AvgBuyPrice() float64 {
	if b.BuyVolume <= 0 {
		return 0
	}
	return b.BuyValue / (b.BuyVolume * LotSize)
}

// AvgSellPrice returns the average sell price per share.
func (b BrokerActivity) AvgSellPrice() float64 {
	if b.SellVolume <= 0 {
		return 0
	}
	return b.SellValue / (b.SellVolume * LotSize)
}

// PriceBar is one daily OHLCV bar for a symbol. Read-only to this core.
type PriceBar struct {
	Date      time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	ChangePct float64   `json:"change_pct"`
}

// Validate rejects structurally impossible bars.
func (p PriceBar) Validate() error {
	if p.Volume < 0 {
		return fmt.Errorf("%w: negative bar volume %.2f", ErrInvalidInput, p.Volume)
	}
	if p.High < p.Low {
		return fmt.Errorf("%w: bar high %.2f below low %.2f", ErrInvalidInput, p.High, p.Low)
	}
	return nil
}

// VolumePoint is one day of total traded volume.
type VolumePoint struct {
	Date        time.Time `json:"date"`
	TotalVolume float64   `json:"total_volume"`
}

// FlowPoint is one day of foreign net value (buy − sell).
type FlowPoint struct {
	Date            time.Time `json:"date"`
	ForeignNetValue float64   `json:"foreign_net_value"`
}

// MarketContext carries optional broad-market state used for
// relative-strength scoring.
type MarketContext struct {
	IndexChangePct float64 `json:"index_change_pct"`
}
