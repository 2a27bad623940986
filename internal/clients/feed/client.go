// Package feed provides the upstream price/broker data client with a
// local cache. The scoring core never talks to the network; everything
// it consumes arrives through this client or the local store.
package feed

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nugraha/bandarscope/internal/domain"
)

// Client fetches daily price bars and broker summaries from the
// upstream feed, with a msgpack-encoded on-disk cache so repeated
// screener calls within one session do not refetch.
type Client struct {
	baseURL  string
	client   *http.Client
	log      zerolog.Logger
	cacheDir string
	cacheTTL time.Duration
}

// NewClient creates a feed client. cacheDir may be empty to disable
// caching.
func NewClient(baseURL, cacheDir string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      log.With().Str("client", "feed").Logger(),
		cacheDir: cacheDir,
		cacheTTL: 15 * time.Minute,
	}
}

// priceResponse mirrors the upstream price endpoint payload.
type priceResponse struct {
	Date      string  `json:"date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	ChangePct float64 `json:"change_pct"`
}

// brokerRowResponse mirrors one upstream broker summary row.
type brokerRowResponse struct {
	Date       string  `json:"date"`
	BrokerCode string  `json:"broker_code"`
	BrokerName string  `json:"broker_name"`
	Side       string  `json:"side"`
	Volume     float64 `json:"volume"`
	Value      float64 `json:"value"`
}

// GetPriceBar fetches the latest daily bar for a symbol.
func (c *Client) GetPriceBar(ctx context.Context, symbol string) (domain.PriceBar, error) {
	var resp priceResponse
	if err := c.getJSON(ctx, "/v1/price", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return domain.PriceBar{}, fmt.Errorf("failed to fetch price for %s: %w", symbol, err)
	}

	bar := domain.PriceBar{
		Open:      resp.Open,
		High:      resp.High,
		Low:       resp.Low,
		Close:     resp.Close,
		Volume:    resp.Volume,
		ChangePct: resp.ChangePct,
	}
	bar.Date, _ = time.Parse("2006-01-02", resp.Date)
	if err := bar.Validate(); err != nil {
		return domain.PriceBar{}, fmt.Errorf("upstream bar for %s: %w", symbol, err)
	}
	return bar, nil
}

// GetBrokerSummary fetches per-broker buy/sell rows for a symbol over
// the trailing number of days.
func (c *Client) GetBrokerSummary(ctx context.Context, symbol string, days int) ([]domain.BrokerTransaction, error) {
	var resp []brokerRowResponse
	params := url.Values{"symbol": {symbol}, "days": {fmt.Sprintf("%d", days)}}
	if err := c.getJSON(ctx, "/v1/broker-summary", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch broker summary for %s: %w", symbol, err)
	}

	rows := make([]domain.BrokerTransaction, 0, len(resp))
	for _, raw := range resp {
		row := domain.BrokerTransaction{
			BrokerCode: raw.BrokerCode,
			BrokerName: raw.BrokerName,
			Side:       domain.TradeSide(raw.Side),
			Volume:     raw.Volume,
			Value:      raw.Value,
		}
		row.Date, _ = time.Parse("2006-01-02", raw.Date)
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("upstream broker row for %s: %w", symbol, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetIndexChange fetches the composite index's daily change percent.
func (c *Client) GetIndexChange(ctx context.Context) (float64, error) {
	var resp struct {
		ChangePct float64 `json:"change_pct"`
	}
	if err := c.getJSON(ctx, "/v1/index", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch index change: %w", err)
	}
	return resp.ChangePct, nil
}

// cacheEntry wraps a cached payload with its fetch time.
type cacheEntry struct {
	FetchedAt time.Time `msgpack:"fetched_at"`
	Body      []byte    `msgpack:"body"`
}

// getJSON performs a cached GET, decoding the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	if body, ok := c.readCache(fullURL); ok {
		return json.Unmarshal(body, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.writeCache(fullURL, body)
	return json.Unmarshal(body, out)
}

func (c *Client) cachePath(fullURL string) string {
	sum := sha1.Sum([]byte(fullURL))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:])+".msgpack")
}

func (c *Client) readCache(fullURL string) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.cachePath(fullURL))
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Since(entry.FetchedAt) > c.cacheTTL {
		return nil, false
	}
	c.log.Debug().Str("url", fullURL).Msg("feed cache hit")
	return entry.Body, true
}

func (c *Client) writeCache(fullURL string, body []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return
	}
	data, err := msgpack.Marshal(cacheEntry{FetchedAt: time.Now(), Body: body})
	if err != nil {
		return
	}
	if err := os.WriteFile(c.cachePath(fullURL), data, 0644); err != nil {
		c.log.Debug().Err(err).Msg("failed to write feed cache")
	}
}
