package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/rotation-trader/internal/domain"
)

const dateLayout = "2006-01-02"

// Client fetches daily candles from the market-data service. Requests are
// rate limited so a full-universe sync does not hammer the upstream API.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a new market data client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1), // 5 requests/second
		log:     log.With().Str("client", "marketdata").Logger(),
	}
}

// candleResponse is one bar in the service's JSON format
type candleResponse struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// GetDailyCandles fetches daily candles for a symbol in [start, end]
func (c *Client) GetDailyCandles(ctx context.Context, symbol string, start, end time.Time) ([]domain.Candle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("start", start.Format(dateLayout))
	query.Set("end", end.Format(dateLayout))

	reqURL := fmt.Sprintf("%s/api/candles/daily?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data service returned %d for %s", resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var raw []candleResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse candles for %s: %w", symbol, err)
	}

	candles := make([]domain.Candle, 0, len(raw))
	for _, bar := range raw {
		date, err := time.Parse(dateLayout, bar.Date)
		if err != nil {
			c.log.Warn().Str("symbol", symbol).Str("date", bar.Date).Msg("Skipping candle with invalid date")
			continue
		}
		candles = append(candles, domain.Candle{
			Symbol: symbol,
			Date:   date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	return candles, nil
}
