package coingro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AgbodesiImoagene/coingro-controller/core/metrics"
)

// Client talks to the REST API of individual coingro bot instances. All
// methods return the raw JSON payload so API handlers can proxy responses
// unchanged; typed helpers exist for the fields the controller consumes.
type Client struct {
	http           *http.Client
	username       string
	password       string
	retryAttempts  int
	retryBaseDelay time.Duration
}

// NewClient creates a bot API client from the bot settings.
func NewClient(cfg *Config) *Client {
	return &Client{
		http:           &http.Client{Timeout: 30 * time.Second},
		username:       cfg.Username,
		password:       cfg.Password,
		retryAttempts:  3,
		retryBaseDelay: time.Second,
	}
}

func (c *Client) call(ctx context.Context, method, serverURL, apiPath string, params url.Values, body any) (json.RawMessage, error) {
	endpoint := strings.TrimSuffix(serverURL, "/") + "/" + strings.TrimPrefix(apiPath, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryBaseDelay * time.Duration(attempt)):
			}
		}

		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		if c.username != "" {
			req.SetBasicAuth(c.username, c.password)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			metrics.BotAPIRequests.WithLabelValues(method, "error").Inc()
			continue
		}

		var raw json.RawMessage
		decodeErr := json.NewDecoder(resp.Body).Decode(&raw)
		resp.Body.Close()
		metrics.BotAPIRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("bot API returned status %d", resp.StatusCode)
			continue
		}
		if decodeErr != nil {
			lastErr = fmt.Errorf("failed to decode bot response: %w", decodeErr)
			continue
		}
		return raw, nil
	}

	return nil, NewTemporaryError(fmt.Errorf("bot API call %s %s failed after %d attempts: %w",
		method, apiPath, c.retryAttempts, lastErr))
}

// Get performs a GET request against a bot API path.
func (c *Client) Get(ctx context.Context, serverURL, apiPath string, params url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, serverURL, apiPath, params, nil)
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, serverURL, apiPath string, body any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, serverURL, apiPath, nil, body)
}

// Delete performs a DELETE request against a bot API path.
func (c *Client) Delete(ctx context.Context, serverURL, apiPath string, params url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodDelete, serverURL, apiPath, params, nil)
}

// Ping checks that a bot's API is reachable.
func (c *Client) Ping(ctx context.Context, serverURL string) error {
	_, err := c.Get(ctx, serverURL, "ping", nil)
	return err
}

// ProfitStats is the subset of a bot's profit report the controller persists
// for strategy ranking.
type ProfitStats struct {
	ProfitAllRatioMean   float64 `json:"profit_all_ratio_mean"`
	ProfitAllRatioSum    float64 `json:"profit_all_ratio_sum"`
	ProfitAllRatio       float64 `json:"profit_all_ratio"`
	FirstTradeTimestamp  int64   `json:"first_trade_timestamp"`
	LatestTradeTimestamp int64   `json:"latest_trade_timestamp"`
	AvgDuration          string  `json:"avg_duration"`
	WinningTrades        int     `json:"winning_trades"`
	LosingTrades         int     `json:"losing_trades"`
}

// Profit fetches and decodes a bot's profit summary.
func (c *Client) Profit(ctx context.Context, serverURL string) (*ProfitStats, error) {
	raw, err := c.Get(ctx, serverURL, "profit", nil)
	if err != nil {
		return nil, err
	}
	var stats ProfitStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode profit stats: %w", err)
	}
	return &stats, nil
}

// TimeunitStats is one row of a bot's per-timeunit profit report.
type TimeunitStats struct {
	RelProfit  float64 `json:"rel_profit"`
	TradeCount int     `json:"trade_count"`
}

type timeunitProfitResponse struct {
	Data []TimeunitStats `json:"data"`
}

// TimeunitProfit fetches the most recent profit entry for the given time
// unit (days, weeks or months).
func (c *Client) TimeunitProfit(ctx context.Context, serverURL, timeunit string) (*TimeunitStats, error) {
	switch timeunit {
	case "weeks", "months":
	default:
		timeunit = "days"
	}
	params := url.Values{}
	params.Set("timeunit", timeunit)
	params.Set("timescale", "1")

	raw, err := c.Get(ctx, serverURL, "timeunit_profit", params)
	if err != nil {
		return nil, err
	}
	var resp timeunitProfitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode timeunit profit: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("timeunit profit for %q returned no data", timeunit)
	}
	return &resp.Data[0], nil
}
