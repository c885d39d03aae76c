// Package nbp fetches the National Bank of Poland's table A mid rates.
package nbp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://api.nbp.pl"
	tablePath      = "/api/exchangerates/tables/A?format=json"
)

var ErrEmptyTable = errors.New("nbp: response contains no rate table")

type rateTable struct {
	Table         string `json:"table"`
	No            string `json:"no"`
	EffectiveDate string `json:"effectiveDate"`
	Rates         []struct {
		Currency string          `json:"currency"`
		Code     string          `json:"code"`
		Mid      decimal.Decimal `json:"mid"`
	} `json:"rates"`
}

// Client is a ports.RateProvider backed by the NBP public API. Rates are
// quoted in PLN, so PLN itself is always 1.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries uint64
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout bounds a whole FetchRates call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithRetry sets how many times a transient failure is retried and the
// initial exponential backoff.
func WithRetry(max uint64, base time.Duration) Option {
	return func(cl *Client) {
		cl.maxRetries = max
		cl.backoff = base
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    10 * time.Second,
		maxRetries: 3,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var tables []rateTable
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var err error
		tables, err = c.fetchTable(ctx)
		if err != nil {
			slog.DebugContext(ctx, "NBP fetch attempt failed", "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch nbp rates: %w", err)
	}

	if len(tables) == 0 || len(tables[0].Rates) == 0 {
		return nil, ErrEmptyTable
	}

	out := make(map[string]decimal.Decimal, len(tables[0].Rates)+1)
	for _, r := range tables[0].Rates {
		out[strings.ToUpper(r.Code)] = r.Mid
	}
	out["PLN"] = decimal.NewFromInt(1)

	slog.DebugContext(ctx, "NBP rates fetched",
		"table", tables[0].No,
		"effective_date", tables[0].EffectiveDate,
		"currencies", len(out))
	return out, nil
}

// fetchTable marks network failures, throttling and 5xx answers retryable.
func (c *Client) fetchTable(ctx context.Context) ([]rateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tablePath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}

	var tables []rateTable
	if err := json.NewDecoder(resp.Body).Decode(&tables); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return tables, nil
}
