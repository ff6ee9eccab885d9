package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/rates/domain"
	"github.com/sony/gobreaker/v2"
)

// FetcherConfig configures the HTTP rate fetcher.
type FetcherConfig struct {
	// URL of the rates endpoint returning {"base": "...", "rates": {...}}.
	URL string

	// RequestTimeout bounds one fetch.
	RequestTimeout time.Duration

	// MaxRequests allowed in the breaker's half-open state.
	MaxRequests uint32

	// Timeout is the period of the breaker's open state.
	Timeout time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultFetcherConfig returns sensible defaults.
func DefaultFetcherConfig(url string) FetcherConfig {
	return FetcherConfig{
		URL:              url,
		RequestTimeout:   10 * time.Second,
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: 3,
	}
}

// HTTPFetcher pulls fresh exchange rates from an HTTP endpoint behind a
// circuit breaker.
type HTTPFetcher struct {
	client  *http.Client
	config  FetcherConfig
	breaker *gobreaker.CircuitBreaker[domain.Table]
	logger  *slog.Logger
	now     func() time.Time
}

// NewHTTPFetcher creates a new HTTPFetcher. A nil clock defaults to time.Now.
func NewHTTPFetcher(config FetcherConfig, logger *slog.Logger, now func() time.Time) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}

	settings := gobreaker.Settings{
		Name:        "rates-fetcher",
		MaxRequests: config.MaxRequests,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("rates fetcher breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &HTTPFetcher{
		client:  &http.Client{Timeout: config.RequestTimeout},
		config:  config,
		breaker: gobreaker.NewCircuitBreaker[domain.Table](settings),
		logger:  logger,
		now:     now,
	}
}

// Fetch retrieves the current rate table. An open breaker fails fast.
func (f *HTTPFetcher) Fetch(ctx context.Context) (domain.Table, error) {
	return f.breaker.Execute(func() (domain.Table, error) {
		return f.fetch(ctx)
	})
}

func (f *HTTPFetcher) fetch(ctx context.Context) (domain.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.URL, nil)
	if err != nil {
		return domain.Table{}, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Table{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Table{}, fmt.Errorf("rates endpoint returned status %d", resp.StatusCode)
	}

	var table domain.Table
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return domain.Table{}, fmt.Errorf("decode rates: %w", err)
	}
	if table.Base == "" || len(table.Rates) == 0 {
		return domain.Table{}, fmt.Errorf("rates endpoint returned an empty table")
	}

	table.FetchedAt = f.now()
	return table, nil
}
