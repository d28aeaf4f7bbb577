package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Default mirrors of the public currency API. Both serve the same payload.
const (
	DefaultPrimaryBaseURL  = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1"
	DefaultFallbackBaseURL = "https://latest.currency-api.pages.dev/v1"
)

const sourceName = "currency-api"

var errBaseNotListed = errors.New("base currency not listed")

// HTTPRateSource fetches daily rates from the currency API, trying each base URL in order.
type HTTPRateSource struct {
	client   *http.Client
	baseURLs []string
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewHTTPRateSource creates a source for baseURLs; an empty list selects the default mirrors.
// timeout bounds each individual request.
func NewHTTPRateSource(client *http.Client, baseURLs []string, timeout time.Duration, logger *slog.Logger) *HTTPRateSource {
	if client == nil {
		client = http.DefaultClient
	}
	if len(baseURLs) == 0 {
		baseURLs = []string{DefaultPrimaryBaseURL, DefaultFallbackBaseURL}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPRateSource{
		client:   client,
		baseURLs: baseURLs,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "fx_http")),
		now:      time.Now,
	}
}

var _ portssvc.RateSource = (*HTTPRateSource)(nil)

func (s *HTTPRateSource) GetRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	quote, err := s.Quote(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.Rate, nil
}

// Quote is GetRate with provenance.
func (s *HTTPRateSource) Quote(ctx context.Context, fromCode, toCode string) (domain.RateQuote, error) {
	from, to := normalize(fromCode), normalize(toCode)
	if from == to {
		return domain.RateQuote{From: from, To: to, Rate: decimal.NewFromInt(1), Source: "identity", FetchedAt: s.now()}, nil
	}

	rates, err := s.fetchRates(ctx, strings.ToLower(from))
	if err != nil {
		return domain.RateQuote{}, err
	}
	rate, ok := rates[strings.ToLower(to)]
	if !ok {
		return domain.RateQuote{}, fmt.Errorf("%w: %s not quoted for base %s", apperrors.ErrUnsupportedCurrency, to, from)
	}
	return domain.RateQuote{From: from, To: to, Rate: rate, Source: sourceName, FetchedAt: s.now()}, nil
}

func (s *HTTPRateSource) fetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	var lastErr error
	allMissing := true

	for _, baseURL := range s.baseURLs {
		rates, err := s.fetchFrom(ctx, strings.TrimRight(baseURL, "/"), base)
		if err == nil {
			return rates, nil
		}
		lastErr = err
		if !errors.Is(err, errBaseNotListed) {
			allMissing = false
		}
		s.logger.Warn("FX mirror failed", slog.String("base_url", baseURL), slog.String("base", base), slog.String("error", err.Error()))

		if ctx.Err() != nil {
			break
		}
	}

	if allMissing {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, strings.ToUpper(base))
	}
	return nil, fmt.Errorf("%w: could not fetch rates for %s: %v", apperrors.ErrRateUnavailable, strings.ToUpper(base), lastErr)
}

func (s *HTTPRateSource) fetchFrom(ctx context.Context, baseURL, base string) (map[string]decimal.Decimal, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/currencies/%s.json", baseURL, base)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errBaseNotListed
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	// Payload shape: {"date": "2024-03-01", "<base>": {"<code>": <rate>, ...}}
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	raw, ok := payload[base]
	if !ok {
		return nil, fmt.Errorf("unexpected rate format: missing %q", base)
	}
	var rates map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, fmt.Errorf("unexpected rate format: %w", err)
	}
	return rates, nil
}
