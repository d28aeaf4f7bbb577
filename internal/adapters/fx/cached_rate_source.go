package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const defaultSharedFetchTimeout = 10 * time.Second

// CachedRateSource memoizes successful lookups of an underlying source for a TTL.
// Concurrent misses for the same pair share one upstream call. Errors are not cached.
type CachedRateSource struct {
	next         portssvc.RateSource
	cache        *expirable.LRU[string, domain.RateQuote]
	group        singleflight.Group
	fetchTimeout time.Duration
	now          func() time.Time
}

// CachedOption is a functional option for configuring a CachedRateSource
type CachedOption func(*CachedRateSource)

// WithFetchTimeout bounds a shared upstream lookup. No single caller's context
// controls it, so this is its only deadline.
func WithFetchTimeout(timeout time.Duration) CachedOption {
	return func(s *CachedRateSource) {
		if timeout > 0 {
			s.fetchTimeout = timeout
		}
	}
}

// NewCachedRateSource wraps next with an LRU of at most size pairs.
func NewCachedRateSource(next portssvc.RateSource, size int, ttl time.Duration, options ...CachedOption) *CachedRateSource {
	if size <= 0 {
		size = 128
	}
	s := &CachedRateSource{
		next:         next,
		cache:        expirable.NewLRU[string, domain.RateQuote](size, nil, ttl),
		fetchTimeout: defaultSharedFetchTimeout,
		now:          time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.RateSource = (*CachedRateSource)(nil)

func (s *CachedRateSource) GetRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	from, to := normalize(fromCode), normalize(toCode)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := from + "_" + to
	if quote, ok := s.cache.Get(key); ok {
		return quote.Rate, nil
	}

	// The upstream call outlives any one caller; each caller only stops waiting.
	detached := context.WithoutCancel(ctx)
	results := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(detached, s.fetchTimeout)
		defer cancel()

		rate, err := s.next.GetRate(fetchCtx, from, to)
		if err != nil {
			return nil, err
		}
		quote := domain.RateQuote{From: from, To: to, Rate: rate, Source: "cache", FetchedAt: s.now()}
		s.cache.Add(key, quote)
		return quote, nil
	})

	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%w: %s to %s: %v", apperrors.ErrRateUnavailable, from, to, ctx.Err())
	case res := <-results:
		if res.Err != nil {
			return decimal.Zero, res.Err
		}
		return res.Val.(domain.RateQuote).Rate, nil
	}
}

// Len reports the number of cached pairs.
func (s *CachedRateSource) Len() int {
	return s.cache.Len()
}
