package geocode

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ThrottledProvider keeps outgoing traffic within the upstream usage policy
// and lets concurrent identical searches share one upstream call.
type ThrottledProvider struct {
	next    Provider
	limiter *rate.Limiter
	timeout time.Duration
	group   singleflight.Group
}

// NewThrottledProvider allows perSecond upstream calls with a burst of one.
// A non-positive rate disables the limiter.
func NewThrottledProvider(next Provider, perSecond float64, timeout time.Duration) *ThrottledProvider {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &ThrottledProvider{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		timeout: timeout,
	}
}

func (t *ThrottledProvider) Name() string {
	return t.next.Name()
}

func (t *ThrottledProvider) Search(ctx context.Context, q SearchQuery) ([]Suggestion, error) {
	ch := t.group.DoChan(searchKey(q), func() (interface{}, error) {
		// The shared call must outlive any single caller giving up.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
		defer cancel()

		if err := t.limiter.Wait(callCtx); err != nil {
			return nil, err
		}
		return t.next.Search(callCtx, q)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		suggestions, _ := res.Val.([]Suggestion)
		return slices.Clone(suggestions), nil
	}
}

func (t *ThrottledProvider) Reverse(ctx context.Context, lat, lon float64, languages []string) (*Suggestion, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.Reverse(ctx, lat, lon, languages)
}

var _ Provider = (*ThrottledProvider)(nil)
