package generator

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// RateLimited bounds the request rate to a wrapped generator.
type RateLimited struct {
	inner   StructuredGenerator
	limiter *rate.Limiter
}

// NewRateLimited wraps g so that at most rps calls per second start, with the
// given burst.
func NewRateLimited(g StructuredGenerator, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{inner: g, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimited) Name() string { return r.inner.Name() }

func (r *RateLimited) GenerateSkeleton(ctx context.Context, req SkeletonRequest) (*Skeleton, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "waiting for rate limiter")
	}
	return r.inner.GenerateSkeleton(ctx, req)
}
