package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter giới hạn số lượng request gửi tới GitHub trong 1 giây
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows maxRequests per second. A non-positive value disables pacing.
func NewRateLimiter(maxRequests int) *RateLimiter {
	if maxRequests <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(maxRequests), maxRequests),
	}
}

// Allow kiểm tra xem có thể thực hiện request mới ngay lập tức hay không
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
