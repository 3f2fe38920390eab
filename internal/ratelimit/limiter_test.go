package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_AllowWithinCapacity(t *testing.T) {
	bucket := NewTokenBucket(3, 1)

	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())
}

func TestTokenBucket_Refund(t *testing.T) {
	bucket := NewTokenBucket(1, 1)

	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())

	bucket.refund()
	assert.True(t, bucket.Allow())
}

func TestTokenBucket_RefundCappedAtCapacity(t *testing.T) {
	bucket := NewTokenBucket(1, 1)

	bucket.refund()
	bucket.refund()

	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())
}

func TestTwoTierRateLimiter_PerClientLimit(t *testing.T) {
	limiter := NewTwoTierRateLimiter(100, 100, 2, 1)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	// A different client has its own budget
	assert.True(t, limiter.Allow("10.0.0.2"))
}

func TestTwoTierRateLimiter_GlobalLimit(t *testing.T) {
	limiter := NewTwoTierRateLimiter(2, 1, 100, 100)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.False(t, limiter.Allow("10.0.0.3"))
}

func TestTwoTierRateLimiter_ClientDenialRefundsGlobal(t *testing.T) {
	limiter := NewTwoTierRateLimiter(2, 1, 1, 1)

	assert.True(t, limiter.Allow("10.0.0.1"))

	// The denied request must not consume the global budget
	assert.False(t, limiter.Allow("10.0.0.1"))

	assert.True(t, limiter.Allow("10.0.0.2"))
}
