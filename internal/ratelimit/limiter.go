package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64 // tokens per second
	lastRefill time.Time
	mutex      sync.Mutex
}

// NewTokenBucket creates a new token bucket with the specified capacity and refill rate
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity, // Start with full bucket
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a token is available and consumes it if so
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// refund returns a previously consumed token
func (tb *TokenBucket) refund() {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	if tb.tokens < tb.capacity {
		tb.tokens++
	}
}

// refill adds tokens based on time elapsed since last refill
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tokensToAdd := int64(elapsed * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}
}

// TwoTierRateLimiter enforces a global request budget plus a per-client cap
type TwoTierRateLimiter struct {
	globalBucket      *TokenBucket
	clientBuckets     sync.Map // map[string]*TokenBucket
	perClientCapacity int64
	perClientRate     int64
}

// NewTwoTierRateLimiter creates a new two-tier rate limiter
func NewTwoTierRateLimiter(globalCapacity, globalRate, perClientCapacity, perClientRate int64) *TwoTierRateLimiter {
	limiter := &TwoTierRateLimiter{
		globalBucket:      NewTokenBucket(globalCapacity, globalRate),
		perClientCapacity: perClientCapacity,
		perClientRate:     perClientRate,
	}

	go limiter.cleanupClientBuckets()

	return limiter
}

// Allow checks both the global and the per-client limit
func (trl *TwoTierRateLimiter) Allow(clientIP string) bool {
	if !trl.globalBucket.Allow() {
		return false
	}

	bucket := trl.getOrCreateClientBucket(clientIP)
	if !bucket.Allow() {
		// The global token was consumed but the request won't proceed
		trl.globalBucket.refund()
		return false
	}

	return true
}

func (trl *TwoTierRateLimiter) getOrCreateClientBucket(clientIP string) *TokenBucket {
	if bucket, ok := trl.clientBuckets.Load(clientIP); ok {
		return bucket.(*TokenBucket)
	}

	bucket, _ := trl.clientBuckets.LoadOrStore(clientIP, NewTokenBucket(trl.perClientCapacity, trl.perClientRate))
	return bucket.(*TokenBucket)
}

// cleanupClientBuckets periodically drops idle per-client buckets
func (trl *TwoTierRateLimiter) cleanupClientBuckets() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		trl.clientBuckets.Range(func(key, value interface{}) bool {
			bucket := value.(*TokenBucket)
			bucket.mutex.Lock()
			idle := now.Sub(bucket.lastRefill) > 30*time.Minute
			bucket.mutex.Unlock()
			if idle {
				trl.clientBuckets.Delete(key)
			}
			return true
		})
	}
}
