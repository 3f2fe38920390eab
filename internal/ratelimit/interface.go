package ratelimit

// Service defines the interface for request rate limiting
// External packages should use this interface, not the concrete implementations
type Service interface {
	Allow(clientIP string) bool
}
