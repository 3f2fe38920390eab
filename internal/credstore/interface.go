package credstore

import "context"

// SecretStore is the capability interface over the platform's protected
// storage. Implementations report an empty slot as models.ErrSecretNotFound
// so a real secure enclave can be swapped for an in-memory stub in tests.
type SecretStore interface {
	Store(service, account string, secret []byte) error
	Fetch(service, account string) ([]byte, error)
	Delete(service, account string) error
}

// Service defines the interface for bearer credential management
// External packages should use this interface, not the concrete implementations
type Service interface {
	// Store persists the token, replacing any prior credential
	Store(ctx context.Context, token string) error

	// CurrentToken returns the stored token, or "" when none exists.
	// "nothing stored" is not an error; other I/O failures are.
	CurrentToken(ctx context.Context) (string, error)

	// Clear deletes the persisted credential and the in-memory shadow;
	// succeeds whether or not a credential existed
	Clear(ctx context.Context) error

	// IsStructurallyValid performs local-only JWT sanity checking; no
	// signature verification, no remote calls
	IsStructurallyValid(token string) bool
}
