package credstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/clearmeat/assessment/internal/models"
)

const (
	// credentialService and credentialAccount form the fixed slot for the
	// single bearer credential of this installation
	credentialService = "com.clearmeat.assessment"
	credentialAccount = "bearer-token"
)

// credentialStore implements Service over a SecretStore with an in-memory
// shadow copy. The shadow only avoids repeated secure-store round trips;
// the secure store is the source of truth on cold start, and the shadow is
// invalidated whenever the persisted copy is cleared.
type credentialStore struct {
	secrets   SecretStore
	validator *Validator
	mutex     sync.Mutex
	shadow    string
	hasShadow bool
}

// New creates a credential store backed by the given secret store
func New(secrets SecretStore, validator *Validator) Service {
	return &credentialStore{
		secrets:   secrets,
		validator: validator,
	}
}

// Store persists the token, replacing any prior credential so at most one
// live credential exists per installation
func (s *credentialStore) Store(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Delete-then-store guarantees a single live credential
	if err := s.secrets.Delete(credentialService, credentialAccount); err != nil {
		return fmt.Errorf("failed to replace credential: %w", err)
	}
	if err := s.secrets.Store(credentialService, credentialAccount, []byte(token)); err != nil {
		return err
	}

	s.shadow = token
	s.hasShadow = true
	return nil
}

// CurrentToken serves the shadow when populated, otherwise reads through
// the secure store. "nothing stored" returns ("", nil).
func (s *credentialStore) CurrentToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.hasShadow {
		return s.shadow, nil
	}

	secret, err := s.secrets.Fetch(credentialService, credentialAccount)
	if err != nil {
		if errors.Is(err, models.ErrSecretNotFound) {
			return "", nil
		}
		return "", err
	}

	s.shadow = string(secret)
	s.hasShadow = true
	return s.shadow, nil
}

// Clear deletes the persisted credential and invalidates the shadow
func (s *credentialStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.secrets.Delete(credentialService, credentialAccount); err != nil {
		return err
	}

	s.shadow = ""
	s.hasShadow = false
	return nil
}

// IsStructurallyValid reports whether the token passes the local JWT checks
func (s *credentialStore) IsStructurallyValid(token string) bool {
	return s.validator.IsStructurallyValid(token)
}
