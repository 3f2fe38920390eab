package credstore

import (
	"sync"

	"github.com/clearmeat/assessment/internal/models"
)

// MemorySecretStore implements SecretStore in memory, for tests and
// environments without durable protected storage
type MemorySecretStore struct {
	data  map[string][]byte
	mutex sync.Mutex
}

// NewMemorySecretStore creates an in-memory secret store
func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{
		data: make(map[string][]byte),
	}
}

// Store saves the secret for (service, account)
func (m *MemorySecretStore) Store(service, account string, secret []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	copied := make([]byte, len(secret))
	copy(copied, secret)
	m.data[service+"/"+account] = copied
	return nil
}

// Fetch returns the secret for (service, account)
func (m *MemorySecretStore) Fetch(service, account string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	secret, ok := m.data[service+"/"+account]
	if !ok {
		return nil, models.ErrSecretNotFound
	}
	copied := make([]byte, len(secret))
	copy(copied, secret)
	return copied, nil
}

// Delete removes the slot; absent slots are not an error
func (m *MemorySecretStore) Delete(service, account string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, service+"/"+account)
	return nil
}
