package credstore

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/clearmeat/assessment/internal/models"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const saltFileName = "device.salt"

// FileSecretStore implements SecretStore with per-slot encrypted files in
// an application-private directory. The encryption key is derived with
// HKDF-SHA256 from a device fingerprint and a per-installation salt, so
// secrets are bound to this device and never sync elsewhere.
type FileSecretStore struct {
	dir  string
	aead func() ([]byte, error)
}

// NewFileSecretStore creates an encrypted file-backed secret store under dir
func NewFileSecretStore(dir string) (SecretStore, error) {
	return newFileSecretStore(dir)
}

// newFileSecretStore creates the concrete implementation
func newFileSecretStore(dir string) (*FileSecretStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}

	salt, err := loadOrCreateSalt(filepath.Join(dir, saltFileName))
	if err != nil {
		return nil, err
	}

	fingerprint := deviceFingerprint()

	return &FileSecretStore{
		dir: dir,
		aead: func() ([]byte, error) {
			return deriveKey(fingerprint, salt)
		},
	}, nil
}

// Store encrypts and persists the secret for (service, account),
// overwriting any prior entry
func (s *FileSecretStore) Store(service, account string, secret []byte) error {
	key, err := s.aead()
	if err != nil {
		return err
	}

	cipher, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}

	nonce := make([]byte, cipher.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}

	sealed := cipher.Seal(nonce, nonce, secret, []byte(service+"/"+account))
	if err := os.WriteFile(s.slotPath(service, account), sealed, 0o600); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}

	return nil
}

// Fetch decrypts and returns the secret for (service, account)
func (s *FileSecretStore) Fetch(service, account string) ([]byte, error) {
	sealed, err := os.ReadFile(s.slotPath(service, account))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrSecretNotFound
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	key, err := s.aead()
	if err != nil {
		return nil, err
	}

	cipher, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	if len(sealed) < cipher.NonceSize() {
		return nil, models.ErrSecretNotFound
	}

	nonce, ciphertext := sealed[:cipher.NonceSize()], sealed[cipher.NonceSize():]
	secret, err := cipher.Open(nil, nonce, ciphertext, []byte(service+"/"+account))
	if err != nil {
		// Undecryptable slot, e.g. after a fingerprint change; treat as empty
		return nil, models.ErrSecretNotFound
	}

	return secret, nil
}

// Delete removes the slot; absent slots are not an error
func (s *FileSecretStore) Delete(service, account string) error {
	if err := os.Remove(s.slotPath(service, account)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}
	return nil
}

func (s *FileSecretStore) slotPath(service, account string) string {
	name := sanitizeSlot(service) + "_" + sanitizeSlot(account) + ".cred"
	return filepath.Join(s.dir, name)
}

func sanitizeSlot(part string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, part)
}

// deriveKey derives a 32-byte key from the device fingerprint and the
// installation salt using HKDF-SHA256
func deriveKey(fingerprint string, salt []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(fingerprint), salt, []byte("credential-store"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	return key, nil
}

// deviceFingerprint returns a stable identifier for this device. Falls back
// to the hostname when no platform identifier is readable; the
// per-installation salt still keeps derived keys unique.
func deviceFingerprint() string {
	for _, path := range []string{"/etc/machine-id", "/sys/class/dmi/id/product_uuid"} {
		if raw, err := os.ReadFile(path); err == nil {
			if id := strings.TrimSpace(string(raw)); id != "" {
				return id
			}
		}
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown-device"
	}
	return host
}

func loadOrCreateSalt(path string) ([]byte, error) {
	if salt, err := os.ReadFile(path); err == nil && len(salt) == 32 {
		return salt, nil
	}

	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorageFailure, err)
	}
	return salt, nil
}
