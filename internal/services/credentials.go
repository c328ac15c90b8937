package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

const (
	CredentialsFileName = "credentials.json"
	lockRetryDelay      = 50 * time.Millisecond
)

// DefaultCredentialsPath returns the per-user credential file location
func DefaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "klauzula", CredentialsFileName)
}

// FileCredentialStore keeps the access credential in a JSON file.
// Writes are atomic and serialised across processes with a file lock.
type FileCredentialStore struct {
	path   string
	logger *lib.Logger
	now    func() time.Time
}

// NewFileCredentialStore creates a store backed by path, or the default path when empty
func NewFileCredentialStore(path string, logger *lib.Logger) *FileCredentialStore {
	if path == "" {
		path = DefaultCredentialsPath()
	}
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &FileCredentialStore{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the credential file location
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Load reads the stored credential. A missing file yields nil and no error.
func (s *FileCredentialStore) Load() (*models.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var cred models.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &cred, nil
}

// Save writes the credential with temp file + rename while holding the lock
func (s *FileCredentialStore) Save(ctx context.Context, cred models.Credential) error {
	return s.withLock(ctx, func() error {
		dir := filepath.Dir(s.path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}

		data, err := json.MarshalIndent(cred, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal credentials: %w", err)
		}

		tempFile := filepath.Join(dir, fmt.Sprintf(".credentials.tmp.%s", uuid.NewString()))
		if err := os.WriteFile(tempFile, data, 0600); err != nil {
			return fmt.Errorf("failed to write temp credentials file: %w", err)
		}

		if err := os.Rename(tempFile, s.path); err != nil {
			_ = os.Remove(tempFile)
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		s.logger.Debug("Saved credentials", "path", s.path, "email", cred.Email)
		return nil
	})
}

// Clear removes the stored credential. Clearing an absent credential is not an error.
func (s *FileCredentialStore) Clear(ctx context.Context) error {
	return s.withLock(ctx, func() error {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		return nil
	})
}

// Token implements TokenSource.
// An absent or expired credential yields an empty token.
func (s *FileCredentialStore) Token(ctx context.Context) (string, error) {
	cred, err := s.Load()
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", nil
	}
	if cred.Expired(s.now()) {
		s.logger.Warn("Stored credential has expired, sending request without it",
			"email", cred.Email,
			"expired_at", cred.ExpiresAt)
		return "", nil
	}
	return cred.AccessToken, nil
}

// withLock executes fn while holding the credential file lock
func (s *FileCredentialStore) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire credentials lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("credentials file %s is locked by another process", s.path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("Failed to release credentials lock", "error", err)
		}
	}()

	return fn()
}
