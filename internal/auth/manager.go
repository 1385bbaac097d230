package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/zalando/go-keyring"
)

// Manager stores Nexus passwords keyed by server and user
type Manager struct {
	storage        StorageBackend
	storageWarning string
}

// ManagerOptions configures the auth manager
type ManagerOptions struct {
	ForceEncryptedFile bool // Skip the system keyring
}

// NewManager creates a new auth manager
func NewManager(configDir string) *Manager {
	return NewManagerWithOptions(configDir, ManagerOptions{})
}

// NewManagerWithOptions creates a new auth manager with specific options
func NewManagerWithOptions(configDir string, opts ManagerOptions) *Manager {
	mgr := &Manager{}

	if !opts.ForceEncryptedFile && checkKeyringAvailable() {
		mgr.storage = NewKeyringStorage(utils.KeyringService)
		return mgr
	}

	storage, err := NewEncryptedFileStorage(configDir)
	if err != nil {
		mgr.storage = unavailableStorage{err: err}
		mgr.storageWarning = fmt.Sprintf("WARNING: No credential storage available (%v).", err)
		return mgr
	}
	mgr.storage = storage
	if !opts.ForceEncryptedFile {
		mgr.storageWarning = "INFO: System keyring not available. Using encrypted file storage."
	}
	return mgr
}

// NewManagerWithStorage wraps an explicit backend
func NewManagerWithStorage(storage StorageBackend) *Manager {
	return &Manager{storage: storage}
}

// checkKeyringAvailable tests if system keyring is available
func checkKeyringAvailable() bool {
	testKey := utils.KeyringService + "-probe"
	if err := keyring.Set(utils.KeyringService, testKey, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(utils.KeyringService, testKey)
	return true
}

// DefaultConfigDir returns the per-user directory for nxraw state
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".nxraw")
	}
	return filepath.Join(dir, "nxraw")
}

// AccountKey identifies a stored password. Trailing slashes on the URL are
// ignored so https://n/ and https://n share one entry.
func AccountKey(nexusURL, username string) string {
	return strings.TrimRight(strings.TrimSpace(nexusURL), "/") + "|" + strings.TrimSpace(username)
}

// SavePassword stores the password for nexusURL and username
func (m *Manager) SavePassword(nexusURL, username, password string) error {
	if nexusURL == "" || username == "" {
		return fmt.Errorf("nexus URL and username are required")
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}
	if err := m.storage.Save(AccountKey(nexusURL, username), []byte(password)); err != nil {
		return fmt.Errorf("failed to store password in %s: %w", m.storage.Name(), err)
	}
	return nil
}

// LoadPassword returns the stored password or ErrNotFound
func (m *Manager) LoadPassword(nexusURL, username string) (string, error) {
	data, err := m.storage.Load(AccountKey(nexusURL, username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read password from %s: %w", m.storage.Name(), err)
	}
	return string(data), nil
}

// DeletePassword removes the stored password. Deleting an absent entry
// returns ErrNotFound.
func (m *Manager) DeletePassword(nexusURL, username string) error {
	err := m.storage.Delete(AccountKey(nexusURL, username))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete password from %s: %w", m.storage.Name(), err)
	}
	return err
}

// GetStorageBackend returns the name of the active backend
func (m *Manager) GetStorageBackend() string {
	return m.storage.Name()
}

// GetStorageWarning returns a notice about degraded storage, if any
func (m *Manager) GetStorageWarning() string {
	return m.storageWarning
}

type unavailableStorage struct {
	err error
}

func (u unavailableStorage) Save(string, []byte) error { return u.err }
func (u unavailableStorage) Load(string) ([]byte, error) { return nil, u.err }
func (u unavailableStorage) Delete(string) error { return u.err }
func (u unavailableStorage) Name() string { return "unavailable" }
