package auth

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestAccountKey(t *testing.T) {
	tests := []struct {
		url, user, want string
	}{
		{"https://n.example.com", "u", "https://n.example.com|u"},
		{"https://n.example.com/", "u", "https://n.example.com|u"},
		{" https://n.example.com// ", " u ", "https://n.example.com|u"},
	}
	for _, tt := range tests {
		if got := AccountKey(tt.url, tt.user); got != tt.want {
			t.Errorf("AccountKey(%q, %q) = %q, want %q", tt.url, tt.user, got, tt.want)
		}
	}
}

func TestManager_KeyringRoundTrip(t *testing.T) {
	keyring.MockInit()

	mgr := NewManager(t.TempDir())
	if mgr.GetStorageBackend() != "system-keyring" {
		t.Fatalf("Expected keyring backend with mock keyring, got %s", mgr.GetStorageBackend())
	}
	if mgr.GetStorageWarning() != "" {
		t.Errorf("Unexpected warning: %s", mgr.GetStorageWarning())
	}

	if err := mgr.SavePassword("https://n.example.com/", "deployer", "pw"); err != nil {
		t.Fatalf("SavePassword failed: %v", err)
	}

	got, err := mgr.LoadPassword("https://n.example.com", "deployer")
	if err != nil {
		t.Fatalf("LoadPassword failed: %v", err)
	}
	if got != "pw" {
		t.Errorf("LoadPassword = %q, want pw", got)
	}

	if _, err := mgr.LoadPassword("https://n.example.com", "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}

	if err := mgr.DeletePassword("https://n.example.com", "deployer"); err != nil {
		t.Errorf("DeletePassword failed: %v", err)
	}
	if err := mgr.DeletePassword("https://n.example.com", "deployer"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestManager_KeyringUnavailableFallsBack(t *testing.T) {
	keyring.MockInitWithError(errors.New("no dbus"))
	t.Cleanup(keyring.MockInit)

	mgr := NewManager(t.TempDir())
	if mgr.GetStorageBackend() != "encrypted-file" {
		t.Fatalf("Expected encrypted-file fallback, got %s", mgr.GetStorageBackend())
	}
	if mgr.GetStorageWarning() == "" {
		t.Error("Expected a storage warning on fallback")
	}

	if err := mgr.SavePassword("https://n.example.com", "u", "pw"); err != nil {
		t.Fatalf("SavePassword failed: %v", err)
	}
	if got, err := mgr.LoadPassword("https://n.example.com", "u"); err != nil || got != "pw" {
		t.Errorf("LoadPassword = %q, %v", got, err)
	}
}

func TestManager_ForceEncryptedFile(t *testing.T) {
	keyring.MockInit()

	mgr := NewManagerWithOptions(t.TempDir(), ManagerOptions{ForceEncryptedFile: true})
	if mgr.GetStorageBackend() != "encrypted-file" {
		t.Errorf("Expected encrypted-file, got %s", mgr.GetStorageBackend())
	}
	if mgr.GetStorageWarning() != "" {
		t.Errorf("Forced backend should not warn, got %q", mgr.GetStorageWarning())
	}
}

func TestManager_SavePasswordValidation(t *testing.T) {
	keyring.MockInit()
	mgr := NewManagerWithStorage(NewKeyringStorage("nxraw-test"))

	if err := mgr.SavePassword("", "u", "pw"); err == nil {
		t.Error("Expected error for missing URL")
	}
	if err := mgr.SavePassword("https://n", "u", ""); err == nil {
		t.Error("Expected error for empty password")
	}
}
