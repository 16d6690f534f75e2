package credentials_test

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"kanori/internal/credentials"
)

func TestStore_InstallAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := credentials.NewStore(path)

	if s.LoggedIn() {
		t.Fatal("new store should be logged out")
	}
	if err := s.Install("access-1", "refresh-1"); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	loaded, err := credentials.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.AccessToken() != "access-1" || loaded.RefreshToken() != "refresh-1" {
		t.Errorf("unexpected pair %q/%q", loaded.AccessToken(), loaded.RefreshToken())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestStore_InstallKeepsRefreshWhenNotRotated(t *testing.T) {
	s := credentials.NewStore("")
	_ = s.Install("access-1", "refresh-1")
	_ = s.Install("access-2", "")

	if s.AccessToken() != "access-2" {
		t.Errorf("expected access-2, got %q", s.AccessToken())
	}
	if s.RefreshToken() != "refresh-1" {
		t.Errorf("expected refresh-1 to survive, got %q", s.RefreshToken())
	}

	_ = s.Install("access-3", "refresh-3")
	if s.RefreshToken() != "refresh-3" {
		t.Errorf("expected rotated refresh-3, got %q", s.RefreshToken())
	}
}

func TestStore_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := credentials.NewStore(path)
	_ = s.Install("a", "r")

	if err := s.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if s.LoggedIn() || s.AccessToken() != "" {
		t.Error("store should be empty after clear")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected file removed, stat err = %v", err)
	}
	// Clearing twice is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second clear failed: %v", err)
	}
}

func TestStore_LoadMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()
	s, err := credentials.Load(filepath.Join(dir, "missing.json"))
	if err != nil || s.LoggedIn() {
		t.Fatalf("missing file should yield empty store, err=%v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{"), 0600)
	if _, err := credentials.Load(bad); err == nil {
		t.Error("expected error for invalid file")
	}
}

func TestStore_SetAuthHeader(t *testing.T) {
	s := credentials.NewStore("")
	req, _ := http.NewRequest(http.MethodGet, "http://x/", nil)
	s.SetAuthHeader(req)
	if req.Header.Get("Authorization") != "" {
		t.Error("no header expected when logged out")
	}

	_ = s.Install("tok", "")
	s.SetAuthHeader(req)
	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("unexpected header %q", got)
	}
}
