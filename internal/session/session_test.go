package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samircd4/bcp-events/internal/browser"
	"github.com/samircd4/bcp-events/internal/config"
	"github.com/samircd4/bcp-events/internal/crypto"
)

func testSite() config.SiteConfig {
	return config.SiteConfig{
		LoginURL: "https://site.test/login",
		Email:    "user@example.com",
		Password: "hunter2",
	}
}

func TestLoginCeremonySavesState(t *testing.T) {
	dir := t.TempDir()
	d := browser.NewDryRun()
	m := NewManager(d, testSite(), filepath.Join(dir, "state.json"), filepath.Join(dir, "creds.json"), nil)

	if m.HasSession() {
		t.Fatal("should not have a session before login")
	}
	if err := m.Login(); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if !m.HasSession() {
		t.Error("session token file should exist after login")
	}

	actions := strings.Join(d.Actions(), "\n")
	for _, want := range []string{
		"goto https://site.test/login",
		"fill " + emailField + " = user@example.com",
		"fill " + passwordField + " = hunter2",
		"click " + submitButton,
	} {
		if !strings.Contains(actions, want) {
			t.Errorf("actions missing %q:\n%s", want, actions)
		}
	}
	if d.OpenPages != 0 {
		t.Errorf("OpenPages = %d, want 0 after login", d.OpenPages)
	}
}

func TestEnsureSessionIdempotent(t *testing.T) {
	dir := t.TempDir()
	d := browser.NewDryRun()
	m := NewManager(d, testSite(), filepath.Join(dir, "state.json"), filepath.Join(dir, "creds.json"), nil)

	if err := m.EnsureSession(); err != nil {
		t.Fatalf("first EnsureSession() error: %v", err)
	}
	before := len(d.Actions())

	if err := m.EnsureSession(); err != nil {
		t.Fatalf("second EnsureSession() error: %v", err)
	}
	if len(d.Actions()) != before {
		t.Error("second EnsureSession() should not have touched the browser")
	}
}

func TestLoginFailsWhenMarkerNeverAppears(t *testing.T) {
	dir := t.TempDir()
	d := browser.NewDryRun()
	d.Missing[accountMarker] = true
	m := NewManager(d, testSite(), filepath.Join(dir, "state.json"), filepath.Join(dir, "creds.json"), nil)

	err := m.Login()
	if err == nil {
		t.Fatal("expected login failure")
	}
	if !strings.Contains(err.Error(), "login failed") {
		t.Errorf("error = %v, want login failed wrapping", err)
	}
	if m.HasSession() {
		t.Error("no session token should be saved after a failed ceremony")
	}
	if d.OpenPages != 0 {
		t.Errorf("OpenPages = %d, want 0 after failed login", d.OpenPages)
	}
}

func TestLoginWithoutCredentials(t *testing.T) {
	dir := t.TempDir()
	d := browser.NewDryRun()
	site := testSite()
	site.Email = ""
	site.Password = ""
	m := NewManager(d, site, filepath.Join(dir, "state.json"), filepath.Join(dir, "creds.json"), nil)

	if err := m.Login(); err == nil {
		t.Fatal("expected error with no credentials anywhere")
	}
}

func TestCredentialsPersistEncrypted(t *testing.T) {
	dir := t.TempDir()
	credsPath := filepath.Join(dir, "creds.json")
	enc := crypto.NewEncryptor("passphrase")

	// First run: credentials come from the environment-backed config and
	// get mirrored to disk.
	d := browser.NewDryRun()
	m := NewManager(d, testSite(), filepath.Join(dir, "state.json"), credsPath, enc)
	if err := m.Login(); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	raw, err := os.ReadFile(credsPath)
	if err != nil {
		t.Fatalf("credential file not written: %v", err)
	}
	if strings.Contains(string(raw), "hunter2") {
		t.Error("credential file should not contain the plaintext password")
	}

	// Second run: no environment credentials, loads from the file.
	site := testSite()
	site.Email = ""
	site.Password = ""
	m2 := NewManager(d, site, filepath.Join(dir, "state2.json"), credsPath, enc)
	creds, err := m2.loadCredentials()
	if err != nil {
		t.Fatalf("loadCredentials() error: %v", err)
	}
	if creds.Email != "user@example.com" || creds.Password != "hunter2" {
		t.Errorf("loaded creds = %+v", creds)
	}
}
