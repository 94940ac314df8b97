// Package session owns the persisted authenticated-session token for the
// posting site and the login ceremony that mints it.
//
// The token is browser storage state written by the automation engine. The
// site never signals expiry explicitly; invalidation is only observable as
// a login redirect during a posting attempt, so callers re-run Login when
// the posting workflow reports one.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samircd4/bcp-events/internal/browser"
	"github.com/samircd4/bcp-events/internal/config"
	"github.com/samircd4/bcp-events/internal/crypto"
	"github.com/samircd4/bcp-events/internal/logger"
)

// Login page selectors and the post-login marker.
const (
	memberLoginLink = "a[aria-label='Member Login']"
	emailField      = "input#member_login_190-element-9"
	passwordField   = "input#member_login_190-element-10"
	submitButton    = "input#member_login_190-element-12"
	accountMarker   = "a[href*='/account']"

	loginWait = 15 * time.Second
)

// Manager performs the login ceremony and persists the session token.
type Manager struct {
	launcher  browser.Launcher
	site      config.SiteConfig
	statePath string
	credsPath string
	enc       *crypto.Encryptor
}

// NewManager creates a session manager. enc may be nil, in which case the
// credential file is stored unencrypted.
func NewManager(launcher browser.Launcher, site config.SiteConfig, statePath, credsPath string, enc *crypto.Encryptor) *Manager {
	return &Manager{
		launcher:  launcher,
		site:      site,
		statePath: statePath,
		credsPath: credsPath,
		enc:       enc,
	}
}

// StatePath returns the path of the persisted session token file.
func (m *Manager) StatePath() string {
	return m.statePath
}

// HasSession reports whether a persisted session token exists. Existence
// does not imply validity; the site invalidates tokens silently.
func (m *Manager) HasSession() bool {
	_, err := os.Stat(m.statePath)
	return err == nil
}

// EnsureSession runs the login ceremony only when no token file exists.
// Idempotent: with a token present it does nothing.
func (m *Manager) EnsureSession() error {
	if m.HasSession() {
		return nil
	}
	logger.Info("no session token found, logging in", nil)
	return m.Login()
}

// Login runs the login ceremony once: navigate to the login page, submit
// stored credentials, wait for the authenticated marker, and persist the
// resulting session token. No retry of its own; a failure is logged and
// surfaced to the caller.
func (m *Manager) Login() error {
	creds, err := m.credentials()
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	sess, err := m.launcher.NewSession("")
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer sess.Close()

	page, err := sess.NewPage()
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer page.Close()

	if err := m.ceremony(page, creds); err != nil {
		logger.Error("login ceremony failed", logger.Fields{"url": m.site.LoginURL}, err)
		return fmt.Errorf("login failed: %w", err)
	}

	if err := sess.SaveState(m.statePath); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	logger.Info("login successful, session token saved", logger.Fields{"path": m.statePath})
	return nil
}

func (m *Manager) ceremony(page browser.Page, creds credentials) error {
	if err := page.Goto(m.site.LoginURL); err != nil {
		return err
	}
	if err := page.Click(memberLoginLink); err != nil {
		return fmt.Errorf("opening login form: %w", err)
	}
	if err := page.Fill(emailField, creds.Email); err != nil {
		return fmt.Errorf("filling email: %w", err)
	}
	if err := page.Fill(passwordField, creds.Password); err != nil {
		return fmt.Errorf("filling password: %w", err)
	}
	if err := page.Click(submitButton); err != nil {
		return fmt.Errorf("submitting login: %w", err)
	}
	if err := page.WaitFor(accountMarker, loginWait); err != nil {
		return fmt.Errorf("waiting for authenticated page: %w", err)
	}
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// credentials resolves login credentials: the environment wins and is
// mirrored to the encrypted credential file for later runs; otherwise the
// file is read back and decrypted.
func (m *Manager) credentials() (credentials, error) {
	if m.site.Email != "" && m.site.Password != "" {
		creds := credentials{Email: m.site.Email, Password: m.site.Password}
		if err := m.saveCredentials(creds); err != nil {
			logger.Warn("could not persist credentials", logger.Fields{
				"path":  m.credsPath,
				"error": err.Error(),
			})
		}
		return creds, nil
	}
	return m.loadCredentials()
}

func (m *Manager) saveCredentials(creds credentials) error {
	if m.credsPath == "" {
		return nil
	}
	blob, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	sealed, err := m.enc.Encrypt(string(blob))
	if err != nil {
		return err
	}
	return os.WriteFile(m.credsPath, []byte(sealed), 0600)
}

func (m *Manager) loadCredentials() (credentials, error) {
	if m.credsPath == "" {
		return credentials{}, fmt.Errorf("no credentials in environment and no credential file configured")
	}
	raw, err := os.ReadFile(m.credsPath)
	if err != nil {
		return credentials{}, fmt.Errorf("no credentials available: %w", err)
	}
	plain, err := m.enc.Decrypt(string(raw))
	if err != nil {
		return credentials{}, fmt.Errorf("decrypting credentials: %w", err)
	}
	var creds credentials
	if err := json.Unmarshal([]byte(plain), &creds); err != nil {
		return credentials{}, fmt.Errorf("parsing credentials: %w", err)
	}
	if creds.Email == "" || creds.Password == "" {
		return credentials{}, fmt.Errorf("credential file is incomplete")
	}
	return creds, nil
}
