// Package browser defines the UI-automation capability boundary used by the
// login ceremony and the posting workflow.
//
// Callers drive an abstract Launcher/Session/Page contract (navigate, fill,
// click, upload, wait-for-element) and never touch an automation engine
// directly, so the posting state machine is testable against the DryRun
// implementation without a real browser. The production adapter wraps
// Playwright.
package browser

import "time"

// Launcher starts isolated browser sessions. Close releases the underlying
// engine; sessions must be closed before the launcher.
type Launcher interface {
	// NewSession opens a browser context. If storageStatePath names an
	// existing file, the session resumes that persisted authentication
	// state; otherwise it starts unauthenticated.
	NewSession(storageStatePath string) (Session, error)
	Close() error
}

// Session is one isolated browser context holding cookies and storage.
type Session interface {
	NewPage() (Page, error)
	// SaveState persists the session's authentication state to path.
	SaveState(path string) error
	Close() error
}

// Page drives a single browser tab. Locators are engine selector strings
// (CSS, text=, placeholder=, etc.); every operation waits for the element
// with the engine's default bounded timeout and returns an error rather
// than blocking forever.
type Page interface {
	Goto(url string) error
	// URL reports the page location after any redirects.
	URL() string
	// Content returns the full serialized HTML of the page.
	Content() (string, error)
	Fill(locator, value string) error
	Click(locator string) error
	// Press sends a keyboard chord (e.g. "Enter", "Control+V") to the
	// focused element.
	Press(key string) error
	SelectOption(locator, value string) error
	// Upload clicks locator, intercepts the resulting file chooser, and
	// supplies filePath.
	Upload(locator, filePath string) error
	// WaitFor blocks until locator is visible or timeout elapses; a
	// timeout is reported as an error, not a hang.
	WaitFor(locator string, timeout time.Duration) error
	// SetClipboard loads text into the page's clipboard so a subsequent
	// paste chord preserves rich formatting.
	SetClipboard(text string) error
	Close() error
}
