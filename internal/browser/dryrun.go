package browser

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// DryRun implements Launcher without touching a real browser. Every action
// is recorded, navigation can be rewritten to simulate redirects, and
// locators can be marked missing to simulate broken pages. Used by the
// --dry-run mode and by the posting workflow tests.
type DryRun struct {
	mu      sync.Mutex
	actions []string

	// Redirects rewrites navigation targets, e.g. the add-event form to a
	// login gate URL.
	Redirects map[string]string
	// Pages maps a URL to the HTML that Content returns for it.
	Pages map[string]string
	// Missing marks locators that are absent from every page: WaitFor
	// times out and Fill/Click/Upload/SelectOption fail.
	Missing map[string]bool

	// SavedStates collects paths passed to SaveState.
	SavedStates []string
	// OpenPages counts pages opened and not yet closed, for asserting
	// resource release.
	OpenPages int

	// LastClipboard holds the most recent SetClipboard payload.
	LastClipboard string
}

// NewDryRun creates a DryRun launcher with no redirects and no missing
// elements: every interaction succeeds.
func NewDryRun() *DryRun {
	return &DryRun{
		Redirects: make(map[string]string),
		Pages:     make(map[string]string),
		Missing:   make(map[string]bool),
	}
}

func (d *DryRun) record(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, fmt.Sprintf(format, args...))
}

// Actions returns a copy of every recorded action in order.
func (d *DryRun) Actions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.actions))
	copy(out, d.actions)
	return out
}

func (d *DryRun) NewSession(storageStatePath string) (Session, error) {
	d.record("session state=%s", storageStatePath)
	return &drSession{d: d}, nil
}

func (d *DryRun) Close() error {
	d.record("launcher close")
	return nil
}

type drSession struct {
	d *DryRun
}

func (s *drSession) NewPage() (Page, error) {
	s.d.mu.Lock()
	s.d.OpenPages++
	s.d.mu.Unlock()
	s.d.record("new page")
	return &drPage{d: s.d}, nil
}

func (s *drSession) SaveState(path string) error {
	s.d.mu.Lock()
	s.d.SavedStates = append(s.d.SavedStates, path)
	s.d.mu.Unlock()
	s.d.record("save state %s", path)
	// Write a stub so callers that check for the token file see one.
	return os.WriteFile(path, []byte("{}"), 0600)
}

func (s *drSession) Close() error {
	s.d.record("session close")
	return nil
}

type drPage struct {
	d      *DryRun
	cur    string
	closed bool
}

func (p *drPage) Goto(url string) error {
	if to, ok := p.d.Redirects[url]; ok {
		p.d.record("goto %s -> %s", url, to)
		p.cur = to
		return nil
	}
	p.d.record("goto %s", url)
	p.cur = url
	return nil
}

func (p *drPage) URL() string {
	return p.cur
}

func (p *drPage) Content() (string, error) {
	if html, ok := p.d.Pages[p.cur]; ok {
		return html, nil
	}
	return "<html><body></body></html>", nil
}

func (p *drPage) Fill(locator, value string) error {
	if p.d.Missing[locator] {
		return fmt.Errorf("no element matches %q", locator)
	}
	p.d.record("fill %s = %s", locator, value)
	return nil
}

func (p *drPage) Click(locator string) error {
	if p.d.Missing[locator] {
		return fmt.Errorf("no element matches %q", locator)
	}
	p.d.record("click %s", locator)
	return nil
}

func (p *drPage) Press(key string) error {
	p.d.record("press %s", key)
	return nil
}

func (p *drPage) SelectOption(locator, value string) error {
	if p.d.Missing[locator] {
		return fmt.Errorf("no element matches %q", locator)
	}
	p.d.record("select %s = %s", locator, value)
	return nil
}

func (p *drPage) Upload(locator, filePath string) error {
	if p.d.Missing[locator] {
		return fmt.Errorf("no element matches %q", locator)
	}
	p.d.record("upload %s file=%s", locator, filePath)
	return nil
}

func (p *drPage) WaitFor(locator string, timeout time.Duration) error {
	if p.d.Missing[locator] {
		return fmt.Errorf("waiting for %q: timeout %v exceeded", locator, timeout)
	}
	p.d.record("wait %s", locator)
	return nil
}

func (p *drPage) SetClipboard(text string) error {
	p.d.mu.Lock()
	p.d.LastClipboard = text
	p.d.mu.Unlock()
	p.d.record("clipboard %d bytes", len(text))
	return nil
}

func (p *drPage) Close() error {
	if !p.closed {
		p.closed = true
		p.d.mu.Lock()
		p.d.OpenPages--
		p.d.mu.Unlock()
	}
	p.d.record("page close")
	return nil
}
