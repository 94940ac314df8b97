package browser

import (
	"fmt"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightLauncher drives a real Chromium browser through Playwright.
type PlaywrightLauncher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywright starts the Playwright driver and launches Chromium. The
// driver binaries must already be installed (playwright install chromium).
func NewPlaywright(headless bool) (*PlaywrightLauncher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	return &PlaywrightLauncher{pw: pw, browser: b}, nil
}

func (l *PlaywrightLauncher) NewSession(storageStatePath string) (Session, error) {
	opts := playwright.BrowserNewContextOptions{}
	if storageStatePath != "" {
		if _, err := os.Stat(storageStatePath); err == nil {
			opts.StorageStatePath = playwright.String(storageStatePath)
		}
	}

	ctx, err := l.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	return &pwSession{ctx: ctx}, nil
}

func (l *PlaywrightLauncher) Close() error {
	if err := l.browser.Close(); err != nil {
		l.pw.Stop()
		return fmt.Errorf("closing browser: %w", err)
	}
	if err := l.pw.Stop(); err != nil {
		return fmt.Errorf("stopping playwright: %w", err)
	}
	return nil
}

type pwSession struct {
	ctx playwright.BrowserContext
}

func (s *pwSession) NewPage() (Page, error) {
	p, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	return &pwPage{page: p}, nil
}

func (s *pwSession) SaveState(path string) error {
	if _, err := s.ctx.StorageState(path); err != nil {
		return fmt.Errorf("saving storage state: %w", err)
	}
	return nil
}

func (s *pwSession) Close() error {
	return s.ctx.Close()
}

type pwPage struct {
	page playwright.Page
}

func (p *pwPage) Goto(url string) error {
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) Content() (string, error) {
	return p.page.Content()
}

func (p *pwPage) Fill(locator, value string) error {
	return p.page.Locator(locator).First().Fill(value)
}

func (p *pwPage) Click(locator string) error {
	return p.page.Locator(locator).First().Click()
}

func (p *pwPage) Press(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *pwPage) SelectOption(locator, value string) error {
	_, err := p.page.Locator(locator).First().SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return err
}

func (p *pwPage) Upload(locator, filePath string) error {
	fc, err := p.page.ExpectFileChooser(func() error {
		return p.page.Locator(locator).First().Click()
	})
	if err != nil {
		return fmt.Errorf("opening file chooser: %w", err)
	}
	if err := fc.SetFiles(filePath); err != nil {
		return fmt.Errorf("setting chooser file: %w", err)
	}
	return nil
}

func (p *pwPage) WaitFor(locator string, timeout time.Duration) error {
	return p.page.Locator(locator).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *pwPage) SetClipboard(text string) error {
	_, err := p.page.Evaluate("text => navigator.clipboard.writeText(text)", text)
	if err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

func (p *pwPage) Close() error {
	return p.page.Close()
}
