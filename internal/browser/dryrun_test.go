package browser

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDryRunRedirect(t *testing.T) {
	d := NewDryRun()
	d.Redirects["https://site.test/add"] = "https://site.test/login_direct_url"

	sess, err := d.NewSession("")
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	page, err := sess.NewPage()
	if err != nil {
		t.Fatalf("NewPage() error: %v", err)
	}

	if err := page.Goto("https://site.test/add"); err != nil {
		t.Fatalf("Goto() error: %v", err)
	}
	if !strings.Contains(page.URL(), "login_direct_url") {
		t.Errorf("URL() = %q, want login gate", page.URL())
	}
}

func TestDryRunMissingLocator(t *testing.T) {
	d := NewDryRun()
	d.Missing["#gone"] = true

	sess, _ := d.NewSession("")
	page, _ := sess.NewPage()

	if err := page.Fill("#gone", "x"); err == nil {
		t.Error("Fill() on missing locator should fail")
	}
	if err := page.WaitFor("#gone", time.Second); err == nil {
		t.Error("WaitFor() on missing locator should time out")
	}
	if err := page.Click("#present"); err != nil {
		t.Errorf("Click() on present locator failed: %v", err)
	}
}

func TestDryRunTracksOpenPages(t *testing.T) {
	d := NewDryRun()
	sess, _ := d.NewSession("")

	p1, _ := sess.NewPage()
	p2, _ := sess.NewPage()
	if d.OpenPages != 2 {
		t.Fatalf("OpenPages = %d, want 2", d.OpenPages)
	}

	p1.Close()
	p1.Close() // double close must not double count
	p2.Close()
	if d.OpenPages != 0 {
		t.Errorf("OpenPages = %d, want 0", d.OpenPages)
	}
}

func TestDryRunSaveStateWritesStub(t *testing.T) {
	d := NewDryRun()
	sess, _ := d.NewSession("")

	path := filepath.Join(t.TempDir(), "state.json")
	if err := sess.SaveState(path); err != nil {
		t.Fatalf("SaveState() error: %v", err)
	}
	if len(d.SavedStates) != 1 || d.SavedStates[0] != path {
		t.Errorf("SavedStates = %v", d.SavedStates)
	}
}
