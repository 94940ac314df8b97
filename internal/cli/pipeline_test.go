package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/samircd4/bcp-events/internal/browser"
	"github.com/samircd4/bcp-events/internal/config"
	"github.com/samircd4/bcp-events/internal/event"
	"github.com/samircd4/bcp-events/internal/images"
	"github.com/samircd4/bcp-events/internal/poster"
	"github.com/samircd4/bcp-events/internal/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Files.StorePath = filepath.Join(dir, "events.csv")
	cfg.Files.ScratchPath = filepath.Join(dir, "new_events.csv")
	cfg.Files.SessionPath = filepath.Join(dir, "state.json")
	cfg.Files.CredsPath = filepath.Join(dir, "creds.json")
	cfg.Files.ImageDir = filepath.Join(dir, "images")
	cfg.Files.LogPath = ""
	cfg.Site.LoginURL = "https://site.test/login"
	cfg.Site.AddFormURL = "https://site.test/account/events/add"
	cfg.Site.Email = "user@example.com"
	cfg.Site.Password = "hunter2"
	return cfg
}

func testPipeline(t *testing.T, cfg config.Config, d *browser.DryRun) *pipeline {
	t.Helper()
	p, err := newPipeline(cfg, true)
	if err != nil {
		t.Fatalf("newPipeline() error: %v", err)
	}
	p.launcher = d
	return p
}

func testEvent(id string) *event.Event {
	return &event.Event{
		EventID:    id,
		Name:       "Event " + id,
		GameSystem: "Warhammer 40k",
		StartDate:  "10/06/2024",
		EndDate:    "10/06/2024",
		StartTime:  "10:00 AM",
		EndTime:    "6:00 PM",
		Location:   "Boston MA US",
		EventLink:  event.LinkFor(id),
	}
}

func countActions(d *browser.DryRun, substr string) int {
	n := 0
	for _, a := range d.Actions() {
		if strings.Contains(a, substr) {
			n++
		}
	}
	return n
}

// A session that stays invalid across re-login must produce exactly one
// re-login and exactly two posting attempts before the event is abandoned.
func TestLoginRetryBound(t *testing.T) {
	cfg := testConfig(t)
	d := browser.NewDryRun()
	// Every visit to the posting form bounces to the login gate.
	d.Redirects[cfg.Site.AddFormURL] = "https://site.test/login_direct_url"

	p := testPipeline(t, cfg, d)
	mgr, err := p.sessionManager()
	if err != nil {
		t.Fatalf("sessionManager() error: %v", err)
	}
	wf := poster.New(d, cfg.Site, cfg.Files.SessionPath)

	p.postOne(mgr, wf, testEvent("A"), "img.png")

	if got := countActions(d, "goto "+cfg.Site.AddFormURL); got != 2 {
		t.Errorf("posting attempts = %d, want exactly 2", got)
	}
	if got := countActions(d, "goto "+cfg.Site.LoginURL); got != 1 {
		t.Errorf("login ceremonies = %d, want exactly 1", got)
	}
	if d.OpenPages != 0 {
		t.Errorf("OpenPages = %d, want 0", d.OpenPages)
	}
}

// With a store holding {A, B} and a fetch returning {A, B, C}, the delta
// is {C}; posting C with a valid session succeeds without any login.
func TestEndToEndDelta(t *testing.T) {
	cfg := testConfig(t)
	d := browser.NewDryRun()
	p := testPipeline(t, cfg, d)

	st := store.New(cfg.Files.StorePath, cfg.Files.ScratchPath)
	if _, err := st.Reconcile([]*event.Event{testEvent("A"), testEvent("B")}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	delta, err := p.store.Reconcile([]*event.Event{testEvent("A"), testEvent("B"), testEvent("C")})
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if len(delta) != 1 || delta[0].EventID != "C" {
		t.Fatalf("delta = %v, want only C", delta)
	}

	// Valid session token already on disk.
	sess, _ := d.NewSession("")
	if err := sess.SaveState(cfg.Files.SessionPath); err != nil {
		t.Fatalf("seeding session state: %v", err)
	}
	sess.Close()
	preLogin := countActions(d, "goto "+cfg.Site.LoginURL)

	if err := p.postAll(delta); err != nil {
		t.Fatalf("postAll() error: %v", err)
	}

	if got := countActions(d, "goto "+cfg.Site.AddFormURL); got != 1 {
		t.Errorf("posting attempts = %d, want 1", got)
	}
	if got := countActions(d, "goto "+cfg.Site.LoginURL); got != preLogin {
		t.Error("session manager should not have run a ceremony")
	}
	if got := countActions(d, "click button:has-text('Save Changes')"); got != 1 {
		t.Errorf("submissions = %d, want 1", got)
	}
}

// A non-auth posting failure on one event must not stop the batch.
func TestBatchContinuesPastFailures(t *testing.T) {
	cfg := testConfig(t)
	d := browser.NewDryRun()
	// Title field missing on every page: each post fails mid-fill.
	d.Missing["[placeholder='Enter the post title']"] = true
	p := testPipeline(t, cfg, d)

	sess, _ := d.NewSession("")
	if err := sess.SaveState(cfg.Files.SessionPath); err != nil {
		t.Fatalf("seeding session state: %v", err)
	}
	sess.Close()

	if err := p.postAll([]*event.Event{testEvent("A"), testEvent("B")}); err != nil {
		t.Fatalf("postAll() error: %v", err)
	}
	if got := countActions(d, "goto "+cfg.Site.AddFormURL); got != 2 {
		t.Errorf("posting attempts = %d, want one per event", got)
	}
	if d.OpenPages != 0 {
		t.Errorf("OpenPages = %d, want 0 after failures", d.OpenPages)
	}
}

func TestFailedInitialLoginAbortsPosting(t *testing.T) {
	cfg := testConfig(t)
	cfg.Site.Email = "" // no credentials anywhere
	cfg.Site.Password = ""
	d := browser.NewDryRun()
	p := testPipeline(t, cfg, d)

	if err := p.postAll([]*event.Event{testEvent("A")}); err == nil {
		t.Fatal("expected error when the initial login cannot run")
	}
	if got := countActions(d, "goto "+cfg.Site.AddFormURL); got != 0 {
		t.Errorf("no posting attempt should happen without a session, got %d", got)
	}
}

// Default image path is used when acquisition fails.
func TestDefaultImageFallback(t *testing.T) {
	cfg := testConfig(t)
	d := browser.NewDryRun()
	p := testPipeline(t, cfg, d)
	p.acquirer = images.New(cfg.Files.ImageDir)

	sess, _ := d.NewSession("")
	if err := sess.SaveState(cfg.Files.SessionPath); err != nil {
		t.Fatalf("seeding session state: %v", err)
	}
	sess.Close()

	evt := testEvent("A") // no ImgURL set
	if err := p.postAll([]*event.Event{evt}); err != nil {
		t.Fatalf("postAll() error: %v", err)
	}
	if got := countActions(d, "file="+cfg.Files.DefaultImage); got != 1 {
		t.Errorf("default image uploads = %d, want 1\nactions:\n%s",
			got, strings.Join(d.Actions(), "\n"))
	}
}
