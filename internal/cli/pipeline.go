package cli

import (
	"errors"
	"fmt"

	"github.com/samircd4/bcp-events/internal/bcp"
	"github.com/samircd4/bcp-events/internal/browser"
	"github.com/samircd4/bcp-events/internal/config"
	"github.com/samircd4/bcp-events/internal/crypto"
	"github.com/samircd4/bcp-events/internal/event"
	"github.com/samircd4/bcp-events/internal/images"
	"github.com/samircd4/bcp-events/internal/logger"
	"github.com/samircd4/bcp-events/internal/poster"
	"github.com/samircd4/bcp-events/internal/session"
	"github.com/samircd4/bcp-events/internal/store"
)

// pipeline wires the components for one run and owns their lifecycle. The
// browser launcher is created lazily: a fetch-only run never starts one.
type pipeline struct {
	cfg      config.Config
	store    *store.Store
	client   *bcp.Client
	acquirer *images.Acquirer
	launcher browser.Launcher
	dryRun   bool
}

func newPipeline(cfg config.Config, dryRun bool) (*pipeline, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &pipeline{
		cfg:      cfg,
		store:    store.New(cfg.Files.StorePath, cfg.Files.ScratchPath),
		client:   bcp.New(cfg.API, loc),
		acquirer: images.New(cfg.Files.ImageDir),
		dryRun:   dryRun,
	}, nil
}

func (p *pipeline) ensureLauncher() error {
	if p.launcher != nil {
		return nil
	}
	l, err := newLauncher(p.cfg, p.dryRun)
	if err != nil {
		return fmt.Errorf("starting browser automation: %w", err)
	}
	p.launcher = l
	return nil
}

func (p *pipeline) close() {
	if p.launcher != nil {
		if err := p.launcher.Close(); err != nil {
			logger.Error("closing browser automation", nil, err)
		}
	}
}

func (p *pipeline) sessionManager() (*session.Manager, error) {
	if err := p.ensureLauncher(); err != nil {
		return nil, err
	}
	enc := crypto.NewEncryptor(p.cfg.CredKey)
	return session.NewManager(p.launcher, p.cfg.Site, p.cfg.Files.SessionPath, p.cfg.Files.CredsPath, enc), nil
}

// loginOnly runs just the login ceremony.
func (p *pipeline) loginOnly() error {
	mgr, err := p.sessionManager()
	if err != nil {
		return err
	}
	return mgr.Login()
}

// run executes one full invocation: fetch and reconcile, then post each
// event in the delta, retrying once through re-login on an auth failure.
func (p *pipeline) run(skipPost bool) error {
	if err := p.client.ValidateKey(); err != nil {
		return fmt.Errorf("API unreachable: %w", err)
	}

	if !p.dryRun {
		if err := p.store.RemoveScratch(); err != nil {
			return err
		}
	}

	fetched, fetchErr := p.client.FetchEvents(p.cfg.WindowDays)
	if fetchErr != nil {
		// Partial results are kept; the fetch just ended early.
		logger.Error("fetch ended early", logger.Fields{"fetched": len(fetched)}, fetchErr)
	}
	logger.Add("events.fetched", int64(len(fetched)))

	var delta []*event.Event
	var err error
	if p.dryRun {
		delta, err = p.store.Delta(fetched)
	} else {
		delta, err = p.store.Reconcile(fetched)
	}
	if err != nil {
		return fmt.Errorf("reconciling events: %w", err)
	}
	logger.Add("events.new", int64(len(delta)))

	if skipPost {
		logger.Info("skipping posting stage", nil)
		p.summary()
		return nil
	}
	if len(delta) == 0 {
		p.summary()
		return nil
	}

	// Post from the scratch file rather than the in-memory delta so the
	// posting stage consumes exactly what was persisted.
	toPost := delta
	if !p.dryRun {
		toPost, err = p.store.LoadScratch()
		if err != nil {
			return fmt.Errorf("loading scratch delta: %w", err)
		}
	}

	if err := p.postAll(toPost); err != nil {
		return err
	}
	p.summary()
	return nil
}

// postAll posts each event in sequence. Per-event failures are logged and
// never stop the batch; only a failed initial login aborts, since no event
// could be posted without a session.
func (p *pipeline) postAll(events []*event.Event) error {
	mgr, err := p.sessionManager()
	if err != nil {
		return err
	}
	if err := mgr.EnsureSession(); err != nil {
		return err
	}

	wf := poster.New(p.launcher, p.cfg.Site, p.cfg.Files.SessionPath)

	for _, evt := range events {
		logger.Info("posting new event", logger.Fields{
			"event_id": evt.EventID,
			"name":     evt.Name,
		})

		imagePath, ok := p.acquirer.Acquire(evt.EventID, evt.ImgURL)
		if !ok {
			imagePath = p.cfg.Files.DefaultImage
		}

		p.postOne(mgr, wf, evt, imagePath)
	}
	return nil
}

// postOne runs one posting attempt with the bounded auth-retry policy: on
// a login redirect, re-run the login ceremony exactly once and retry the
// post exactly once. Any failure on the retry abandons the event.
func (p *pipeline) postOne(mgr *session.Manager, wf *poster.Workflow, evt *event.Event, imagePath string) {
	err := wf.Post(evt, imagePath)
	if err == nil {
		logger.Incr("events.posted")
		return
	}

	if !errors.Is(err, poster.ErrLoginRequired) {
		logger.Error("posting failed", logger.Fields{"event_id": evt.EventID}, err)
		logger.Incr("events.failed")
		return
	}

	logger.Warn("session invalid, re-running login ceremony", logger.Fields{
		"event_id": evt.EventID,
	})
	logger.Incr("login.retries")

	if lerr := mgr.Login(); lerr != nil {
		logger.Error("re-login failed, abandoning event", logger.Fields{
			"event_id": evt.EventID,
		}, lerr)
		logger.Incr("events.failed")
		return
	}

	// The first attempt may have partially succeeded before the redirect
	// was noticed; reposting accepts a small duplicate-listing risk.
	if err := wf.Post(evt, imagePath); err != nil {
		logger.Error("posting failed after re-login, abandoning event", logger.Fields{
			"event_id": evt.EventID,
		}, err)
		logger.Incr("events.failed")
		return
	}
	logger.Incr("events.posted")
}

func (p *pipeline) summary() {
	logger.Info("run complete", logger.CountersSnapshot())
}
