package poster

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samircd4/bcp-events/internal/browser"
	"github.com/samircd4/bcp-events/internal/config"
	"github.com/samircd4/bcp-events/internal/event"
	"github.com/samircd4/bcp-events/internal/logger"
)

// ErrLoginRequired reports that navigating to the posting form redirected
// to the login gate: the persisted session token is no longer valid. The
// attempt performed no form interaction.
var ErrLoginRequired = errors.New("login required")

// Posting form selectors.
const (
	uploadImageButton = "text=Upload Image"
	approvalYes       = "label:has-text('Yes')"
	titleField        = "[placeholder='Enter the post title']"
	gameSystemField   = "input#event_fields_322-element-15"
	startTimeSelect   = "select#event_fields-element-15-1"
	endTimeSelect     = "select#event_fields-element-15-2"
	startDatePicker   = "#stardatepicker"
	endDatePicker     = "#enddatepicker"
	externalLinkField = "[aria-label='External Web Link']"
	locationField     = "[placeholder^='Enter a location']"
	completeAddress   = "[aria-label='Complete Address']"
	addressField      = "input#event_fields_322-element-28"
	richTextToggle    = "button#html-1"
	saveButton        = "button:has-text('Save Changes')"
)

// Workflow posts one event at a time to the target site's add-event form.
//
// Each posting attempt walks a fixed sequence: upload image, fill fields,
// fetch the event's public description, paste it into the rich-text field,
// submit. A login redirect observed immediately after the opening
// navigation aborts the attempt with ErrLoginRequired before any form
// interaction. Every exit path releases the page and session.
type Workflow struct {
	launcher    browser.Launcher
	site        config.SiteConfig
	statePath   string
	elementWait time.Duration
}

// New creates a posting workflow resuming the session persisted at
// statePath.
func New(launcher browser.Launcher, site config.SiteConfig, statePath string) *Workflow {
	return &Workflow{
		launcher:    launcher,
		site:        site,
		statePath:   statePath,
		elementWait: 3 * time.Second,
	}
}

// Post drives the posting form for evt using the image at imagePath (the
// acquired event image or the configured default). Returns nil on success,
// ErrLoginRequired when the session token has been silently invalidated,
// and any other error for a failed attempt. Failures never panic out of
// the workflow and never leak an open page or session.
func (w *Workflow) Post(evt *event.Event, imagePath string) error {
	sess, err := w.launcher.NewSession(w.statePath)
	if err != nil {
		return fmt.Errorf("opening browser session: %w", err)
	}
	defer sess.Close()

	page, err := sess.NewPage()
	if err != nil {
		return fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	if err := page.Goto(w.site.AddFormURL); err != nil {
		return fmt.Errorf("navigating to posting form: %w", err)
	}
	if strings.Contains(page.URL(), w.site.LoginGate) {
		logger.Warn("posting form redirected to login", logger.Fields{
			"event_id": evt.EventID,
			"url":      page.URL(),
		})
		return ErrLoginRequired
	}

	if err := page.Upload(uploadImageButton, imagePath); err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}

	if err := w.fillForm(page, evt); err != nil {
		return err
	}

	desc := w.fetchDescription(sess, evt)
	if err := w.pasteDescription(page, desc); err != nil {
		return err
	}

	if err := page.Click(saveButton); err != nil {
		return fmt.Errorf("submitting form: %w", err)
	}

	logger.Info("event posted", logger.Fields{
		"event_id": evt.EventID,
		"name":     evt.Name,
	})
	return nil
}

func (w *Workflow) fillForm(page browser.Page, evt *event.Event) error {
	if err := page.Click(approvalYes); err != nil {
		return fmt.Errorf("checking approval: %w", err)
	}
	if err := page.Fill(titleField, evt.Title()); err != nil {
		return fmt.Errorf("filling title: %w", err)
	}
	if err := page.Fill(gameSystemField, evt.GameSystem); err != nil {
		return fmt.Errorf("filling game system: %w", err)
	}

	// The form's time dropdowns only carry round half-hour options; a
	// converted time like 10:15 AM simply has no entry. Non-fatal.
	if err := page.SelectOption(startTimeSelect, evt.StartTime); err != nil {
		logger.Info("start time is not a selectable option", logger.Fields{
			"event_id": evt.EventID,
			"time":     evt.StartTime,
		})
	}
	if err := page.SelectOption(endTimeSelect, evt.EndTime); err != nil {
		logger.Info("end time is not a selectable option", logger.Fields{
			"event_id": evt.EventID,
			"time":     evt.EndTime,
		})
	}

	if err := page.Fill(startDatePicker, evt.StartDate); err != nil {
		return fmt.Errorf("filling start date: %w", err)
	}
	if err := page.Fill(endDatePicker, evt.EndDate); err != nil {
		return fmt.Errorf("filling end date: %w", err)
	}
	if err := page.Fill(externalLinkField, evt.EventLink); err != nil {
		return fmt.Errorf("filling external link: %w", err)
	}

	// Address autocomplete: type the location, then confirm the top
	// suggestion.
	if err := page.Fill(locationField, evt.Location); err != nil {
		return fmt.Errorf("filling location: %w", err)
	}
	if err := page.Press("Enter"); err != nil {
		return fmt.Errorf("confirming location suggestion: %w", err)
	}

	if err := page.Click(completeAddress); err != nil {
		return fmt.Errorf("opening address section: %w", err)
	}
	if err := page.Fill(addressField, evt.Street); err != nil {
		return fmt.Errorf("filling street address: %w", err)
	}
	return nil
}

// pasteDescription transfers the description into the rich-text field via
// the clipboard so embedded formatting survives; typing it as text would
// flatten the markup.
func (w *Workflow) pasteDescription(page browser.Page, desc string) error {
	if desc == "" {
		logger.Info("posting without description", nil)
		return nil
	}
	if err := page.SetClipboard(desc); err != nil {
		return fmt.Errorf("copying description: %w", err)
	}
	if err := page.Click(richTextToggle); err != nil {
		return fmt.Errorf("focusing rich-text field: %w", err)
	}
	if err := page.Press("Control+V"); err != nil {
		return fmt.Errorf("pasting description: %w", err)
	}
	return nil
}
