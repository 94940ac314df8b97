package poster

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samircd4/bcp-events/internal/browser"
	"github.com/samircd4/bcp-events/internal/event"
	"github.com/samircd4/bcp-events/internal/logger"
)

// detailsHeading anchors the description block on the event's public page.
const detailsHeading = "Event Details:"

// fetchDescription loads the event's public overview page in its own tab
// and extracts the description HTML. Best-effort: any failure yields an
// empty description and never fails the posting attempt. The extra page is
// closed on every path.
func (w *Workflow) fetchDescription(sess browser.Session, evt *event.Event) string {
	page, err := sess.NewPage()
	if err != nil {
		logger.Error("opening description page", logger.Fields{"event_id": evt.EventID}, err)
		return ""
	}
	defer page.Close()

	url := evt.EventLink + "?active_tab=overview"
	if err := page.Goto(url); err != nil {
		logger.Error("loading event overview", logger.Fields{
			"event_id": evt.EventID,
			"url":      url,
		}, err)
		return ""
	}

	if err := page.WaitFor("h6", w.elementWait); err != nil {
		logger.Info("description not found", logger.Fields{"event_id": evt.EventID})
		return ""
	}

	html, err := page.Content()
	if err != nil {
		logger.Error("reading event overview", logger.Fields{"event_id": evt.EventID}, err)
		return ""
	}

	desc := extractDescription(html)
	if desc == "" {
		logger.Info("description not found", logger.Fields{"event_id": evt.EventID})
	} else {
		logger.Info("description extracted", logger.Fields{
			"event_id": evt.EventID,
			"bytes":    len(desc),
		})
	}
	return desc
}

// extractDescription locates the description block anchored to the
// "Event Details:" heading. Primary form is the heading's adjacent div;
// when that finds nothing the first following sibling of any kind is
// tried. Returns inner HTML so formatting survives the paste.
func extractDescription(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	heading := doc.Find("h6").FilterFunction(func(i int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), detailsHeading)
	}).First()
	if heading.Length() == 0 {
		return ""
	}

	block := heading.NextFiltered("div").First()
	if block.Length() == 0 {
		block = heading.NextAll().First()
	}
	if block.Length() == 0 {
		return ""
	}

	inner, err := block.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(inner)
}
