package bcp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/samircd4/bcp-events/internal/config"
	"github.com/samircd4/bcp-events/internal/event"
	"github.com/samircd4/bcp-events/internal/logger"
)

const eventsPath = "/v1/events"

// Client talks to the BCP events API.
type Client struct {
	cfg        config.APIConfig
	httpClient *http.Client
	loc        *time.Location
	now        func() time.Time
}

// New creates an API client. loc is the reference timezone used to anchor
// the fetch window at local midnight.
func New(cfg config.APIConfig, loc *time.Location) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		loc:        loc,
		now:        time.Now,
	}
}

// Record is one raw event as returned by the API.
type Record struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	GameSystemName string `json:"gameSystemName"`
	EventDate      string `json:"eventDate"`
	EventEndDate   string `json:"eventEndDate"`
	City           string `json:"city"`
	State          string `json:"state"`
	Country        string `json:"country"`
	StreetNum      string `json:"streetNum"`
	StreetName     string `json:"streetName"`
	OwnerFirstName string `json:"ownerFirstName"`
	OwnerLastName  string `json:"ownerLastName"`
	PhotoURL       string `json:"photoUrl"`
}

type pageResponse struct {
	Data    []Record `json:"data"`
	NextKey string   `json:"nextKey"`
}

// ValidateKey probes the API with a one-record request to check the
// configured API key. Validation is advisory only: a non-200 response is
// logged as a warning but does not fail, matching observed upstream
// behavior where fetching works regardless. Only a transport failure
// returns an error.
func (c *Client) ValidateKey() error {
	req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL+eventsPath, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	q := url.Values{}
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("accept", "*/*")
	req.Header.Set("client-id", c.cfg.ClientID)
	req.Header.Set("authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("validating API key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Likely an upstream defect that non-200 still permits fetching;
		// treat the key as valid but say so loudly.
		logger.Warn("API key validation returned non-200; continuing anyway", logger.Fields{
			"status": resp.StatusCode,
		})
		return nil
	}

	logger.Info("API key is valid", nil)
	return nil
}

// FetchEvents pages through the API for events starting between local
// midnight today and windowDays later, normalizing each record.
//
// The returned slice is always usable. A non-nil error reports why
// pagination stopped early (request, status, or decode failure on some
// page); records accumulated before the failure are kept. The absence of a
// continuation cursor is the sole normal stop condition.
func (c *Client) FetchEvents(windowDays int) ([]*event.Event, error) {
	startLocal := midnight(c.now().In(c.loc))
	endLocal := startLocal.AddDate(0, 0, windowDays)

	logger.Info("fetching events", logger.Fields{
		"start": startLocal.Format("2006-01-02"),
		"end":   endLocal.Format("2006-01-02"),
		"tz":    c.loc.String(),
	})

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", c.cfg.PageLimit))
	params.Set("startDate", startLocal.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("endDate", endLocal.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("sortKey", "eventDate")
	params.Set("sortAscending", "true")

	var results []*event.Event
	pageNum := 1

	for {
		page, err := c.fetchPage(params)
		if err != nil {
			logger.Error("page fetch failed; keeping partial results", logger.Fields{
				"page":        pageNum,
				"accumulated": len(results),
			}, err)
			return results, err
		}

		if len(page.Data) == 0 {
			logger.Info("no more data in response", logger.Fields{"page": pageNum})
			break
		}

		for _, rec := range page.Data {
			evt, err := c.normalize(rec)
			if err != nil {
				logger.Error("skipping malformed record", logger.Fields{
					"event_id": rec.ID,
					"page":     pageNum,
				}, err)
				continue
			}
			results = append(results, evt)
		}

		logger.Info("processed page", logger.Fields{
			"page":    pageNum,
			"records": len(page.Data),
		})
		pageNum++

		if page.NextKey == "" {
			logger.Info("reached end of pagination", nil)
			break
		}
		params.Set("nextKey", page.NextKey)
	}

	return results, nil
}

func (c *Client) fetchPage(params url.Values) (*pageResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL+eventsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	req.Header.Set("accept", "*/*")
	req.Header.Set("client-id", c.cfg.ClientID)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing JSON response: %w", err)
	}
	return &page, nil
}

// normalize converts a raw API record into a canonical Event. Timestamps
// are converted from UTC to the reference timezone here, once, at
// ingestion time.
func (c *Client) normalize(rec Record) (*event.Event, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("record has no id")
	}

	start, err := event.ParseAPITimestamp(rec.EventDate)
	if err != nil {
		return nil, fmt.Errorf("event date: %w", err)
	}
	end, err := event.ParseAPITimestamp(rec.EventEndDate)
	if err != nil {
		return nil, fmt.Errorf("event end date: %w", err)
	}

	return &event.Event{
		EventID:    rec.ID,
		Name:       rec.Name,
		GameSystem: rec.GameSystemName,
		StartDate:  event.FormatDate(start, c.loc),
		EndDate:    event.FormatDate(end, c.loc),
		StartTime:  event.FormatClock(start, c.loc),
		EndTime:    event.FormatClock(end, c.loc),
		Location:   event.JoinParts(rec.City, rec.State, rec.Country),
		Street:     event.JoinParts(rec.StreetNum, rec.StreetName),
		City:       rec.City,
		State:      rec.State,
		Country:    rec.Country,
		OwnerName:  event.JoinParts(rec.OwnerFirstName, rec.OwnerLastName),
		ImgURL:     rec.PhotoURL,
		EventLink:  event.LinkFor(rec.ID),
	}, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
