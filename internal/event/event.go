package event

import (
	"fmt"
	"strings"
)

// eventLinkTemplate derives the public event page from the event id.
const eventLinkTemplate = "https://bestcoastpairings.com/event/%s"

// Event represents one tabletop gaming event fetched from the BCP API,
// normalized for display and posting. Immutable once created; EventID is
// the sole dedup key across runs.
type Event struct {
	EventID    string `json:"event_id"`
	Name       string `json:"name"`
	GameSystem string `json:"game_system"`
	StartDate  string `json:"start_date"` // dd/mm/yyyy
	EndDate    string `json:"end_date"`   // dd/mm/yyyy
	StartTime  string `json:"start_time"` // h:mm AM/PM, reference tz
	EndTime    string `json:"end_time"`   // h:mm AM/PM, reference tz
	Location   string `json:"location"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	OwnerName  string `json:"owner_name"`
	ImgURL     string `json:"img_url"`
	EventLink  string `json:"event_link"`
}

// LinkFor returns the public event page URL for an event id.
func LinkFor(eventID string) string {
	return fmt.Sprintf(eventLinkTemplate, eventID)
}

// JoinParts trims and concatenates sub-fields with single spaces, dropping
// empties so an absent sub-field never leaves stray whitespace or a literal
// "None" in the output.
func JoinParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, " ")
}

// Header returns the column names of the tabular store, one column per
// Event attribute, in persistence order.
func Header() []string {
	return []string{
		"event_id", "name", "game_system",
		"start_date", "end_date", "start_time", "end_time",
		"location", "street", "city", "state", "country",
		"owner_name", "img_url", "event_link",
	}
}

// Row renders the event as a store row in Header order.
func (e *Event) Row() []string {
	return []string{
		e.EventID, e.Name, e.GameSystem,
		e.StartDate, e.EndDate, e.StartTime, e.EndTime,
		e.Location, e.Street, e.City, e.State, e.Country,
		e.OwnerName, e.ImgURL, e.EventLink,
	}
}

// FromRow rebuilds an event from a store row.
func FromRow(row []string) (*Event, error) {
	if len(row) != len(Header()) {
		return nil, fmt.Errorf("row has %d columns, want %d", len(row), len(Header()))
	}
	return &Event{
		EventID:    row[0],
		Name:       row[1],
		GameSystem: row[2],
		StartDate:  row[3],
		EndDate:    row[4],
		StartTime:  row[5],
		EndTime:    row[6],
		Location:   row[7],
		Street:     row[8],
		City:       row[9],
		State:      row[10],
		Country:    row[11],
		OwnerName:  row[12],
		ImgURL:     row[13],
		EventLink:  row[14],
	}, nil
}

// Title is the listing title used on the posting form.
func (e *Event) Title() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.GameSystem)
}
