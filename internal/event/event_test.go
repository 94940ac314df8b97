package event

import (
	"reflect"
	"testing"
)

func TestJoinParts(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name:  "all present",
			parts: []string{"Las Vegas", "NV", "US"},
			want:  "Las Vegas NV US",
		},
		{
			name:  "missing middle",
			parts: []string{"Las Vegas", "", "US"},
			want:  "Las Vegas US",
		},
		{
			name:  "whitespace only",
			parts: []string{"  ", ""},
			want:  "",
		},
		{
			name:  "trims edges",
			parts: []string{" 350 ", " Fifth Ave "},
			want:  "350 Fifth Ave",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinParts(tt.parts...); got != tt.want {
				t.Errorf("JoinParts(%v) = %q, want %q", tt.parts, got, tt.want)
			}
		})
	}
}

func TestLinkFor(t *testing.T) {
	got := LinkFor("42RLNLGQCD")
	want := "https://bestcoastpairings.com/event/42RLNLGQCD"
	if got != want {
		t.Errorf("LinkFor() = %q, want %q", got, want)
	}
}

func TestTitle(t *testing.T) {
	e := &Event{Name: "Winter Open", GameSystem: "Warhammer 40k"}
	if got := e.Title(); got != "Winter Open (Warhammer 40k)" {
		t.Errorf("Title() = %q", got)
	}
}

func TestRowRoundTrip(t *testing.T) {
	e := &Event{
		EventID:    "ABC123",
		Name:       "Winter Open",
		GameSystem: "Warhammer 40k",
		StartDate:  "01/06/2024",
		EndDate:    "02/06/2024",
		StartTime:  "10:30 AM",
		EndTime:    "6:00 PM",
		Location:   "Las Vegas NV US",
		Street:     "350 Fifth Ave",
		City:       "Las Vegas",
		State:      "NV",
		Country:    "US",
		OwnerName:  "Jane Doe",
		ImgURL:     "https://cdn.example.com/img.png",
		EventLink:  LinkFor("ABC123"),
	}

	row := e.Row()
	if len(row) != len(Header()) {
		t.Fatalf("row has %d columns, header has %d", len(row), len(Header()))
	}

	got, err := FromRow(row)
	if err != nil {
		t.Fatalf("FromRow() error: %v", err)
	}
	if !reflect.DeepEqual(got, e) {
		t.Errorf("FromRow(Row()) = %+v, want %+v", got, e)
	}
}

func TestFromRowWrongWidth(t *testing.T) {
	if _, err := FromRow([]string{"only", "three", "cols"}); err == nil {
		t.Error("expected error for short row")
	}
}
