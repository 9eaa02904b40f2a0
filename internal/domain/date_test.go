package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	testCases := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{"midnight", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{"late evening", time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC), "2024-03-01"},
		{"uses the instant's own zone", time.Date(2024, 3, 2, 1, 0, 0, 0, loc), "2024-03-02"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DateOf(tc.instant).String(); got != tc.expected {
				t.Errorf("Expected %s, but got %s", tc.expected, got)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	d := MustParseDate("2024-02-27")
	if got := d.AddDays(3).String(); got != "2024-03-01" {
		t.Errorf("Expected leap-year rollover to 2024-03-01, but got %s", got)
	}
	if got := d.AddDays(-27).String(); got != "2024-01-31" {
		t.Errorf("Expected 2024-01-31, but got %s", got)
	}
	if got := d.DaysUntil(d.AddDays(22)); got != 22 {
		t.Errorf("Expected 22 days, but got %d", got)
	}
}

func TestCompare(t *testing.T) {
	a := MustParseDate("2024-01-01")
	b := MustParseDate("2024-01-02")

	if !a.Before(b) || a.After(b) || a.Compare(b) != -1 {
		t.Error("Expected 2024-01-01 to sort before 2024-01-02")
	}
	if !a.Equal(MustParseDate("2024-01-01")) || a.Compare(a) != 0 {
		t.Error("Expected equal dates to compare equal")
	}
}

func TestParseDateRejectsMalformedInput(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "01/02/2024", "2024-01-01T10:00:00Z"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Expected ErrInvalidDate for %q, but got %v", s, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	entry := ReviewEntry{Date: MustParseDate("2024-05-06"), Response: DontKnow}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal returned an unexpected error: %v", err)
	}
	expected := `{"date":"2024-05-06","response":"dont_know"}`
	if string(data) != expected {
		t.Fatalf("Expected %s, but got %s", expected, data)
	}

	var decoded ReviewEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned an unexpected error: %v", err)
	}
	if decoded != entry {
		t.Errorf("Expected %+v, but got %+v", entry, decoded)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2023-12-31"); err != nil {
		t.Fatalf("Scan returned an unexpected error: %v", err)
	}
	if d.String() != "2023-12-31" {
		t.Errorf("Expected 2023-12-31, but got %s", d)
	}
	if err := d.Scan(42); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate scanning an int, but got %v", err)
	}
}

func TestParseResponse(t *testing.T) {
	for _, s := range []string{"know", "dont_know"} {
		if _, err := ParseResponse(s); err != nil {
			t.Errorf("Expected %q to parse, but got %v", s, err)
		}
	}
	for _, s := range []string{"", "Know", "maybe"} {
		if _, err := ParseResponse(s); !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("Expected ErrInvalidResponse for %q, but got %v", s, err)
		}
	}

	var r Response
	if err := json.Unmarshal([]byte(`"easy"`), &r); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Expected JSON decoding to reject unknown responses, but got %v", err)
	}
}
