package srs

import (
	"math"
	"testing"
	"time"

	"github.com/conorfennell/flashwise/internal/domain"
)

var day0 = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func newCard() domain.Card {
	return domain.Card{
		ID:         "card-1",
		DeckID:     "deck-1",
		Interval:   0,
		EaseFactor: InitialEaseFactor,
		DueDate:    domain.DateOf(day0),
	}
}

func TestNextStateKnow(t *testing.T) {
	testCases := []struct {
		name             string
		interval         int
		ease             float64
		expectedInterval int
	}{
		{"first success", 0, 2.5, 1},
		{"second success", 1, 2.5, 6},
		{"geometric growth", 6, 2.5, 15},
		{"rounds half away from zero", 3, 2.5, 8},
		{"rounds down", 7, 1.3, 9},
		{"low ease", 15, 1.3, 20},
		{"long interval", 100, 2.3, 230},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := NextState(State{Interval: tc.interval, EaseFactor: tc.ease}, domain.Know, day0)
			if u.Interval != tc.expectedInterval {
				t.Errorf("Expected interval %d, but got %d", tc.expectedInterval, u.Interval)
			}
			if u.EaseFactor != tc.ease {
				t.Errorf("Expected ease factor to stay %.2f, but got %.2f", tc.ease, u.EaseFactor)
			}
		})
	}
}

func TestNextStateDontKnow(t *testing.T) {
	testCases := []struct {
		name         string
		interval     int
		ease         float64
		expectedEase float64
	}{
		{"new card", 0, 2.5, 2.3},
		{"mature card loses its interval", 120, 2.5, 2.3},
		{"near the floor", 6, 1.4, 1.3},
		{"at the floor", 1, 1.3, 1.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := NextState(State{Interval: tc.interval, EaseFactor: tc.ease}, domain.DontKnow, day0)
			if u.Interval != 1 {
				t.Errorf("Expected interval to reset to 1, but got %d", u.Interval)
			}
			if math.Abs(u.EaseFactor-tc.expectedEase) > 1e-9 {
				t.Errorf("Expected ease factor %.2f, but got %.4f", tc.expectedEase, u.EaseFactor)
			}
		})
	}
}

func TestEaseFactorFloor(t *testing.T) {
	card := newCard()
	now := day0
	for i := 0; i < 20; i++ {
		card = Review(card, domain.DontKnow, now)
		if card.EaseFactor < MinEaseFactor {
			t.Fatalf("Expected ease factor to stay at or above %.1f, but got %.4f after %d failures", MinEaseFactor, card.EaseFactor, i+1)
		}
		now = now.AddDate(0, 0, 1)
	}
	if card.EaseFactor != MinEaseFactor {
		t.Errorf("Expected ease factor to settle at %.1f, but got %.4f", MinEaseFactor, card.EaseFactor)
	}
}

func TestDueDateIsReviewDayPlusInterval(t *testing.T) {
	// Time of day must not matter.
	late := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)
	u := NextState(State{Interval: 6, EaseFactor: 2.5}, domain.Know, late)

	expected := domain.MustParseDate("2024-06-30")
	if !u.DueDate.Equal(expected) {
		t.Errorf("Expected due date %s, but got %s", expected, u.DueDate)
	}
	if !u.UpdatedAt.Equal(late) {
		t.Errorf("Expected UpdatedAt to be the review instant %v, but got %v", late, u.UpdatedAt)
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	initial := []domain.ReviewEntry{{Date: domain.MustParseDate("2024-01-01"), Response: domain.Know}}
	state := State{Interval: 1, EaseFactor: 2.5, History: initial}

	responses := []domain.Response{domain.Know, domain.DontKnow, domain.Know}
	now := day0
	for _, r := range responses {
		u := NextState(state, r, now)
		state = State{Interval: u.Interval, EaseFactor: u.EaseFactor, History: u.History}
		now = now.AddDate(0, 0, u.Interval)
	}

	if len(state.History) != len(initial)+len(responses) {
		t.Fatalf("Expected %d history entries, but got %d", len(initial)+len(responses), len(state.History))
	}
	if state.History[0] != initial[0] {
		t.Errorf("Expected the existing entry to be kept, but got %+v", state.History[0])
	}
	for i, r := range responses {
		if got := state.History[i+1].Response; got != r {
			t.Errorf("Expected entry %d to record %s, but got %s", i+1, r, got)
		}
	}
	if got := state.History[1].Date; !got.Equal(domain.DateOf(day0)) {
		t.Errorf("Expected first new entry dated %s, but got %s", domain.DateOf(day0), got)
	}
}

func TestNextStateDoesNotMutateInput(t *testing.T) {
	history := make([]domain.ReviewEntry, 1, 4)
	history[0] = domain.ReviewEntry{Date: domain.MustParseDate("2024-01-01"), Response: domain.Know}
	state := State{Interval: 1, EaseFactor: 2.5, History: history}

	a := NextState(state, domain.Know, day0)
	b := NextState(state, domain.DontKnow, day0)

	if a.History[1].Response != domain.Know || b.History[1].Response != domain.DontKnow {
		t.Error("Expected each update to own its history slice")
	}
	if len(state.History) != 1 {
		t.Errorf("Expected input history to keep 1 entry, but got %d", len(state.History))
	}

	card := newCard()
	reviewed := Review(card, domain.Know, day0)
	if card.Interval != 0 || len(card.History) != 0 {
		t.Error("Expected Review to leave its input card unchanged")
	}
	if reviewed.ID != card.ID || reviewed.DeckID != card.DeckID {
		t.Error("Expected Review to keep the card's identity")
	}
}

func TestReviewScenario(t *testing.T) {
	card := newCard()
	steps := []struct {
		day              int
		response         domain.Response
		expectedInterval int
		expectedEase     float64
		expectedDueDay   int
	}{
		{0, domain.Know, 1, 2.5, 1},
		{1, domain.Know, 6, 2.5, 7},
		{7, domain.Know, 15, 2.5, 22},
		{22, domain.DontKnow, 1, 2.3, 23},
	}

	start := domain.DateOf(day0)
	for _, step := range steps {
		card = Review(card, step.response, day0.AddDate(0, 0, step.day))

		if card.Interval != step.expectedInterval {
			t.Errorf("Day %d: expected interval %d, but got %d", step.day, step.expectedInterval, card.Interval)
		}
		if math.Abs(card.EaseFactor-step.expectedEase) > 1e-9 {
			t.Errorf("Day %d: expected ease factor %.2f, but got %.4f", step.day, step.expectedEase, card.EaseFactor)
		}
		if expected := start.AddDays(step.expectedDueDay); !card.DueDate.Equal(expected) {
			t.Errorf("Day %d: expected due date %s, but got %s", step.day, expected, card.DueDate)
		}
	}
	if len(card.History) != len(steps) {
		t.Errorf("Expected %d history entries, but got %d", len(steps), len(card.History))
	}
}
