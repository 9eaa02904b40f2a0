package stats

import (
	"testing"
	"time"

	"github.com/conorfennell/flashwise/internal/domain"
)

func card(interval int, due string) domain.Card {
	return domain.Card{Interval: interval, EaseFactor: 2.5, DueDate: domain.MustParseDate(due)}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	decks := []domain.Deck{{ID: "a"}, {ID: "b"}}
	cards := []domain.Card{
		card(0, "2024-06-15"),
		card(22, "2024-07-01"),
		card(21, "2024-06-10"),
	}

	o := Summarize(decks, cards, now)

	if o.TotalDecks != 2 || o.TotalCards != 3 {
		t.Errorf("Expected 2 decks and 3 cards, but got %d and %d", o.TotalDecks, o.TotalCards)
	}
	if o.DueToday != 2 {
		t.Errorf("Expected 2 cards due today, but got %d", o.DueToday)
	}
	if o.MasteredCards != 1 {
		t.Errorf("Expected 1 mastered card, but got %d", o.MasteredCards)
	}
	if o.MasteryPercentage != 33.3 {
		t.Errorf("Expected mastery of 33.3%%, but got %.2f", o.MasteryPercentage)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	o := Summarize(nil, nil, time.Now())
	if o != (Overview{}) {
		t.Errorf("Expected a zero overview, but got %+v", o)
	}
}

func TestDistribution(t *testing.T) {
	cards := []domain.Card{
		card(0, "2024-01-01"),
		card(0, "2024-01-01"),
		card(1, "2024-01-01"),
		card(21, "2024-01-01"),
		card(22, "2024-01-01"),
	}

	m := Distribution(cards)

	expected := Mastery{Mastered: 1, Learning: 2, New: 2}
	if m != expected {
		t.Errorf("Expected %+v, but got %+v", expected, m)
	}
	if m.Mastered+m.Learning+m.New != len(cards) {
		t.Error("Expected every card to land in exactly one bucket")
	}
}
