package srs

import (
	"slices"
	"time"

	"github.com/conorfennell/flashwise/internal/domain"
)

// IsDue reports whether card is due on now's calendar day. Overdue cards
// stay due until they are reviewed.
func IsDue(card domain.Card, now time.Time) bool {
	return !card.DueDate.After(domain.DateOf(now))
}

// SelectDue returns the cards due on now's calendar day, oldest due date
// first. Cards sharing a due date keep their input order. A non-empty deckID
// restricts the result to that deck.
func SelectDue(cards []domain.Card, now time.Time, deckID string) []domain.Card {
	due := make([]domain.Card, 0)
	for _, card := range cards {
		if matches(card, now, deckID) {
			due = append(due, card)
		}
	}
	slices.SortStableFunc(due, func(a, b domain.Card) int {
		return a.DueDate.Compare(b.DueDate)
	})
	return due
}

// CountDue returns len(SelectDue(cards, now, deckID)) without sorting.
func CountDue(cards []domain.Card, now time.Time, deckID string) int {
	n := 0
	for _, card := range cards {
		if matches(card, now, deckID) {
			n++
		}
	}
	return n
}

func matches(card domain.Card, now time.Time, deckID string) bool {
	if deckID != "" && card.DeckID != deckID {
		return false
	}
	return IsDue(card, now)
}
