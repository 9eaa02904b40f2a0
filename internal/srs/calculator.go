// Package srs implements the spaced-repetition scheduler: computing a card's
// next interval, ease factor and due date from a review, and selecting the
// cards that are due on a given day.
package srs

import (
	"math"
	"time"

	"github.com/conorfennell/flashwise/internal/domain"
)

const (
	// InitialEaseFactor is the ease factor of a card that was never reviewed.
	InitialEaseFactor = 2.5
	// MinEaseFactor is the floor the ease factor never drops below.
	MinEaseFactor     = 1.3
	// EasePenalty is subtracted from the ease factor on every failed review.
	EasePenalty       = 0.2
)

// State is the part of a card the scheduler reads.
type State struct {
	Interval   int
	EaseFactor float64
	History    []domain.ReviewEntry
}

// Update is the partial card produced by a review. Callers merge it into the
// stored card with Apply.
type Update struct {
	Interval   int
	EaseFactor float64
	DueDate    domain.Date
	History    []domain.ReviewEntry
	UpdatedAt  time.Time
}

// StateOf extracts the scheduling state of a card.
func StateOf(card domain.Card) State {
	return State{
		Interval:   card.Interval,
		EaseFactor: card.EaseFactor,
		History:    card.History,
	}
}

// NextState calculates the scheduling state that follows a review answered
// with response at now. Interval math is done on now's calendar day.
//
// Known cards step 0 -> 1 -> 6 days and then grow geometrically by the ease
// factor, which stays unchanged. Any other response resets the interval to one
// day and lowers the ease factor by EasePenalty, never below MinEaseFactor.
// Callers must pass a valid response; see domain.Response.IsValid.
func NextState(current State, response domain.Response, now time.Time) Update {
	today := domain.DateOf(now)

	var interval int
	ease := current.EaseFactor

	if response == domain.Know {
		switch current.Interval {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int(math.Round(float64(current.Interval) * ease))
		}
	} else {
		interval = 1
		ease = math.Max(MinEaseFactor, ease-EasePenalty)
	}

	history := make([]domain.ReviewEntry, len(current.History), len(current.History)+1)
	copy(history, current.History)
	history = append(history, domain.ReviewEntry{Date: today, Response: response})

	return Update{
		Interval:   interval,
		EaseFactor: ease,
		DueDate:    today.AddDays(interval),
		History:    history,
		UpdatedAt:  now,
	}
}

// Apply merges u into card and returns the result. card is not modified.
func (u Update) Apply(card domain.Card) domain.Card {
	card.Interval = u.Interval
	card.EaseFactor = u.EaseFactor
	card.DueDate = u.DueDate
	card.History = u.History
	card.UpdatedAt = u.UpdatedAt
	return card
}

// Review is NextState followed by Apply.
func Review(card domain.Card, response domain.Response, now time.Time) domain.Card {
	return NextState(StateOf(card), response, now).Apply(card)
}
