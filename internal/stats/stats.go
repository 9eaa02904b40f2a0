package stats

import (
	"math"
	"time"

	"github.com/conorfennell/flashwise/internal/domain"
	"github.com/conorfennell/flashwise/internal/srs"
)

// MasteredInterval is the interval, in days, beyond which a card counts as mastered.
const MasteredInterval = 21

// Overview summarizes a collection.
type Overview struct {
	TotalDecks        int     `json:"totalDecks"`
	TotalCards        int     `json:"totalCards"`
	DueToday          int     `json:"dueToday"`
	MasteredCards     int     `json:"masteredCards"`
	MasteryPercentage float64 `json:"masteryPercentage"`
}

// Mastery buckets cards by interval.
type Mastery struct {
	Mastered int `json:"mastered"` // interval > MasteredInterval
	Learning int `json:"learning"` // 1..MasteredInterval
	New      int `json:"new"`      // interval 0: new or just reset
}

// Summarize computes the overview for decks and cards as of now.
func Summarize(decks []domain.Deck, cards []domain.Card, now time.Time) Overview {
	o := Overview{
		TotalDecks: len(decks),
		TotalCards: len(cards),
		DueToday:   srs.CountDue(cards, now, ""),
	}
	for _, c := range cards {
		if c.Interval > MasteredInterval {
			o.MasteredCards++
		}
	}
	if o.TotalCards > 0 {
		pct := float64(o.MasteredCards) / float64(o.TotalCards) * 100
		o.MasteryPercentage = math.Round(pct*10) / 10
	}
	return o
}

// Distribution counts cards per mastery bucket.
func Distribution(cards []domain.Card) Mastery {
	var m Mastery
	for _, c := range cards {
		switch {
		case c.Interval > MasteredInterval:
			m.Mastered++
		case c.Interval > 0:
			m.Learning++
		default:
			m.New++
		}
	}
	return m
}
