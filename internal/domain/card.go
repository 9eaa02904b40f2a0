package domain

import "time"

// Card is a single flashcard together with its scheduling state.
type Card struct {
	ID     string `json:"id"`
	DeckID string `json:"deckId"`
	Front  string `json:"front"`
	Back   string `json:"back"`
	// ContentHash is set for cards created by the importer and identifies
	// the source block the card was built from.
	ContentHash string `json:"contentHash,omitempty"`

	Interval   int           `json:"interval"` // days
	EaseFactor float64       `json:"easeFactor"`
	DueDate    Date          `json:"dueDate"`
	History    []ReviewEntry `json:"history"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewEntry records a single completed review of a card.
type ReviewEntry struct {
	Date     Date     `json:"date"`
	Response Response `json:"response"`
}

// Deck groups cards. A deck with a Source is kept in sync with the
// markdown files found at that local path or git URL.
type Deck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Draft is the question-answer-context content parsed from a source file,
// before it becomes a Card.
type Draft struct {
	Question string
	Answer   string
	Context  string
}
