// Package study manages decks and cards on top of a Repository and records
// reviews through the srs scheduler.
package study

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/conorfennell/flashwise/internal/domain"
	"github.com/conorfennell/flashwise/internal/srs"
	"github.com/conorfennell/flashwise/internal/stats"
)

// Repository persists whole collections of decks and cards.
type Repository interface {
	LoadDecks(ctx context.Context) ([]domain.Deck, error)
	SaveDecks(ctx context.Context, decks []domain.Deck) error
	LoadCards(ctx context.Context) ([]domain.Card, error)
	SaveCards(ctx context.Context, cards []domain.Card) error
	// Save replaces both collections atomically.
	Save(ctx context.Context, decks []domain.Deck, cards []domain.Card) error
}

// Store is the deck and card service. Mutations are serialized, so two
// reviews of the same card never read the same prior state.
type Store struct {
	repo     Repository
	now      func() time.Time
	newID    func() string
	validate *validator.Validate

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the store's notion of "now".
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator for new decks and cards.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates a Store backed by repo.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		now:      time.Now,
		newID:    uuid.NewString,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeckInput holds the fields of a new deck.
type DeckInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Source      string `json:"source"`
}

// DeckUpdate holds the deck fields to change; nil fields are left alone.
type DeckUpdate struct {
	Name        *string `json:"name" validate:"omitnil,required,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
}

// CardInput holds the fields of a new card.
type CardInput struct {
	Front       string `json:"front" validate:"required"`
	Back        string `json:"back" validate:"required"`
	ContentHash string `json:"-"`
}

// CardUpdate holds the card fields to change; nil fields are left alone.
type CardUpdate struct {
	Front *string `json:"front" validate:"omitnil,required"`
	Back  *string `json:"back" validate:"omitnil,required"`
}

// AddDeck creates a deck.
func (s *Store) AddDeck(ctx context.Context, in DeckInput) (domain.Deck, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Deck{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.repo.LoadDecks(ctx)
	if err != nil {
		return domain.Deck{}, err
	}
	now := s.now()
	deck := domain.Deck{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Source:      in.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.SaveDecks(ctx, append(decks, deck)); err != nil {
		return domain.Deck{}, err
	}
	return deck, nil
}

// Decks returns all decks.
func (s *Store) Decks(ctx context.Context) ([]domain.Deck, error) {
	return s.repo.LoadDecks(ctx)
}

// Deck returns the deck with the given id.
func (s *Store) Deck(ctx context.Context, id string) (domain.Deck, error) {
	decks, err := s.repo.LoadDecks(ctx)
	if err != nil {
		return domain.Deck{}, err
	}
	i, err := findDeck(decks, id)
	if err != nil {
		return domain.Deck{}, err
	}
	return decks[i], nil
}

// UpdateDeck changes a deck's name or description.
func (s *Store) UpdateDeck(ctx context.Context, id string, upd DeckUpdate) (domain.Deck, error) {
	if err := s.validate.Struct(upd); err != nil {
		return domain.Deck{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.repo.LoadDecks(ctx)
	if err != nil {
		return domain.Deck{}, err
	}
	i, err := findDeck(decks, id)
	if err != nil {
		return domain.Deck{}, err
	}
	if upd.Name != nil {
		decks[i].Name = *upd.Name
	}
	if upd.Description != nil {
		decks[i].Description = *upd.Description
	}
	decks[i].UpdatedAt = s.now()

	if err := s.repo.SaveDecks(ctx, decks); err != nil {
		return domain.Deck{}, err
	}
	return decks[i], nil
}

// DeleteDeck removes a deck together with its cards.
func (s *Store) DeleteDeck(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.repo.LoadDecks(ctx)
	if err != nil {
		return err
	}
	i, err := findDeck(decks, id)
	if err != nil {
		return err
	}
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(cards, func(c domain.Card) bool { return c.DeckID == id })
	return s.repo.Save(ctx, slices.Delete(decks, i, i+1), kept)
}

// AddCard creates a new card in a deck, due today.
func (s *Store) AddCard(ctx context.Context, deckID string, in CardInput) (domain.Card, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.repo.LoadDecks(ctx)
	if err != nil {
		return domain.Card{}, err
	}
	if _, err := findDeck(decks, deckID); err != nil {
		return domain.Card{}, err
	}
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return domain.Card{}, err
	}

	card := s.newCard(deckID, in, s.now())
	if err := s.repo.SaveCards(ctx, append(cards, card)); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

func (s *Store) newCard(deckID string, in CardInput, now time.Time) domain.Card {
	return domain.Card{
		ID:          s.newID(),
		DeckID:      deckID,
		Front:       in.Front,
		Back:        in.Back,
		ContentHash: in.ContentHash,
		Interval:    0,
		EaseFactor:  srs.InitialEaseFactor,
		DueDate:     domain.DateOf(now),
		History:     []domain.ReviewEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ImportReport says what ImportCards changed in a deck.
type ImportReport struct {
	Added    int
	Removed  int
	Rejected []error
}

// ImportCards makes a deck's imported cards match inputs in a single
// load-and-save. Inputs are keyed by ContentHash: unknown hashes become new
// cards, known hashes keep their card and its scheduling, and imported cards
// whose hash is missing from inputs are removed. Cards without a hash were
// added by hand and are never touched. Inputs that fail validation are
// reported in Rejected and skipped.
func (s *Store) ImportCards(ctx context.Context, deckID string, inputs []CardInput) (ImportReport, error) {
	var report ImportReport

	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.repo.LoadDecks(ctx)
	if err != nil {
		return report, err
	}
	if _, err := findDeck(decks, deckID); err != nil {
		return report, err
	}
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return report, err
	}

	wanted := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		wanted[in.ContentHash] = true
	}
	known := make(map[string]bool)
	cards = slices.DeleteFunc(cards, func(c domain.Card) bool {
		if c.DeckID != deckID || c.ContentHash == "" {
			return false
		}
		if wanted[c.ContentHash] {
			known[c.ContentHash] = true
			return false
		}
		report.Removed++
		return true
	})

	now := s.now()
	for _, in := range inputs {
		if in.ContentHash == "" || known[in.ContentHash] {
			continue
		}
		if err := s.validate.Struct(in); err != nil {
			report.Rejected = append(report.Rejected, fmt.Errorf("card %q: %w", in.Front, err))
			continue
		}
		known[in.ContentHash] = true
		cards = append(cards, s.newCard(deckID, in, now))
		report.Added++
	}

	if report.Added == 0 && report.Removed == 0 {
		return report, nil
	}
	if err := s.repo.SaveCards(ctx, cards); err != nil {
		return ImportReport{}, err
	}
	return report, nil
}

// Card returns the card with the given id.
func (s *Store) Card(ctx context.Context, id string) (domain.Card, error) {
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return domain.Card{}, err
	}
	i, err := findCard(cards, id)
	if err != nil {
		return domain.Card{}, err
	}
	return cards[i], nil
}

// CardsByDeck returns a deck's cards in creation order.
func (s *Store) CardsByDeck(ctx context.Context, deckID string) ([]domain.Card, error) {
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Card, 0)
	for _, c := range cards {
		if c.DeckID == deckID {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Card) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// UpdateCard edits a card's content. Scheduling state is left alone.
func (s *Store) UpdateCard(ctx context.Context, id string, upd CardUpdate) (domain.Card, error) {
	if err := s.validate.Struct(upd); err != nil {
		return domain.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return domain.Card{}, err
	}
	i, err := findCard(cards, id)
	if err != nil {
		return domain.Card{}, err
	}
	if upd.Front != nil {
		cards[i].Front = *upd.Front
	}
	if upd.Back != nil {
		cards[i].Back = *upd.Back
	}
	cards[i].UpdatedAt = s.now()

	if err := s.repo.SaveCards(ctx, cards); err != nil {
		return domain.Card{}, err
	}
	return cards[i], nil
}

// DeleteCard removes a card.
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return err
	}
	i, err := findCard(cards, id)
	if err != nil {
		return err
	}
	return s.repo.SaveCards(ctx, slices.Delete(cards, i, i+1))
}

// RecordReview schedules a card's next review from the user's response and
// returns the updated card.
func (s *Store) RecordReview(ctx context.Context, cardID string, response domain.Response) (domain.Card, error) {
	if !response.IsValid() {
		return domain.Card{}, fmt.Errorf("%w: %q", domain.ErrInvalidResponse, string(response))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return domain.Card{}, err
	}
	i, err := findCard(cards, cardID)
	if err != nil {
		return domain.Card{}, err
	}

	cards[i] = srs.Review(cards[i], response, s.now())
	if err := s.repo.SaveCards(ctx, cards); err != nil {
		return domain.Card{}, err
	}
	return cards[i], nil
}

// DueCards returns the review queue for today, most overdue first. An empty
// deckID selects across all decks.
func (s *Store) DueCards(ctx context.Context, deckID string) ([]domain.Card, error) {
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return nil, err
	}
	return srs.SelectDue(cards, s.now(), deckID), nil
}

// DueCount returns the number of cards DueCards would return.
func (s *Store) DueCount(ctx context.Context, deckID string) (int, error) {
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return 0, err
	}
	return srs.CountDue(cards, s.now(), deckID), nil
}

// Overview summarizes the whole collection.
func (s *Store) Overview(ctx context.Context) (stats.Overview, error) {
	decks, err := s.repo.LoadDecks(ctx)
	if err != nil {
		return stats.Overview{}, err
	}
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return stats.Overview{}, err
	}
	return stats.Summarize(decks, cards, s.now()), nil
}

// Mastery returns the mastery distribution of all cards.
func (s *Store) Mastery(ctx context.Context) (stats.Mastery, error) {
	cards, err := s.repo.LoadCards(ctx)
	if err != nil {
		return stats.Mastery{}, err
	}
	return stats.Distribution(cards), nil
}

func findDeck(decks []domain.Deck, id string) (int, error) {
	i := slices.IndexFunc(decks, func(d domain.Deck) bool { return d.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: deck %s", domain.ErrNotFound, id)
	}
	return i, nil
}

func findCard(cards []domain.Card, id string) (int, error) {
	i := slices.IndexFunc(cards, func(c domain.Card) bool { return c.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("%w: card %s", domain.ErrNotFound, id)
	}
	return i, nil
}
