package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/flashwise/internal/domain"
	"github.com/conorfennell/flashwise/internal/importer"
	"github.com/conorfennell/flashwise/internal/stats"
	"github.com/conorfennell/flashwise/internal/study"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	store    *study.Store
	importer *importer.Importer
	router   *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(store *study.Store, im *importer.Importer) *Server {
	s := &Server{
		store:    store,
		importer: im,
		router:   http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /decks", s.handleListDecks())
	s.router.HandleFunc("POST /decks", s.handleAddDeck())
	s.router.HandleFunc("GET /decks/{id}", s.handleGetDeck())
	s.router.HandleFunc("PATCH /decks/{id}", s.handleUpdateDeck())
	s.router.HandleFunc("DELETE /decks/{id}", s.handleDeleteDeck())

	s.router.HandleFunc("GET /decks/{id}/cards", s.handleListCards())
	s.router.HandleFunc("POST /decks/{id}/cards", s.handleAddCard())
	s.router.HandleFunc("GET /cards/{id}", s.handleGetCard())
	s.router.HandleFunc("PATCH /cards/{id}", s.handleUpdateCard())
	s.router.HandleFunc("DELETE /cards/{id}", s.handleDeleteCard())

	s.router.HandleFunc("POST /cards/{id}/review", s.handlePostReview())
	s.router.HandleFunc("GET /review/due", s.handleGetDue())
	s.router.HandleFunc("GET /review/next", s.handleGetNextReview())

	s.router.HandleFunc("GET /stats", s.handleGetStats())
	s.router.HandleFunc("POST /sync", s.handlePostSync())
}

func (s *Server) handleListDecks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decks, err := s.store.Decks(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, decks)
	}
}

func (s *Server) handleAddDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in study.DeckInput
		if !decode(w, r, &in) {
			return
		}
		deck, err := s.store.AddDeck(r.Context(), in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, deck)
	}
}

// deckView is a deck with its due count, as shown on the deck page.
type deckView struct {
	domain.Deck
	DueCount int `json:"dueCount"`
}

func (s *Server) handleGetDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		deck, err := s.store.Deck(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		due, err := s.store.DueCount(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deckView{Deck: deck, DueCount: due})
	}
}

func (s *Server) handleUpdateDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd study.DeckUpdate
		if !decode(w, r, &upd) {
			return
		}
		deck, err := s.store.UpdateDeck(r.Context(), r.PathValue("id"), upd)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deck)
	}
}

func (s *Server) handleDeleteDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteDeck(r.Context(), r.PathValue("id")); err != nil {
			s.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.store.Deck(r.Context(), id); err != nil {
			s.fail(w, r, err)
			return
		}
		cards, err := s.store.CardsByDeck(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

func (s *Server) handleAddCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in study.CardInput
		if !decode(w, r, &in) {
			return
		}
		card, err := s.store.AddCard(r.Context(), r.PathValue("id"), in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, card)
	}
}

func (s *Server) handleGetCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.store.Card(r.Context(), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func (s *Server) handleUpdateCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd study.CardUpdate
		if !decode(w, r, &upd) {
			return
		}
		card, err := s.store.UpdateCard(r.Context(), r.PathValue("id"), upd)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func (s *Server) handleDeleteCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteCard(r.Context(), r.PathValue("id")); err != nil {
			s.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type reviewRequest struct {
	Response domain.Response `json:"response"`
}

// handlePostReview records a review and returns the rescheduled card.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if !decode(w, r, &req) {
			return
		}
		card, err := s.store.RecordReview(r.Context(), r.PathValue("id"), req.Response)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

type dueResponse struct {
	Count int           `json:"count"`
	Cards []domain.Card `json:"cards"`
}

// handleGetDue returns today's review queue, optionally for one deck.
func (s *Server) handleGetDue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := s.store.DueCards(r.Context(), r.URL.Query().Get("deck"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dueResponse{Count: len(cards), Cards: cards})
	}
}

// handleGetNextReview returns the next card to review, or 204 when the
// queue is empty.
func (s *Server) handleGetNextReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := s.store.DueCards(r.Context(), r.URL.Query().Get("deck"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if len(cards) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, cards[0])
	}
}

type statsResponse struct {
	Overview stats.Overview `json:"overview"`
	Mastery  stats.Mastery  `json:"mastery"`
}

func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := s.store.Overview(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		mastery, err := s.store.Mastery(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{Overview: overview, Mastery: mastery})
	}
}

// handlePostSync triggers a sync of every sourced deck and reports the
// results. Decks that failed are logged and left out of the results.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := s.importer.SyncAll(r.Context())
		if err != nil && len(results) == 0 {
			s.fail(w, r, err)
			return
		}
		if results == nil {
			results = []importer.Result{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// fail maps err to a status code and writes it as JSON.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidResponse), errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
