package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/conorfennell/flashwise/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; a single connection also keeps
	// ":memory:" databases from splitting across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// LoadDecks returns every deck, oldest first.
func (db *DB) LoadDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, source, created_at, updated_at
		FROM decks ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}
	defer rows.Close()

	decks := []domain.Deck{}
	for rows.Next() {
		var d domain.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Source, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}
	return decks, nil
}

// SaveDecks replaces the stored decks with decks.
func (db *DB) SaveDecks(ctx context.Context, decks []domain.Deck) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		return saveDecks(ctx, tx, decks)
	})
}

// Save replaces both decks and cards in one transaction, so a failure
// leaves neither collection changed.
func (db *DB) Save(ctx context.Context, decks []domain.Deck, cards []domain.Card) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if err := saveCards(ctx, tx, cards); err != nil {
			return err
		}
		return saveDecks(ctx, tx, decks)
	})
}

func saveDecks(ctx context.Context, tx *sql.Tx, decks []domain.Deck) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM decks`); err != nil {
		return fmt.Errorf("failed to clear decks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decks (id, name, description, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare deck insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decks {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Name, d.Description, d.Source, d.CreatedAt.UTC(), d.UpdatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert deck %s: %w", d.ID, err)
		}
	}
	return nil
}

// LoadCards returns every card with its review history, oldest first.
func (db *DB) LoadCards(ctx context.Context) ([]domain.Card, error) {
	history, err := db.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, deck_id, front, back, content_hash, interval_days, ease_factor, due_date, created_at, updated_at
		FROM cards ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(
			&c.ID,
			&c.DeckID,
			&c.Front,
			&c.Back,
			&c.ContentHash,
			&c.Interval,
			&c.EaseFactor,
			&c.DueDate,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		c.History = history[c.ID]
		if c.History == nil {
			c.History = []domain.ReviewEntry{}
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	return cards, nil
}

func (db *DB) loadHistory(ctx context.Context) (map[string][]domain.ReviewEntry, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT card_id, review_date, response
		FROM reviews ORDER BY card_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load review history: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]domain.ReviewEntry)
	for rows.Next() {
		var (
			cardID   string
			response string
			entry    domain.ReviewEntry
		)
		if err := rows.Scan(&cardID, &entry.Date, &response); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		entry.Response = domain.Response(response)
		history[cardID] = append(history[cardID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load review history: %w", err)
	}
	return history, nil
}

// SaveCards replaces the stored cards and their histories with cards.
func (db *DB) SaveCards(ctx context.Context, cards []domain.Card) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		return saveCards(ctx, tx, cards)
	})
}

func saveCards(ctx context.Context, tx *sql.Tx, cards []domain.Card) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews`); err != nil {
		return fmt.Errorf("failed to clear review history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}

	cardStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (id, deck_id, front, back, content_hash, interval_days, ease_factor, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare card insert: %w", err)
	}
	defer cardStmt.Close()

	reviewStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reviews (card_id, seq, review_date, response)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare review insert: %w", err)
	}
	defer reviewStmt.Close()

	for _, c := range cards {
		if _, err := cardStmt.ExecContext(ctx,
			c.ID,
			c.DeckID,
			c.Front,
			c.Back,
			c.ContentHash,
			c.Interval,
			c.EaseFactor,
			c.DueDate,
			c.CreatedAt.UTC(),
			c.UpdatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
		}
		for seq, entry := range c.History {
			if _, err := reviewStmt.ExecContext(ctx, c.ID, seq, entry.Date, string(entry.Response)); err != nil {
				return fmt.Errorf("failed to insert review %d for card %s: %w", seq, c.ID, err)
			}
		}
	}
	return nil
}

func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
