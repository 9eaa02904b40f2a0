package storage

const schema = `
-- Decks group cards. A deck with a source is imported from markdown files.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Cards carry their scheduling state. due_date is a YYYY-MM-DD day.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    content_hash TEXT NOT NULL DEFAULT '',
    interval_days INTEGER NOT NULL DEFAULT 0,
    ease_factor REAL NOT NULL,
    due_date TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    FOREIGN KEY(deck_id) REFERENCES decks(id)
);

CREATE INDEX IF NOT EXISTS idx_cards_deck_due ON cards(deck_id, due_date);

-- Review history, one row per completed review, in review order.
CREATE TABLE IF NOT EXISTS reviews (
    card_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    review_date TEXT NOT NULL,
    response TEXT NOT NULL,

    PRIMARY KEY(card_id, seq),
    FOREIGN KEY(card_id) REFERENCES cards(id)
);
`
