// Package importer keeps decks in sync with the markdown notes they were
// imported from.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/conorfennell/flashwise/internal/domain"
	"github.com/conorfennell/flashwise/internal/gitsource"
	"github.com/conorfennell/flashwise/internal/knol"
	"github.com/conorfennell/flashwise/internal/parser"
	"github.com/conorfennell/flashwise/internal/study"
)

// Result reports what a sync changed in one deck.
type Result struct {
	DeckID  string  `json:"deckId"`
	Parsed  int     `json:"parsed"`
	Added   int     `json:"added"`
	Removed int     `json:"removed"`
	Errors  []error `json:"-"`
}

// Importer syncs sourced decks into a study.Store.
type Importer struct {
	store    *study.Store
	reposDir string
	// syncRepo fetches a git source; replaced in tests.
	syncRepo func(ctx context.Context, url, localPath string) error
}

// New creates an Importer that checks git sources out under reposDir.
func New(store *study.Store, reposDir string) *Importer {
	return &Importer{
		store:    store,
		reposDir: reposDir,
		syncRepo: gitsource.Sync,
	}
}

// AddSource creates a deck named name backed by source and imports it.
func (im *Importer) AddSource(ctx context.Context, name, source string) (domain.Deck, Result, error) {
	if name == "" {
		name = defaultDeckName(source)
	}
	deck, err := im.store.AddDeck(ctx, study.DeckInput{Name: name, Source: source})
	if err != nil {
		return domain.Deck{}, Result{}, err
	}
	res, err := im.SyncDeck(ctx, deck)
	if err != nil {
		// A deck whose first import failed would fail every later sync.
		if delErr := im.store.DeleteDeck(ctx, deck.ID); delErr != nil {
			slog.Warn("Failed to remove deck after failed import", "id", deck.ID, "error", delErr)
		}
		return domain.Deck{}, res, err
	}
	return deck, res, nil
}

// SyncAll syncs every deck that has a source. A failing deck is logged and
// does not stop the others; the returned error joins all failures.
func (im *Importer) SyncAll(ctx context.Context) ([]Result, error) {
	slog.Info("Starting sync process for all sourced decks...")
	decks, err := im.store.Decks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}

	var (
		results []Result
		errs    []error
	)
	for _, deck := range decks {
		if deck.Source == "" {
			continue
		}
		res, err := im.SyncDeck(ctx, deck)
		if err != nil {
			slog.Error("Error syncing deck", "id", deck.ID, "source", deck.Source, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	if len(results) == 0 && len(errs) == 0 {
		slog.Info("No sourced decks. Add one with --add-source <path/or/url.git>")
	}
	slog.Info("Sync process complete.", "decks", len(results), "failed", len(errs))
	return results, errors.Join(errs...)
}

// SyncDeck fetches the deck's source if it is a git repository and
// reconciles the deck's imported cards with the notes found there.
func (im *Importer) SyncDeck(ctx context.Context, deck domain.Deck) (Result, error) {
	slog.Info("Syncing deck", "id", deck.ID, "name", deck.Name, "source", deck.Source)

	dir := deck.Source
	if gitsource.IsRemote(deck.Source) {
		local, err := gitsource.LocalPath(im.reposDir, deck.Source)
		if err != nil {
			return Result{}, err
		}
		if err := im.syncRepo(ctx, deck.Source, local); err != nil {
			return Result{}, err
		}
		dir = local
	}
	return im.reconcile(ctx, deck, dir)
}

func (im *Importer) reconcile(ctx context.Context, deck domain.Deck, dir string) (Result, error) {
	res := Result{DeckID: deck.ID}

	var inputs []study.CardInput
	seen := make(map[string]bool)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		drafts, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			res.Errors = append(res.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		for _, draft := range drafts {
			res.Parsed++
			hash := knol.Hash(draft)
			if seen[hash] {
				continue
			}
			seen[hash] = true
			inputs = append(inputs, study.CardInput{
				Front:       knol.Front(draft),
				Back:        knol.Back(draft),
				ContentHash: hash,
			})
		}
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("failed to walk %s: %w", dir, walkErr)
	}

	report, err := im.store.ImportCards(ctx, deck.ID, inputs)
	if err != nil {
		return res, fmt.Errorf("failed to import cards into deck %s: %w", deck.ID, err)
	}
	res.Added = report.Added
	res.Removed = report.Removed
	res.Errors = append(res.Errors, report.Rejected...)

	slog.Info("reconciliation complete",
		"deck", deck.ID,
		"path", dir,
		"parsed_cards", res.Parsed,
		"added", res.Added,
		"orphaned_deleted", res.Removed,
		"errors", len(res.Errors),
	)
	return res, nil
}

func defaultDeckName(source string) string {
	name := strings.TrimSuffix(filepath.Base(strings.TrimRight(source, "/")), ".git")
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "Imported"
	}
	return name
}
