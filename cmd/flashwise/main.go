package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conorfennell/flashwise/internal/config"
	"github.com/conorfennell/flashwise/internal/importer"
	"github.com/conorfennell/flashwise/internal/storage"
	"github.com/conorfennell/flashwise/internal/study"
	"github.com/conorfennell/flashwise/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if config.IsHelp(err) {
			return
		}
		slog.Error("flashwise failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// 1. Load configuration and logging
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the database
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("Database opened successfully", "path", cfg.DB)

	store := study.NewStore(db)
	im := importer.New(store, cfg.Repos)

	// 3. One-shot actions
	switch {
	case cfg.AddSource != "":
		deck, res, err := im.AddSource(ctx, cfg.Deck, cfg.AddSource)
		if err != nil {
			return err
		}
		fmt.Printf("Imported deck %q (%s): %d cards, %d errors.\n", deck.Name, deck.ID, res.Added, len(res.Errors))
		for _, e := range res.Errors {
			fmt.Printf("- %s\n", e)
		}
		return nil
	case cfg.Sync:
		results, err := im.SyncAll(ctx)
		for _, res := range results {
			fmt.Printf("Deck %s: %d added, %d removed, %d errors.\n", res.DeckID, res.Added, res.Removed, len(res.Errors))
		}
		return err
	}

	// 4. Serve until interrupted
	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      web.NewServer(store, im),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", cfg.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
