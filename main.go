package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"expense_tracker_bot/internal/app"
	"expense_tracker_bot/internal/bot"
	"expense_tracker_bot/internal/ledger"
	"expense_tracker_bot/internal/notifications"

	"github.com/rs/zerolog/log"
)

func main() {
	verify := flag.Bool("verify", false, "check the Google Sheets setup and exit")
	flag.Parse()

	app.SetupEnvironment()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *verify {
		if err := app.Verify(ctx); err != nil {
			log.Fatal().Err(err).Msg("Setup verification failed")
		}
		return
	}

	cfg := app.Load()
	sheetsClient, botAPI := app.InitializeClients(ctx, cfg)

	store := ledger.NewStore(sheetsClient, cfg.SpreadsheetID, cfg.SheetName)
	notifier := notifications.NewClient(cfg.Ntfy)

	b := bot.New(botAPI, store, notifier, cfg.AllowedUserIDs)
	if err := b.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Bot stopped")
	}

	// Drain any queued digest before exiting
	if err := notifier.FlushDigest(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to flush digest on shutdown")
	}
}
