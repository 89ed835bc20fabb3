package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/koteev-m/Booking-Bot-sub000/config"
	"github.com/koteev-m/Booking-Bot-sub000/fsm"
	"github.com/koteev-m/Booking-Bot-sub000/handler"
	"github.com/koteev-m/Booking-Bot-sub000/locales"
	"github.com/koteev-m/Booking-Bot-sub000/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	provider, err := locales.NewProvider(cfg.DefaultLocale)
	if err != nil {
		log.Fatal().Err(err).Msg("load locales")
	}

	b, err := handler.New(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("create bot")
	}

	registry := fsm.NewRegistry(fsm.Deps{
		Users:       repo.NewUsers(pool),
		Clubs:       repo.NewClubs(pool),
		Tables:      repo.NewTables(pool),
		Bookings:    repo.NewBookings(pool),
		Questions:   repo.NewQuestions(pool),
		Chat:        handler.NewChatFacade(b.API()),
		Locales:     provider,
		AdminChatID: cfg.AdminChatID,
	})
	b.Attach(registry)

	b.Start(ctx)
	log.Info().Msg("bot stopped")
}
