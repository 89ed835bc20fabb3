// Package handler binds the conversation machine to the Telegram transport.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"github.com/koteev-m/Booking-Bot-sub000/fsm"
)

// Dispatcher receives raw inputs extracted from Telegram updates.
type Dispatcher interface {
	Handle(ctx context.Context, raw fsm.RawInput)
}

// BookingBot owns the long-polling bot and forwards every update to the
// session registry as one RawInput.
type BookingBot struct {
	api      *bot.Bot
	registry Dispatcher
}

// New builds the bot. The registry is attached afterwards via Attach because
// the facade the registry needs is itself built over the bot API.
func New(token string) (*BookingBot, error) {
	h := &BookingBot{}
	api, err := bot.New(token, bot.WithDefaultHandler(h.onUpdate))
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	h.api = api
	return h, nil
}

// API exposes the underlying client for facade construction.
func (h *BookingBot) API() *bot.Bot {
	return h.api
}

// Attach wires the dispatcher that receives updates.
func (h *BookingBot) Attach(registry Dispatcher) {
	h.registry = registry
}

// Start long-polls until the context is cancelled.
func (h *BookingBot) Start(ctx context.Context) {
	log.Info().Msg("bot started")
	h.api.Start(ctx)
}

func (h *BookingBot) onUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if h.registry == nil {
		return
	}

	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery

		// Stop the client spinner regardless of what the payload maps to.
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
			log.Debug().Err(err).Msg("answer callback failed")
		}

		msg := q.Message.Message
		if msg == nil {
			log.Warn().Str("payload", q.Data).Msg("callback without accessible message, dropping")
			return
		}
		h.registry.Handle(ctx, fsm.RawInput{
			ChatID:    msg.Chat.ID,
			UserID:    q.From.ID,
			MessageID: msg.ID,
			Callback:  q.Data,
			Name:      displayName(&q.From),
			LangCode:  q.From.LanguageCode,
		})

	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		h.registry.Handle(ctx, fsm.RawInput{
			ChatID:   msg.Chat.ID,
			UserID:   msg.From.ID,
			Text:     msg.Text,
			Name:     displayName(msg.From),
			LangCode: msg.From.LanguageCode,
		})
	}
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
