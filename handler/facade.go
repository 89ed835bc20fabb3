package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"github.com/koteev-m/Booking-Bot-sub000/fsm"
	"github.com/koteev-m/Booking-Bot-sub000/locales"
	"github.com/koteev-m/Booking-Bot-sub000/model"
)

const bookingDateLayout = "02.01.2006"

// ChatFacade renders machine prompts through the Telegram API. Delivery is
// best effort: send and edit failures are logged and reported as message id
// 0 so the machine never stalls on transport trouble.
type ChatFacade struct {
	api *bot.Bot
}

func NewChatFacade(api *bot.Bot) *ChatFacade {
	return &ChatFacade{api: api}
}

// sendOrEdit updates the message with id editID in place when possible and
// falls back to a fresh message otherwise. Editing fails routinely (the
// message may be too old or already replaced), so a failed edit degrades to
// a send instead of surfacing.
func (f *ChatFacade) sendOrEdit(ctx context.Context, chatID int64, editID int, text string, kb models.ReplyMarkup) int {
	if editID > 0 {
		_, err := f.api.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   editID,
			Text:        text,
			ReplyMarkup: kb,
		})
		if err == nil {
			return editID
		}
		log.Debug().Err(err).Int64("chat_id", chatID).Int("message_id", editID).Msg("edit failed, sending new message")
	}

	msg, err := f.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		return 0
	}
	return msg.ID
}

func (f *ChatFacade) MainMenu(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string) int {
	return f.sendOrEdit(ctx, chatID, editID, text, mainMenuKB(b))
}

func (f *ChatFacade) Clubs(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, clubs []model.Club) int {
	return f.sendOrEdit(ctx, chatID, editID, text, clubsKB(b, clubs))
}

func (f *ChatFacade) Calendar(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, club model.Club) int {
	return f.sendOrEdit(ctx, chatID, editID, text, calendarKB(b))
}

func (f *ChatFacade) Tables(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, tables []model.Table) int {
	return f.sendOrEdit(ctx, chatID, editID, text, tablesKB(b, tables))
}

func (f *ChatFacade) AskCount(ctx context.Context, chatID int64, editID int, b *locales.Bundle, table model.Table) int {
	text := fmt.Sprintf(b.Prompts.AskGuests, table.Number, table.Seats)
	return f.sendOrEdit(ctx, chatID, editID, text, inline(navRow(b, fsm.StateTableSelect)))
}

func (f *ChatFacade) Slots(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, slots []model.Slot) int {
	return f.sendOrEdit(ctx, chatID, editID, text, slotsKB(b, slots))
}

func (f *ChatFacade) AskName(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int {
	return f.sendOrEdit(ctx, chatID, editID, b.Prompts.AskName, inline(navRow(b, fsm.StateSlotSelect)))
}

func (f *ChatFacade) AskPhone(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int {
	return f.sendOrEdit(ctx, chatID, editID, b.Prompts.AskPhone, inline(navRow(b, fsm.StateGuestName)))
}

func (f *ChatFacade) Confirm(ctx context.Context, chatID int64, editID int, b *locales.Bundle, club model.Club, table model.Table, bk model.Booking) int {
	text := fmt.Sprintf(b.Prompts.Confirm,
		club.Name,
		bk.Date.Format(bookingDateLayout),
		table.Number,
		bk.Guests,
		bk.SlotStart+"-"+bk.SlotEnd,
		bk.GuestName,
		bk.GuestPhone,
	)
	return f.sendOrEdit(ctx, chatID, editID, text, confirmKB(b))
}

func (f *ChatFacade) Success(ctx context.Context, chatID int64, editID int, b *locales.Bundle, bk model.Booking) int {
	return f.sendOrEdit(ctx, chatID, editID, fmt.Sprintf(b.Results.Booked, bk.Ref), nil)
}

func (f *ChatFacade) Cancelled(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int {
	return f.sendOrEdit(ctx, chatID, editID, b.Results.Cancelled, nil)
}

func (f *ChatFacade) Error(ctx context.Context, chatID int64, b *locales.Bundle) int {
	return f.sendOrEdit(ctx, chatID, 0, b.Errors.Fatal, nil)
}

func (f *ChatFacade) Info(ctx context.Context, chatID int64, text string) int {
	return f.sendOrEdit(ctx, chatID, 0, text, nil)
}

func (f *ChatFacade) LangSelect(ctx context.Context, chatID int64, editID int, b *locales.Bundle, langs []string) int {
	return f.sendOrEdit(ctx, chatID, editID, b.Prompts.ChooseLang, langKB(langs))
}

func (f *ChatFacade) ClubList(ctx context.Context, chatID int64, editID int, b *locales.Bundle, clubs []model.Club) int {
	return f.sendOrEdit(ctx, chatID, editID, b.Prompts.ClubList, clubListKB(b, clubs))
}

func (f *ChatFacade) ClubCard(ctx context.Context, chatID int64, editID int, b *locales.Bundle, club model.Club) int {
	text := fmt.Sprintf(b.Prompts.ClubCard,
		club.Name, club.Address, club.Description,
		club.OpenHour%24, club.CloseHour%24,
	)
	return f.sendOrEdit(ctx, chatID, editID, text, clubCardKB(b, club.ID))
}

func (f *ChatFacade) Bookings(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, bookings []model.Booking, clubs map[int64]string) int {
	return f.sendOrEdit(ctx, chatID, editID, text, bookingsKB(b, bookings, clubs))
}

func (f *ChatFacade) ManageBooking(ctx context.Context, chatID int64, editID int, b *locales.Bundle, bk model.Booking, clubName string) int {
	text := fmt.Sprintf(b.Prompts.Manage,
		clubName, bk.Date.Format(bookingDateLayout), bk.SlotStart+"-"+bk.SlotEnd)
	return f.sendOrEdit(ctx, chatID, editID, text, manageKB(b))
}

func (f *ChatFacade) AskRating(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int {
	return f.sendOrEdit(ctx, chatID, editID, b.Prompts.AskRating, ratingKB(b))
}

func (f *ChatFacade) AskQuestion(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int {
	return f.sendOrEdit(ctx, chatID, editID, b.Prompts.AskQuestion, cancelKB(b))
}

// ForwardQuestion relays a saved question to the staff chat. Best effort,
// the question is already persisted.
func (f *ChatFacade) ForwardQuestion(ctx context.Context, adminChatID int64, q model.Question) {
	text := fmt.Sprintf("❓ #%d from user %d (chat %d):\n%s", q.ID, q.UserID, q.ChatID, q.Text)
	if _, err := f.api.SendMessage(ctx, &bot.SendMessageParams{ChatID: adminChatID, Text: text}); err != nil {
		log.Error().Err(err).Int64("admin_chat_id", adminChatID).Msg("question forward failed")
	}
}
