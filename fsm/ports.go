package fsm

import (
	"context"
	"time"

	"github.com/koteev-m/Booking-Bot-sub000/locales"
	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// UserRepo resolves and updates bot users.
type UserRepo interface {
	GetOrCreate(ctx context.Context, tgID int64, name, lang string) (*model.User, error)
	UpdateLanguage(ctx context.Context, userID int64, lang string) error
	AddLoyaltyPoints(ctx context.Context, userID int64, points int) error
}

// ClubRepo reads venues.
type ClubRepo interface {
	ListActive(ctx context.Context) ([]model.Club, error)
	Find(ctx context.Context, id int64) (*model.Club, error)
}

// TableRepo reads tables and their availability.
type TableRepo interface {
	ListAvailable(ctx context.Context, clubID int64, date time.Time) ([]model.Table, error)
	Find(ctx context.Context, id int64) (*model.Table, error)
}

// BookingRepo persists bookings. Create must map a storage-level uniqueness
// violation on (table, date, slot) to model.ErrSlotTaken.
type BookingRepo interface {
	Create(ctx context.Context, b *model.Booking) error
	Find(ctx context.Context, id int64) (*model.Booking, error)
	ListUpcomingByUser(ctx context.Context, userID int64) ([]model.Booking, error)
	Cancel(ctx context.Context, id int64) error
	AddFeedback(ctx context.Context, id int64, rating int, feedback string) error
	Available(ctx context.Context, tableID int64, date time.Time, slotStart string) (bool, error)
}

// QuestionRepo stores free-text questions for staff follow-up.
type QuestionRepo interface {
	Save(ctx context.Context, q *model.Question) error
}

// Facade renders prompts to the chat. Every method edits the message with
// id editID in place when editID > 0, otherwise sends a new message, and
// returns the id of the rendered message. Delivery is best effort: failures
// are logged inside the facade and reported as id 0, never as an error.
type Facade interface {
	MainMenu(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string) int
	Clubs(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, clubs []model.Club) int
	Calendar(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, club model.Club) int
	Tables(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, tables []model.Table) int
	AskCount(ctx context.Context, chatID int64, editID int, b *locales.Bundle, table model.Table) int
	Slots(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, slots []model.Slot) int
	AskName(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int
	AskPhone(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int
	Confirm(ctx context.Context, chatID int64, editID int, b *locales.Bundle, club model.Club, table model.Table, bk model.Booking) int
	Success(ctx context.Context, chatID int64, editID int, b *locales.Bundle, bk model.Booking) int
	Cancelled(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int
	Error(ctx context.Context, chatID int64, b *locales.Bundle) int
	Info(ctx context.Context, chatID int64, text string) int
	LangSelect(ctx context.Context, chatID int64, editID int, b *locales.Bundle, langs []string) int
	ClubList(ctx context.Context, chatID int64, editID int, b *locales.Bundle, clubs []model.Club) int
	ClubCard(ctx context.Context, chatID int64, editID int, b *locales.Bundle, club model.Club) int
	Bookings(ctx context.Context, chatID int64, editID int, b *locales.Bundle, text string, bookings []model.Booking, clubs map[int64]string) int
	ManageBooking(ctx context.Context, chatID int64, editID int, b *locales.Bundle, bk model.Booking, clubName string) int
	AskRating(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int
	AskQuestion(ctx context.Context, chatID int64, editID int, b *locales.Bundle) int
	ForwardQuestion(ctx context.Context, adminChatID int64, q model.Question)
}

// Deps bundles every external collaborator the machine's actions use.
type Deps struct {
	Users     UserRepo
	Clubs     ClubRepo
	Tables    TableRepo
	Bookings  BookingRepo
	Questions QuestionRepo
	Chat      Facade
	Locales   *locales.Provider

	// AdminChatID receives forwarded questions; 0 disables forwarding.
	AdminChatID int64
}
