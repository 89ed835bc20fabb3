package fsm

import (
	"time"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// EventType tags one kind of input trigger.
type EventType string

const (
	// Commands. /start, /book and /mybookings are accepted from every
	// non-terminal state; they start a fresh workflow pass.
	EventCmdStart EventType = "cmd_start"
	EventCmdHelp  EventType = "cmd_help"

	// Main menu actions.
	EventMenuBook       EventType = "menu_book"
	EventMenuClubs      EventType = "menu_clubs"
	EventMenuMyBookings EventType = "menu_my_bookings"
	EventMenuAsk        EventType = "menu_ask"
	EventMenuLang       EventType = "menu_lang"

	// Booking flow selections.
	EventClubChosen    EventType = "club_chosen"
	EventDateChosen    EventType = "date_chosen"
	EventTableChosen   EventType = "table_chosen"
	EventGuestsEntered EventType = "guests_entered"
	EventSlotChosen    EventType = "slot_chosen"
	EventNameEntered   EventType = "name_entered"
	EventPhoneEntered  EventType = "phone_entered"
	EventConfirm       EventType = "confirm"

	// Secondary flows.
	EventLangChosen      EventType = "lang_chosen"
	EventClubView        EventType = "club_view"
	EventBookingChosen   EventType = "booking_chosen"
	EventBookingCancel   EventType = "booking_cancel"
	EventBookingRate     EventType = "booking_rate"
	EventRatingChosen    EventType = "rating_chosen"
	EventFeedbackEntered EventType = "feedback_entered"
	EventQuestionEntered EventType = "question_entered"

	// Navigation and system events.
	EventBack    EventType = "back"
	EventCancel  EventType = "cancel"
	EventFatal   EventType = "fatal"
	EventUnknown EventType = "unknown"

	// EventTimeout is part of the vocabulary but has no registered
	// transition: sessions never expire on their own.
	EventTimeout EventType = "timeout"
)

// Event is one immutable, typed trigger produced from a single external
// input. Only the payload fields relevant to its Type are set.
type Event struct {
	Type      EventType
	ChatID    int64
	UserID    int64
	MessageID int // message the event originated from, 0 for plain text

	ClubID    int64
	Date      time.Time
	TableID   int64
	Guests    int
	Slot      model.Slot
	Text      string
	Lang      string
	BookingID int64
	Rating    int
	Target    State // back-navigation destination
	Err       error // fatal events only
}
