package fsm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/koteev-m/Booking-Bot-sub000/locales"
	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// RawInput is one inbound update, already stripped of transport detail.
type RawInput struct {
	ChatID    int64
	UserID    int64
	MessageID int    // message whose keyboard was pressed, 0 for plain text
	Text      string // message text, empty for button presses
	Callback  string // raw callback payload, empty for plain text
	Name      string // sender display name, used for the user upsert
	LangCode  string // transport-reported language hint
}

// Callback payload prefixes. The mapper is the only reader of this wire
// format; keyboards build payloads through the helpers below.
const (
	cbMenu    = "menu"
	cbClub    = "club"
	cbDate    = "date"
	cbTable   = "table"
	cbSlot    = "slot"
	cbConfirm = "confirm"
	cbBack    = "back"
	cbCancel  = "cancel"
	cbLang    = "lang"
	cbView    = "view"
	cbBooking = "booking"
	cbManage  = "manage"
	cbRate    = "rate"
)

const callbackDateLayout = "2006-01-02"

// MenuBookCallback and friends are the fixed menu payloads.
const (
	MenuBookCallback       = cbMenu + ":book"
	MenuClubsCallback      = cbMenu + ":clubs"
	MenuMyBookingsCallback = cbMenu + ":bookings"
	MenuAskCallback        = cbMenu + ":ask"
	MenuLangCallback       = cbMenu + ":lang"
	ConfirmCallback        = cbConfirm
	CancelCallback         = cbCancel
	ManageCancelCallback   = cbManage + ":cancel"
	ManageRateCallback     = cbManage + ":rate"
)

func ClubCallback(id int64) string     { return fmt.Sprintf("%s:%d", cbClub, id) }
func DateCallback(t time.Time) string  { return cbDate + ":" + t.Format(callbackDateLayout) }
func TableCallback(id int64) string    { return fmt.Sprintf("%s:%d", cbTable, id) }
func SlotCallback(s model.Slot) string { return cbSlot + ":" + s.Start + "-" + s.End }
func BackCallback(target State) string { return cbBack + ":" + string(target) }
func LangCallback(code string) string  { return cbLang + ":" + code }
func ViewClubCallback(id int64) string { return fmt.Sprintf("%s:%d", cbView, id) }
func BookingCallback(id int64) string  { return fmt.Sprintf("%s:%d", cbBooking, id) }
func RatingCallback(rating int) string { return fmt.Sprintf("%s:%d", cbRate, rating) }

// Mapper turns one raw input into at most one typed event. It is stateless;
// its only external touch is the active-club read used to recognize the
// dynamically generated "book at <club>" menu labels.
type Mapper struct {
	clubs   ClubRepo
	locales *locales.Provider
}

// NewMapper builds a mapper over the given club reader and locale provider.
func NewMapper(clubs ClubRepo, provider *locales.Provider) *Mapper {
	return &Mapper{clubs: clubs, locales: provider}
}

// Map translates raw input in the context of the session's current state
// and language. It returns false when the input maps to nothing; the caller
// decides whether that becomes an unknown-input event.
func (mp *Mapper) Map(ctx context.Context, raw RawInput, state State, lang string) (Event, bool) {
	base := Event{ChatID: raw.ChatID, UserID: raw.UserID, MessageID: raw.MessageID}

	if raw.Callback != "" {
		return mp.mapCallback(base, raw.Callback)
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return Event{}, false
	}

	// Commands are global entry points, recognized in any state.
	if strings.HasPrefix(text, "/") {
		return mp.mapCommand(base, text)
	}

	// Localized main-menu labels typed or sent from a reply keyboard.
	b := mp.locales.Resolve(lang)
	switch text {
	case b.Menu.Book:
		base.Type = EventMenuBook
		return base, true
	case b.Menu.Clubs:
		base.Type = EventMenuClubs
		return base, true
	case b.Menu.MyBookings:
		base.Type = EventMenuMyBookings
		return base, true
	case b.Menu.Ask:
		base.Type = EventMenuAsk
		return base, true
	case b.Menu.Language:
		base.Type = EventMenuLang
		return base, true
	}

	// Dynamic "book at <club>" labels, one per active club.
	if clubs, err := mp.clubs.ListActive(ctx); err != nil {
		log.Warn().Err(err).Msg("club label lookup failed")
	} else {
		for _, club := range clubs {
			if text == fmt.Sprintf(b.Menu.BookAtClub, club.Name) {
				base.Type = EventClubChosen
				base.ClubID = club.ID
				return base, true
			}
		}
	}

	// Free text is meaningful only in states that expect typed input.
	switch state {
	case StatePeopleCount:
		base.Type = EventGuestsEntered
		// A non-numeric reply fails guest-count validation downstream.
		base.Guests, _ = strconv.Atoi(text)
		return base, true
	case StateGuestName:
		base.Type = EventNameEntered
		base.Text = text
		return base, true
	case StateGuestPhone:
		base.Type = EventPhoneEntered
		base.Text = text
		return base, true
	case StateAskQuestion:
		base.Type = EventQuestionEntered
		base.Text = text
		return base, true
	case StateAskFeedback:
		base.Type = EventFeedbackEntered
		base.Text = text
		return base, true
	}
	return Event{}, false
}

func (mp *Mapper) mapCommand(base Event, text string) (Event, bool) {
	cmd := strings.Fields(text)[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	switch cmd {
	case "/start":
		base.Type = EventCmdStart
	case "/help":
		base.Type = EventCmdHelp
	case "/book":
		base.Type = EventMenuBook
	case "/mybookings":
		base.Type = EventMenuMyBookings
	case "/cancel":
		base.Type = EventCancel
	default:
		return Event{}, false
	}
	return base, true
}

// mapCallback decodes a button payload. Malformed payloads are logged and
// dropped: a stale or forged button must never crash the handler.
func (mp *Mapper) mapCallback(base Event, data string) (Event, bool) {
	prefix, rest, _ := strings.Cut(data, ":")

	drop := func(reason string) (Event, bool) {
		log.Warn().Str("payload", data).Str("reason", reason).Msg("dropping malformed callback")
		return Event{}, false
	}

	switch prefix {
	case cbMenu:
		switch rest {
		case "book":
			base.Type = EventMenuBook
		case "clubs":
			base.Type = EventMenuClubs
		case "bookings":
			base.Type = EventMenuMyBookings
		case "ask":
			base.Type = EventMenuAsk
		case "lang":
			base.Type = EventMenuLang
		default:
			return drop("unknown menu action")
		}
	case cbClub, cbTable, cbView, cbBooking:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return drop("bad id")
		}
		switch prefix {
		case cbClub:
			base.Type = EventClubChosen
			base.ClubID = id
		case cbTable:
			base.Type = EventTableChosen
			base.TableID = id
		case cbView:
			base.Type = EventClubView
			base.ClubID = id
		case cbBooking:
			base.Type = EventBookingChosen
			base.BookingID = id
		}
	case cbDate:
		d, err := time.ParseInLocation(callbackDateLayout, rest, time.UTC)
		if err != nil {
			return drop("bad date")
		}
		base.Type = EventDateChosen
		base.Date = d
	case cbSlot:
		start, end, ok := strings.Cut(rest, "-")
		if !ok {
			return drop("bad slot")
		}
		if _, err := time.Parse("15:04", start); err != nil {
			return drop("bad slot start")
		}
		if _, err := time.Parse("15:04", end); err != nil {
			return drop("bad slot end")
		}
		base.Type = EventSlotChosen
		base.Slot = model.Slot{Start: start, End: end}
	case cbConfirm:
		base.Type = EventConfirm
	case cbBack:
		target, ok := parseState(rest)
		if !ok {
			return drop("unknown back target")
		}
		base.Type = EventBack
		base.Target = target
	case cbCancel:
		base.Type = EventCancel
	case cbLang:
		if rest == "" {
			return drop("empty language")
		}
		base.Type = EventLangChosen
		base.Lang = rest
	case cbManage:
		switch rest {
		case "cancel":
			base.Type = EventBookingCancel
		case "rate":
			base.Type = EventBookingRate
		default:
			return drop("unknown manage action")
		}
	case cbRate:
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 || n > 5 {
			return drop("bad rating")
		}
		base.Type = EventRatingChosen
		base.Rating = n
	default:
		return drop("unknown prefix")
	}
	return base, true
}
