package fsm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/koteev-m/Booking-Bot-sub000/locales"
	"github.com/koteev-m/Booking-Bot-sub000/model"
)

const dateLayout = "02.01.2006"

// remember keeps the id of the last rendered prompt for edit-in-place.
func (m *Machine) remember(id int) {
	if id > 0 {
		m.draft.LastMessageID = id
	}
}

// editID picks the message to edit: button presses update the prompt they
// came from, plain text always gets a fresh message.
func (m *Machine) editID(ev Event) int {
	if ev.MessageID > 0 {
		return ev.MessageID
	}
	return 0
}

// startOver recovers from a draft that lost its sequencing: the flow is
// reset and the user lands on the main menu with a single message.
func (m *Machine) startOver(ctx context.Context, ev Event) (Result, error) {
	log.Warn().
		Int64("chat_id", m.chatID).
		Str("state", string(m.state)).
		Str("event", string(ev.Type)).
		Msg("draft incomplete, restarting flow")
	m.draft.ClearBookingData()
	m.draft.ClearFlowData()
	b := m.bundle()
	m.remember(m.deps.Chat.MainMenu(ctx, m.chatID, m.editID(ev), b, b.Errors.StartOver))
	return Result{Next: StateMainMenu, Rendered: true}, nil
}

// --- renders -----------------------------------------------------------

func (m *Machine) renderClubs(ctx context.Context, ev Event, text string) (Result, error) {
	clubs, err := m.deps.Clubs.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list clubs: %w", err)
	}
	b := m.bundle()
	if len(clubs) == 0 {
		m.remember(m.deps.Chat.MainMenu(ctx, m.chatID, m.editID(ev), b, b.Errors.NoClubs))
		return Result{Next: StateMainMenu, Rendered: true}, nil
	}
	m.remember(m.deps.Chat.Clubs(ctx, m.chatID, m.editID(ev), b, text, clubs))
	return Result{}, nil
}

func (m *Machine) renderCalendar(ctx context.Context, ev Event, text string) (Result, error) {
	if m.draft.Club == nil {
		return m.startOver(ctx, ev)
	}
	m.remember(m.deps.Chat.Calendar(ctx, m.chatID, m.editID(ev), m.bundle(), text, *m.draft.Club))
	return Result{}, nil
}

func (m *Machine) renderTables(ctx context.Context, ev Event, date time.Time, text string) (Result, error) {
	d := &m.draft
	if d.Club == nil {
		return m.startOver(ctx, ev)
	}
	tables, err := m.deps.Tables.ListAvailable(ctx, d.Club.ID, date)
	if err != nil {
		return Result{}, fmt.Errorf("list tables: %w", err)
	}
	b := m.bundle()
	if len(tables) == 0 {
		res, err := m.renderCalendar(ctx, ev, b.Errors.NoTables)
		if err != nil {
			return res, err
		}
		return Result{Next: StateDateSelect, Rendered: true}, nil
	}
	m.remember(m.deps.Chat.Tables(ctx, m.chatID, m.editID(ev), b, text, tables))
	return Result{}, nil
}

func (m *Machine) renderBookings(ctx context.Context, ev Event, text string) (Result, error) {
	d := &m.draft
	if d.User == nil {
		return m.startOver(ctx, ev)
	}
	bookings, err := m.deps.Bookings.ListUpcomingByUser(ctx, d.User.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list bookings: %w", err)
	}
	b := m.bundle()
	if len(bookings) == 0 {
		m.remember(m.deps.Chat.MainMenu(ctx, m.chatID, m.editID(ev), b, b.Errors.NoBookings))
		return Result{Next: StateMainMenu, Rendered: true}, nil
	}
	names := make(map[int64]string)
	for _, bk := range bookings {
		if _, ok := names[bk.ClubID]; ok {
			continue
		}
		club, err := m.deps.Clubs.Find(ctx, bk.ClubID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return Result{}, fmt.Errorf("find club: %w", err)
		}
		names[bk.ClubID] = club.Name
	}
	if text == "" {
		text = b.Prompts.MyBookings
	}
	m.remember(m.deps.Chat.Bookings(ctx, m.chatID, m.editID(ev), b, text, bookings, names))
	return Result{}, nil
}

// --- entry hooks -------------------------------------------------------

// actMainMenuEntry fires whenever the main menu becomes active: both draft
// field groups are reset and the welcome screen is rendered, unless the
// entering transition already rendered an appropriate prompt.
func actMainMenuEntry(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.ClearBookingData()
	m.draft.ClearFlowData()
	b := m.bundle()
	m.remember(m.deps.Chat.MainMenu(ctx, m.chatID, m.editID(ev), b, b.Prompts.Welcome))
	return Result{}, nil
}

// --- main menu ---------------------------------------------------------

func actStartBooking(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.ClearBookingData()
	return m.renderClubs(ctx, ev, m.bundle().Prompts.ChooseClub)
}

func actShowClubList(ctx context.Context, m *Machine, ev Event) (Result, error) {
	clubs, err := m.deps.Clubs.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list clubs: %w", err)
	}
	b := m.bundle()
	if len(clubs) == 0 {
		m.remember(m.deps.Chat.MainMenu(ctx, m.chatID, m.editID(ev), b, b.Errors.NoClubs))
		return Result{Next: StateMainMenu, Rendered: true}, nil
	}
	m.remember(m.deps.Chat.ClubList(ctx, m.chatID, m.editID(ev), b, clubs))
	return Result{}, nil
}

func actShowBookings(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.ClearFlowData()
	return m.renderBookings(ctx, ev, "")
}

func actAskQuestion(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.remember(m.deps.Chat.AskQuestion(ctx, m.chatID, m.editID(ev), m.bundle()))
	return Result{}, nil
}

func actAskLang(ctx context.Context, m *Machine, ev Event) (Result, error) {
	langs := m.deps.Locales.Languages()
	sort.Strings(langs)
	m.remember(m.deps.Chat.LangSelect(ctx, m.chatID, m.editID(ev), m.bundle(), langs))
	return Result{}, nil
}

func actSetLang(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.User != nil {
		if err := m.deps.Users.UpdateLanguage(ctx, d.User.ID, ev.Lang); err != nil {
			return Result{}, fmt.Errorf("update language: %w", err)
		}
		d.User.Language = ev.Lang
	}
	d.Lang = ev.Lang
	b := m.bundle()
	m.remember(m.deps.Chat.MainMenu(ctx, m.chatID, m.editID(ev), b, b.Results.LangSaved))
	return Result{Rendered: true}, nil
}

func actHelp(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.deps.Chat.Info(ctx, m.chatID, m.bundle().Prompts.Help)
	return Result{Rendered: true}, nil
}

// --- booking flow ------------------------------------------------------

func actChooseClub(ctx context.Context, m *Machine, ev Event) (Result, error) {
	club, err := m.deps.Clubs.Find(ctx, ev.ClubID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return Result{}, fmt.Errorf("find club: %w", err)
	}
	b := m.bundle()
	if club == nil || !club.Active {
		res, rerr := m.renderClubs(ctx, ev, b.Errors.ClubGone)
		if rerr != nil {
			return res, rerr
		}
		if res.Next != "" {
			return res, nil
		}
		return Result{Next: StateClubSelect, Rendered: true}, nil
	}
	m.draft.Club = club
	return m.renderCalendar(ctx, ev, fmt.Sprintf(b.Prompts.ChooseDate, club.Name))
}

func actChooseDate(ctx context.Context, m *Machine, ev Event) (Result, error) {
	b := m.bundle()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if ev.Date.Before(today) {
		res, err := m.renderCalendar(ctx, ev, b.Errors.PastDate)
		if err != nil {
			return res, err
		}
		return Result{Next: StateDateSelect, Rendered: true}, nil
	}
	res, err := m.renderTables(ctx, ev, ev.Date, fmt.Sprintf(b.Prompts.ChooseTable, ev.Date.Format(dateLayout)))
	if err != nil || res.Next != "" {
		return res, err
	}
	m.draft.Date = ev.Date
	return Result{}, nil
}

func actChooseTable(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.Club == nil || d.Date.IsZero() {
		return m.startOver(ctx, ev)
	}
	table, err := m.deps.Tables.Find(ctx, ev.TableID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return Result{}, fmt.Errorf("find table: %w", err)
	}
	b := m.bundle()
	if table == nil || !table.Active || table.ClubID != d.Club.ID {
		res, rerr := m.renderTables(ctx, ev, d.Date, b.Errors.TableGone)
		if rerr != nil || res.Next != "" {
			return res, rerr
		}
		return Result{Next: StateTableSelect, Rendered: true}, nil
	}
	d.Table = table
	m.remember(m.deps.Chat.AskCount(ctx, m.chatID, m.editID(ev), b, *table))
	return Result{}, nil
}

func actEnterGuests(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.Table == nil {
		return m.startOver(ctx, ev)
	}
	b := m.bundle()
	if !d.SetGuestCount(ev.Guests, d.Table.Seats) {
		m.deps.Chat.Info(ctx, m.chatID, fmt.Sprintf(b.Errors.BadGuests, d.Table.Seats+SeatSlack))
		return Result{Next: StatePeopleCount, Rendered: true}, nil
	}
	m.remember(m.deps.Chat.Slots(ctx, m.chatID, m.editID(ev), b, b.Prompts.ChooseSlot, model.SlotsFor(*d.Club)))
	return Result{}, nil
}

func actChooseSlot(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.Club == nil {
		return m.startOver(ctx, ev)
	}
	b := m.bundle()
	valid := false
	for _, s := range model.SlotsFor(*d.Club) {
		if s == ev.Slot {
			valid = true
			break
		}
	}
	if !valid {
		m.remember(m.deps.Chat.Slots(ctx, m.chatID, m.editID(ev), b, b.Prompts.ChooseSlot, model.SlotsFor(*d.Club)))
		return Result{Next: StateSlotSelect, Rendered: true}, nil
	}
	d.Slot = ev.Slot
	m.remember(m.deps.Chat.AskName(ctx, m.chatID, m.editID(ev), b))
	return Result{}, nil
}

func actEnterName(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	b := m.bundle()
	if !d.SetGuestName(ev.Text) {
		m.deps.Chat.Info(ctx, m.chatID, b.Errors.BadName)
		return Result{Next: StateGuestName, Rendered: true}, nil
	}
	m.remember(m.deps.Chat.AskPhone(ctx, m.chatID, m.editID(ev), b))
	return Result{}, nil
}

func actEnterPhone(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	b := m.bundle()
	if !d.SetGuestPhone(ev.Text) {
		m.deps.Chat.Info(ctx, m.chatID, b.Errors.BadPhone)
		return Result{Next: StateGuestPhone, Rendered: true}, nil
	}
	bk, err := d.ToBooking()
	if err != nil {
		return m.startOver(ctx, ev)
	}
	m.remember(m.deps.Chat.Confirm(ctx, m.chatID, m.editID(ev), b, *d.Club, *d.Table, bk))
	return Result{}, nil
}

func actCreateBooking(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	bk, err := d.ToBooking()
	if err != nil {
		return m.startOver(ctx, ev)
	}
	b := m.bundle()

	free, err := m.deps.Bookings.Available(ctx, bk.TableID, bk.Date, bk.SlotStart)
	if err != nil {
		return Result{}, fmt.Errorf("check availability: %w", err)
	}
	if !free {
		return m.slotTaken(ctx, ev, b)
	}
	if err := m.deps.Bookings.Create(ctx, &bk); err != nil {
		if errors.Is(err, model.ErrSlotTaken) {
			// Lost the race between the check and the insert; the unique
			// index at the storage layer is the source of truth.
			return m.slotTaken(ctx, ev, b)
		}
		return Result{}, fmt.Errorf("create booking: %w", err)
	}

	if err := m.deps.Users.AddLoyaltyPoints(ctx, bk.UserID, 1); err != nil {
		log.Warn().Err(err).Int64("user_id", bk.UserID).Msg("failed to add loyalty points")
	}

	m.remember(m.deps.Chat.Success(ctx, m.chatID, m.editID(ev), b, bk))
	d.ClearBookingData()
	return Result{}, nil
}

// slotTaken redirects the user back to table selection after losing the
// table to a concurrent booking.
func (m *Machine) slotTaken(ctx context.Context, ev Event, b *locales.Bundle) (Result, error) {
	d := &m.draft
	date := d.Date
	d.clearFromStep(stepTable)
	res, err := m.renderTables(ctx, ev, date, b.Errors.SlotTaken)
	if err != nil || res.Next != "" {
		return res, err
	}
	return Result{Next: StateTableSelect, Rendered: true}, nil
}

// --- back navigation ---------------------------------------------------

// actAbandonStep clears the booking fields collected at the current step
// and later; the main-menu entry hook then clears the rest and renders.
func actAbandonStep(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	return Result{}, nil
}

func actBackToClubs(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	return m.renderClubs(ctx, ev, m.bundle().Prompts.ChooseClub)
}

func actBackToCalendar(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	club := m.draft.Club
	if club == nil {
		return m.startOver(ctx, ev)
	}
	return m.renderCalendar(ctx, ev, fmt.Sprintf(m.bundle().Prompts.ChooseDate, club.Name))
}

func actBackToTables(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	d := &m.draft
	if d.Date.IsZero() {
		return m.startOver(ctx, ev)
	}
	return m.renderTables(ctx, ev, d.Date, fmt.Sprintf(m.bundle().Prompts.ChooseTable, d.Date.Format(dateLayout)))
}

func actBackToCount(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	d := &m.draft
	if d.Table == nil {
		return m.startOver(ctx, ev)
	}
	m.remember(m.deps.Chat.AskCount(ctx, m.chatID, m.editID(ev), m.bundle(), *d.Table))
	return Result{}, nil
}

func actBackToSlots(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	d := &m.draft
	if d.Club == nil {
		return m.startOver(ctx, ev)
	}
	b := m.bundle()
	m.remember(m.deps.Chat.Slots(ctx, m.chatID, m.editID(ev), b, b.Prompts.ChooseSlot, model.SlotsFor(*d.Club)))
	return Result{}, nil
}

func actBackToName(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	m.remember(m.deps.Chat.AskName(ctx, m.chatID, m.editID(ev), m.bundle()))
	return Result{}, nil
}

func actBackToPhone(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.clearFromStep(stepOf(m.state))
	m.remember(m.deps.Chat.AskPhone(ctx, m.chatID, m.editID(ev), m.bundle()))
	return Result{}, nil
}

// --- club gallery ------------------------------------------------------

func actShowClubCard(ctx context.Context, m *Machine, ev Event) (Result, error) {
	club, err := m.deps.Clubs.Find(ctx, ev.ClubID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return Result{}, fmt.Errorf("find club: %w", err)
	}
	if club == nil || !club.Active {
		res, rerr := actShowClubList(ctx, m, ev)
		if rerr != nil || res.Next != "" {
			return res, rerr
		}
		return Result{Next: StateClubList, Rendered: true}, nil
	}
	m.draft.ViewClubID = club.ID
	m.remember(m.deps.Chat.ClubCard(ctx, m.chatID, m.editID(ev), m.bundle(), *club))
	return Result{}, nil
}

func actBackToClubList(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.ViewClubID = 0
	return actShowClubList(ctx, m, ev)
}

// --- booking management ------------------------------------------------

func actManageBooking(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.User == nil {
		return m.startOver(ctx, ev)
	}
	bk, err := m.deps.Bookings.Find(ctx, ev.BookingID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return Result{}, fmt.Errorf("find booking: %w", err)
	}
	if bk == nil || bk.UserID != d.User.ID || bk.Status == model.StatusCancelled {
		res, rerr := m.renderBookings(ctx, ev, m.bundle().Errors.BookingGone)
		if rerr != nil || res.Next != "" {
			return res, rerr
		}
		return Result{Next: StateMyBookings, Rendered: true}, nil
	}
	d.ManageBookingID = bk.ID
	clubName := ""
	if club, err := m.deps.Clubs.Find(ctx, bk.ClubID); err == nil {
		clubName = club.Name
	}
	m.remember(m.deps.Chat.ManageBooking(ctx, m.chatID, m.editID(ev), m.bundle(), *bk, clubName))
	return Result{}, nil
}

func actBackToBookings(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.ManageBookingID = 0
	return m.renderBookings(ctx, ev, "")
}

func actCancelBooking(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.ManageBookingID == 0 {
		return m.startOver(ctx, ev)
	}
	if err := m.deps.Bookings.Cancel(ctx, d.ManageBookingID); err != nil {
		return Result{}, fmt.Errorf("cancel booking: %w", err)
	}
	b := m.bundle()
	m.deps.Chat.Info(ctx, m.chatID, b.Results.BookingCancelled)
	d.ClearFlowData()
	return Result{}, nil
}

func actAskRating(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.remember(m.deps.Chat.AskRating(ctx, m.chatID, m.editID(ev), m.bundle()))
	return Result{}, nil
}

func actBackToManage(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.ManageBookingID == 0 {
		return m.startOver(ctx, ev)
	}
	bk, err := m.deps.Bookings.Find(ctx, d.ManageBookingID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return m.startOver(ctx, ev)
		}
		return Result{}, fmt.Errorf("find booking: %w", err)
	}
	clubName := ""
	if club, err := m.deps.Clubs.Find(ctx, bk.ClubID); err == nil {
		clubName = club.Name
	}
	m.remember(m.deps.Chat.ManageBooking(ctx, m.chatID, m.editID(ev), m.bundle(), *bk, clubName))
	return Result{}, nil
}

func actSaveRating(ctx context.Context, m *Machine, ev Event) (Result, error) {
	return m.saveFeedback(ctx, ev, ev.Rating, "")
}

func actSaveFeedback(ctx context.Context, m *Machine, ev Event) (Result, error) {
	return m.saveFeedback(ctx, ev, 0, ev.Text)
}

func (m *Machine) saveFeedback(ctx context.Context, ev Event, rating int, text string) (Result, error) {
	d := &m.draft
	if d.ManageBookingID == 0 {
		return m.startOver(ctx, ev)
	}
	if err := m.deps.Bookings.AddFeedback(ctx, d.ManageBookingID, rating, text); err != nil {
		return Result{}, fmt.Errorf("add feedback: %w", err)
	}
	m.deps.Chat.Info(ctx, m.chatID, m.bundle().Results.FeedbackThanks)
	d.ClearFlowData()
	return Result{}, nil
}

// --- questions ---------------------------------------------------------

func actSaveQuestion(ctx context.Context, m *Machine, ev Event) (Result, error) {
	d := &m.draft
	if d.User == nil {
		return m.startOver(ctx, ev)
	}
	q := model.Question{UserID: d.User.ID, ChatID: m.chatID, Text: ev.Text}
	if err := m.deps.Questions.Save(ctx, &q); err != nil {
		return Result{}, fmt.Errorf("save question: %w", err)
	}
	if m.deps.AdminChatID != 0 {
		m.deps.Chat.ForwardQuestion(ctx, m.deps.AdminChatID, q)
	}
	m.deps.Chat.Info(ctx, m.chatID, m.bundle().Results.QuestionSent)
	d.ClearFlowData()
	return Result{}, nil
}

// --- globals -----------------------------------------------------------

func actCancelAll(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.ClearBookingData()
	m.draft.ClearFlowData()
	m.remember(m.deps.Chat.Cancelled(ctx, m.chatID, m.editID(ev), m.bundle()))
	return Result{}, nil
}

func actFatal(ctx context.Context, m *Machine, ev Event) (Result, error) {
	log.Error().
		Err(ev.Err).
		Int64("chat_id", m.chatID).
		Str("state", string(m.state)).
		Msg("action failed, terminating session")
	m.draft.ClearBookingData()
	m.draft.ClearFlowData()
	m.deps.Chat.Error(ctx, m.chatID, m.bundle())
	return Result{}, nil
}

func actUnknown(ctx context.Context, m *Machine, ev Event) (Result, error) {
	m.draft.ClearBookingData()
	m.draft.ClearFlowData()
	b := m.bundle()
	m.remember(m.deps.Chat.MainMenu(ctx, m.chatID, m.editID(ev), b, b.Errors.Unknown))
	return Result{Rendered: true}, nil
}
