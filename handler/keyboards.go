package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/koteev-m/Booking-Bot-sub000/fsm"
	"github.com/koteev-m/Booking-Bot-sub000/locales"
	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// calendarDays is how far ahead the date picker reaches.
const calendarDays = 14

const calendarLayout = "02.01"

func btn(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func inline(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// navRow appends the back and cancel buttons shared by every flow prompt.
// back is skipped when target is empty.
func navRow(b *locales.Bundle, target fsm.State) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	if target != "" {
		row = append(row, btn(b.Buttons.Back, fsm.BackCallback(target)))
	}
	return append(row, btn(b.Buttons.Cancel, fsm.CancelCallback))
}

func mainMenuKB(b *locales.Bundle) *models.InlineKeyboardMarkup {
	return inline(
		[]models.InlineKeyboardButton{btn(b.Menu.Book, fsm.MenuBookCallback)},
		[]models.InlineKeyboardButton{btn(b.Menu.Clubs, fsm.MenuClubsCallback)},
		[]models.InlineKeyboardButton{btn(b.Menu.MyBookings, fsm.MenuMyBookingsCallback)},
		[]models.InlineKeyboardButton{btn(b.Menu.Ask, fsm.MenuAskCallback)},
		[]models.InlineKeyboardButton{btn(b.Menu.Language, fsm.MenuLangCallback)},
	)
}

func clubsKB(b *locales.Bundle, clubs []model.Club) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(clubs)+1)
	for _, c := range clubs {
		rows = append(rows, []models.InlineKeyboardButton{btn(c.Name, fsm.ClubCallback(c.ID))})
	}
	return inline(append(rows, navRow(b, ""))...)
}

func calendarKB(b *locales.Bundle) *models.InlineKeyboardMarkup {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for i := 0; i < calendarDays; i++ {
		d := today.AddDate(0, 0, i)
		row = append(row, btn(d.Format(calendarLayout), fsm.DateCallback(d)))
		if len(row) == 7 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return inline(append(rows, navRow(b, fsm.StateClubSelect))...)
}

func tablesKB(b *locales.Bundle, tables []model.Table) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, t := range tables {
		row = append(row, btn(fmt.Sprintf("№%d · %d", t.Number, t.Seats), fsm.TableCallback(t.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return inline(append(rows, navRow(b, fsm.StateDateSelect))...)
}

func slotsKB(b *locales.Bundle, slots []model.Slot) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, s := range slots {
		row = append(row, btn(s.String(), fsm.SlotCallback(s)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return inline(append(rows, navRow(b, fsm.StatePeopleCount))...)
}

func confirmKB(b *locales.Bundle) *models.InlineKeyboardMarkup {
	return inline(
		[]models.InlineKeyboardButton{btn(b.Buttons.Confirm, fsm.ConfirmCallback)},
		navRow(b, fsm.StateGuestPhone),
	)
}

func langKB(langs []string) *models.InlineKeyboardMarkup {
	row := make([]models.InlineKeyboardButton, 0, len(langs))
	for _, code := range langs {
		row = append(row, btn(strings.ToUpper(code), fsm.LangCallback(code)))
	}
	return inline(row)
}

func clubListKB(b *locales.Bundle, clubs []model.Club) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(clubs)+1)
	for _, c := range clubs {
		rows = append(rows, []models.InlineKeyboardButton{btn(c.Name, fsm.ViewClubCallback(c.ID))})
	}
	return inline(append(rows, navRow(b, ""))...)
}

func clubCardKB(b *locales.Bundle, clubID int64) *models.InlineKeyboardMarkup {
	return inline(
		[]models.InlineKeyboardButton{btn(b.Buttons.Book, fsm.ClubCallback(clubID))},
		navRow(b, fsm.StateClubList),
	)
}

func bookingsKB(b *locales.Bundle, bookings []model.Booking, clubs map[int64]string) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(bookings)+1)
	for _, bk := range bookings {
		label := fmt.Sprintf("%s %s %s-%s", clubs[bk.ClubID],
			bk.Date.Format("02.01.2006"), bk.SlotStart, bk.SlotEnd)
		rows = append(rows, []models.InlineKeyboardButton{btn(label, fsm.BookingCallback(bk.ID))})
	}
	return inline(append(rows, navRow(b, ""))...)
}

func manageKB(b *locales.Bundle) *models.InlineKeyboardMarkup {
	return inline(
		[]models.InlineKeyboardButton{btn(b.Buttons.CancelB, fsm.ManageCancelCallback)},
		[]models.InlineKeyboardButton{btn(b.Buttons.Rate, fsm.ManageRateCallback)},
		navRow(b, fsm.StateMyBookings),
	)
}

func ratingKB(b *locales.Bundle) *models.InlineKeyboardMarkup {
	row := make([]models.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 5; i++ {
		row = append(row, btn(strings.Repeat("⭐", i), fsm.RatingCallback(i)))
	}
	return inline(row, navRow(b, fsm.StateManageBooking))
}

func cancelKB(b *locales.Bundle) *models.InlineKeyboardMarkup {
	return inline(navRow(b, ""))
}
