package model

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle status of a stored booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// User is a bot user resolved from the Telegram identity.
type User struct {
	ID            int64
	TelegramID    int64
	Name          string
	Language      string
	LoyaltyPoints int
	CreatedAt     time.Time
}

// Club is a venue that accepts table bookings.
type Club struct {
	ID          int64
	Name        string
	Description string
	Address     string
	OpenHour    int // first bookable hour, 0..23
	CloseHour   int // last bookable hour (exclusive), may wrap past midnight as 24+
	Active      bool
}

// Table is a bookable table inside a club.
type Table struct {
	ID     int64
	ClubID int64
	Number int
	Seats  int
	Active bool
}

// Slot is one bookable time window, HH:MM inclusive start / exclusive end.
type Slot struct {
	Start string
	End   string
}

func (s Slot) String() string {
	return s.Start + "-" + s.End
}

// SlotHours is the length of one bookable window.
const SlotHours = 2

// SlotsFor generates the bookable windows for a club from its opening hours.
func SlotsFor(c Club) []Slot {
	var slots []Slot
	for h := c.OpenHour; h+SlotHours <= c.CloseHour; h += SlotHours {
		slots = append(slots, Slot{
			Start: fmt.Sprintf("%02d:00", h%24),
			End:   fmt.Sprintf("%02d:00", (h+SlotHours)%24),
		})
	}
	return slots
}

// Booking is a persisted table reservation.
type Booking struct {
	ID         int64
	Ref        string // public reference shown to the guest
	UserID     int64
	ClubID     int64
	TableID    int64
	Date       time.Time // calendar date, midnight UTC
	SlotStart  string
	SlotEnd    string
	Guests     int
	GuestName  string
	GuestPhone string
	Status     BookingStatus
	Rating     int // 0 = not rated
	Feedback   string
	CreatedAt  time.Time
}

// Question is a free-text question a user sent through the bot.
type Question struct {
	ID        int64
	UserID    int64
	ChatID    int64
	Text      string
	CreatedAt time.Time
}
