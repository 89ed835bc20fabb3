package fsm

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

const (
	// MinGuests is the smallest accepted party size.
	MinGuests = 1
	// SeatSlack is how many guests beyond the table's seat count are allowed.
	SeatSlack = 2

	minNameLen = 2
	maxNameLen = 50
)

var phoneRe = regexp.MustCompile(`^\+?\d[\d\s\-()]{6,17}$`)

// Draft accumulates booking selections for one session. Booking-flow fields
// are populated strictly in workflow order and cleared as a group whenever a
// workflow pass terminates or back-navigation unwinds past them.
type Draft struct {
	// Identity and flow context.
	User          *model.User
	Lang          string
	LastMessageID int

	// Booking flow, in step order.
	Club      *model.Club
	Date      time.Time
	Table     *model.Table
	Guests    int
	Slot      model.Slot
	GuestName string
	Phone     string

	// Secondary flows.
	ViewClubID      int64
	ManageBookingID int64
	Question        string
}

// SetGuestCount validates and stores the party size for the selected table.
func (d *Draft) SetGuestCount(n, tableSeats int) bool {
	if n < MinGuests || n > tableSeats+SeatSlack {
		return false
	}
	d.Guests = n
	return true
}

// SetGuestName validates and stores the guest name.
func (d *Draft) SetGuestName(name string) bool {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < minNameLen || len([]rune(name)) > maxNameLen {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	d.GuestName = name
	return true
}

// SetGuestPhone validates the phone and stores it normalized to digits with
// an optional leading plus.
func (d *Draft) SetGuestPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phoneRe.MatchString(phone) {
		return false
	}
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' || r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	d.Phone = b.String()
	return true
}

// ToBooking materializes a persistence-ready booking, or reports
// model.ErrDraftIncomplete when a required field is missing. The latter
// guards against a code path reaching confirmation out of sequence.
func (d *Draft) ToBooking() (model.Booking, error) {
	if d.User == nil || d.Club == nil || d.Table == nil || d.Date.IsZero() ||
		d.Guests == 0 || d.Slot.Start == "" || d.GuestName == "" || d.Phone == "" {
		return model.Booking{}, model.ErrDraftIncomplete
	}
	return model.Booking{
		UserID:     d.User.ID,
		ClubID:     d.Club.ID,
		TableID:    d.Table.ID,
		Date:       d.Date,
		SlotStart:  d.Slot.Start,
		SlotEnd:    d.Slot.End,
		Guests:     d.Guests,
		GuestName:  d.GuestName,
		GuestPhone: d.Phone,
		Status:     model.StatusConfirmed,
	}, nil
}

// ClearBookingData resets the booking-flow field group.
func (d *Draft) ClearBookingData() {
	d.clearFromStep(stepClub)
}

// ClearFlowData resets the secondary-flow field group.
func (d *Draft) ClearFlowData() {
	d.ViewClubID = 0
	d.ManageBookingID = 0
	d.Question = ""
}

// clearFromStep resets the booking fields collected at the given step and
// every later one, leaving earlier selections intact.
func (d *Draft) clearFromStep(from bookingStep) {
	if from <= stepClub {
		d.Club = nil
	}
	if from <= stepDate {
		d.Date = time.Time{}
	}
	if from <= stepTable {
		d.Table = nil
	}
	if from <= stepGuests {
		d.Guests = 0
	}
	if from <= stepSlot {
		d.Slot = model.Slot{}
	}
	if from <= stepName {
		d.GuestName = ""
	}
	if from <= stepPhone {
		d.Phone = ""
	}
}
