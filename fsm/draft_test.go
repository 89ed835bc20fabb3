package fsm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

func TestSetGuestCount(t *testing.T) {
	cases := []struct {
		name  string
		n     int
		seats int
		ok    bool
	}{
		{"min", 1, 4, true},
		{"at seats", 4, 4, true},
		{"within slack", 6, 4, true},
		{"zero", 0, 4, false},
		{"negative", -3, 4, false},
		{"over slack", 7, 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d Draft
			assert.Equal(t, tc.ok, d.SetGuestCount(tc.n, tc.seats))
			if tc.ok {
				assert.Equal(t, tc.n, d.Guests)
			} else {
				assert.Zero(t, d.Guests)
			}
		})
	}
}

func TestSetGuestName(t *testing.T) {
	var d Draft

	assert.False(t, d.SetGuestName("I"))
	assert.False(t, d.SetGuestName("  x  "))
	assert.False(t, d.SetGuestName(string(make([]rune, 51))))
	assert.False(t, d.SetGuestName("Ivan\x00"))

	assert.True(t, d.SetGuestName("  Ivan Petrov  "))
	assert.Equal(t, "Ivan Petrov", d.GuestName)

	assert.True(t, d.SetGuestName("Иван"), "two cyrillic runes pass the length check")
}

func TestSetGuestPhone(t *testing.T) {
	var d Draft

	for _, bad := range []string{"", "abc", "+7", "123", "+7 912 345 67 89 00 11 22"} {
		assert.Falsef(t, d.SetGuestPhone(bad), "%q should be rejected", bad)
	}

	require.True(t, d.SetGuestPhone("+7 (912) 345-67-89"))
	assert.Equal(t, "+79123456789", d.Phone, "stored normalized")

	require.True(t, d.SetGuestPhone("89123456789"))
	assert.Equal(t, "89123456789", d.Phone)
}

func TestToBookingRequiresEveryField(t *testing.T) {
	d := Draft{
		User:      &model.User{ID: 1},
		Club:      &model.Club{ID: 7},
		Table:     &model.Table{ID: 42},
		Date:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Guests:    4,
		Slot:      model.Slot{Start: "20:00", End: "22:00"},
		GuestName: "Ivan",
		Phone:     "+79123456789",
	}

	bk, err := d.ToBooking()
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, bk.Status)
	assert.Equal(t, "20:00", bk.SlotStart)

	incomplete := d
	incomplete.GuestName = ""
	_, err = incomplete.ToBooking()
	assert.ErrorIs(t, err, model.ErrDraftIncomplete)

	incomplete = d
	incomplete.User = nil
	_, err = incomplete.ToBooking()
	assert.ErrorIs(t, err, model.ErrDraftIncomplete)
}

func TestClearFromStepKeepsEarlierSelections(t *testing.T) {
	d := Draft{
		Club:      &model.Club{ID: 7},
		Date:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Table:     &model.Table{ID: 42},
		Guests:    4,
		Slot:      model.Slot{Start: "20:00", End: "22:00"},
		GuestName: "Ivan",
		Phone:     "+79123456789",
	}

	d.clearFromStep(stepGuests)

	assert.NotNil(t, d.Club)
	assert.False(t, d.Date.IsZero())
	assert.NotNil(t, d.Table)
	assert.Zero(t, d.Guests)
	assert.Equal(t, model.Slot{}, d.Slot)
	assert.Empty(t, d.GuestName)
	assert.Empty(t, d.Phone)
}

func TestClearBookingDataLeavesFlowData(t *testing.T) {
	d := Draft{
		Club:            &model.Club{ID: 7},
		ManageBookingID: 9,
		ViewClubID:      7,
	}

	d.ClearBookingData()
	assert.Nil(t, d.Club)
	assert.Equal(t, int64(9), d.ManageBookingID)

	d.ClearFlowData()
	assert.Zero(t, d.ManageBookingID)
	assert.Zero(t, d.ViewClubID)
}
