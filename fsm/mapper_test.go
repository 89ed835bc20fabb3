package fsm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

func newTestMapper(t *testing.T) (*Mapper, *env) {
	t.Helper()
	e := newEnv(t)
	return NewMapper(e.clubs, e.deps.Locales), e
}

func mapRaw(t *testing.T, mp *Mapper, raw RawInput, state State) (Event, bool) {
	t.Helper()
	return mp.Map(context.Background(), raw, state, "en")
}

func TestMapCommands(t *testing.T) {
	mp, _ := newTestMapper(t)

	cases := []struct {
		text string
		typ  EventType
	}{
		{"/start", EventCmdStart},
		{"/start@night_booking_bot", EventCmdStart},
		{"/help", EventCmdHelp},
		{"/book", EventMenuBook},
		{"/mybookings", EventMenuMyBookings},
		{"/cancel", EventCancel},
	}
	for _, tc := range cases {
		ev, ok := mapRaw(t, mp, RawInput{ChatID: 1, Text: tc.text}, StateMainMenu)
		require.True(t, ok, tc.text)
		assert.Equal(t, tc.typ, ev.Type, tc.text)
	}

	_, ok := mapRaw(t, mp, RawInput{ChatID: 1, Text: "/frobnicate"}, StateMainMenu)
	assert.False(t, ok)
}

func TestMapMenuLabels(t *testing.T) {
	mp, e := newTestMapper(t)
	b := e.deps.Locales.Resolve("en")

	ev, ok := mapRaw(t, mp, RawInput{ChatID: 1, Text: b.Menu.Book}, StateMainMenu)
	require.True(t, ok)
	assert.Equal(t, EventMenuBook, ev.Type)

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Text: b.Menu.MyBookings}, StateMainMenu)
	require.True(t, ok)
	assert.Equal(t, EventMenuMyBookings, ev.Type)
}

func TestMapCallbacks(t *testing.T) {
	mp, _ := newTestMapper(t)

	ev, ok := mapRaw(t, mp, RawInput{ChatID: 1, MessageID: 10, Callback: ClubCallback(7)}, StateClubSelect)
	require.True(t, ok)
	assert.Equal(t, EventClubChosen, ev.Type)
	assert.Equal(t, int64(7), ev.ClubID)
	assert.Equal(t, 10, ev.MessageID)

	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Callback: DateCallback(day)}, StateDateSelect)
	require.True(t, ok)
	assert.Equal(t, EventDateChosen, ev.Type)
	assert.True(t, ev.Date.Equal(day))

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Callback: SlotCallback(model.Slot{Start: "20:00", End: "22:00"})}, StateSlotSelect)
	require.True(t, ok)
	assert.Equal(t, EventSlotChosen, ev.Type)
	assert.Equal(t, model.Slot{Start: "20:00", End: "22:00"}, ev.Slot)

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Callback: BackCallback(StatePeopleCount)}, StateSlotSelect)
	require.True(t, ok)
	assert.Equal(t, EventBack, ev.Type)
	assert.Equal(t, StatePeopleCount, ev.Target)

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Callback: RatingCallback(4)}, StateAskFeedback)
	require.True(t, ok)
	assert.Equal(t, EventRatingChosen, ev.Type)
	assert.Equal(t, 4, ev.Rating)

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Callback: ManageCancelCallback}, StateManageBooking)
	require.True(t, ok)
	assert.Equal(t, EventBookingCancel, ev.Type)
}

func TestMapMalformedCallbacksDropped(t *testing.T) {
	mp, _ := newTestMapper(t)

	for _, payload := range []string{
		"club:abc",
		"club:-1",
		"date:tomorrow",
		"slot:20:00",
		"slot:9am-11am",
		"back:no_such_state",
		"rate:9",
		"rate:0",
		"lang:",
		"menu:reboot",
		"manage:delete",
		"gibberish",
	} {
		_, ok := mapRaw(t, mp, RawInput{ChatID: 1, Callback: payload}, StateMainMenu)
		assert.Falsef(t, ok, "%q must be dropped", payload)
	}
}

func TestMapFreeTextByState(t *testing.T) {
	mp, _ := newTestMapper(t)

	ev, ok := mapRaw(t, mp, RawInput{ChatID: 1, Text: "4"}, StatePeopleCount)
	require.True(t, ok)
	assert.Equal(t, EventGuestsEntered, ev.Type)
	assert.Equal(t, 4, ev.Guests)

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Text: "four"}, StatePeopleCount)
	require.True(t, ok)
	assert.Zero(t, ev.Guests, "non-numeric count fails validation downstream")

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Text: "Ivan"}, StateGuestName)
	require.True(t, ok)
	assert.Equal(t, EventNameEntered, ev.Type)
	assert.Equal(t, "Ivan", ev.Text)

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Text: "+79123456789"}, StateGuestPhone)
	require.True(t, ok)
	assert.Equal(t, EventPhoneEntered, ev.Type)

	ev, ok = mapRaw(t, mp, RawInput{ChatID: 1, Text: "Great night!"}, StateAskFeedback)
	require.True(t, ok)
	assert.Equal(t, EventFeedbackEntered, ev.Type)

	// The same text means nothing in a button-driven state.
	_, ok = mapRaw(t, mp, RawInput{ChatID: 1, Text: "Great night!"}, StateDateSelect)
	assert.False(t, ok)
}

func TestMapDynamicClubLabel(t *testing.T) {
	mp, e := newTestMapper(t)
	b := e.deps.Locales.Resolve("en")

	label := fmt.Sprintf(b.Menu.BookAtClub, "Neon Hall")
	ev, ok := mapRaw(t, mp, RawInput{ChatID: 1, Text: label}, StateMainMenu)
	require.True(t, ok)
	assert.Equal(t, EventClubChosen, ev.Type)
	assert.Equal(t, int64(7), ev.ClubID)
}

func TestMapEmptyInput(t *testing.T) {
	mp, _ := newTestMapper(t)

	_, ok := mapRaw(t, mp, RawInput{ChatID: 1, Text: "   "}, StateMainMenu)
	assert.False(t, ok)
}
