// Package fsm implements the per-chat conversational state machine that
// drives the booking workflow: states, typed events, the mutable booking
// draft, the transition table and the session registry that serializes
// event processing per chat.
package fsm

// State is one node of the conversation machine.
type State string

const (
	StateStart       State = "start" // entry state, before the first prompt
	StateMainMenu    State = "main_menu"
	StateLangSelect  State = "lang_select"
	StateClubSelect  State = "club_select"
	StateDateSelect  State = "date_select"
	StateTableSelect State = "table_select"
	StatePeopleCount State = "people_count"
	StateSlotSelect  State = "slot_select"
	StateGuestName   State = "guest_name"
	StateGuestPhone  State = "guest_phone"
	StateConfirm     State = "confirm"

	StateClubList      State = "club_list"
	StateClubDetails   State = "club_details"
	StateMyBookings    State = "my_bookings"
	StateManageBooking State = "manage_booking"
	StateAskFeedback   State = "ask_feedback"
	StateAskQuestion   State = "ask_question"

	// Terminal states: no outgoing transitions, reaching one ends the session.
	StateBookingFinished State = "booking_finished"
	StateActionFinished  State = "action_finished"
	StateQuestionSent    State = "question_sent"
	StateCancelled       State = "cancelled"
	StateError           State = "error"
)

// Terminal reports whether s ends the session.
func (s State) Terminal() bool {
	switch s {
	case StateBookingFinished, StateActionFinished, StateQuestionSent, StateCancelled, StateError:
		return true
	}
	return false
}

// bookingStep orders the booking-flow states so that back-navigation and
// field clearing can reason about "this step and everything after it".
type bookingStep int

const (
	stepNone bookingStep = iota
	stepClub
	stepDate
	stepTable
	stepGuests
	stepSlot
	stepName
	stepPhone
	stepConfirm
)

var stateSteps = map[State]bookingStep{
	StateClubSelect:  stepClub,
	StateDateSelect:  stepDate,
	StateTableSelect: stepTable,
	StatePeopleCount: stepGuests,
	StateSlotSelect:  stepSlot,
	StateGuestName:   stepName,
	StateGuestPhone:  stepPhone,
	StateConfirm:     stepConfirm,
}

// stepOf returns the booking step a state collects input for, or stepNone.
func stepOf(s State) bookingStep {
	return stateSteps[s]
}

// parseState maps a wire state name back to a known State. Used when a back
// button carries its destination; unknown names return false.
func parseState(name string) (State, bool) {
	switch s := State(name); s {
	case StateMainMenu, StateLangSelect, StateClubSelect, StateDateSelect,
		StateTableSelect, StatePeopleCount, StateSlotSelect, StateGuestName,
		StateGuestPhone, StateConfirm, StateClubList, StateClubDetails,
		StateMyBookings, StateManageBooking, StateAskFeedback, StateAskQuestion:
		return s, true
	}
	return "", false
}
