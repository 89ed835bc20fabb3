package fsm

var defaultTable = newBookingTable()

func bookingTable() *transitionTable { return defaultTable }

// backTo guards a back transition: the event must carry the expected
// destination, otherwise the press came from an outdated keyboard and the
// event is ignored.
func backTo(target State) func(Event) bool {
	return func(ev Event) bool { return ev.Target == target }
}

// newBookingTable declares the whole conversation. Per-state transitions
// win over the command edges registered everywhere; the three global
// fallbacks (cancel, fatal, unknown) are evaluated last, in that order.
func newBookingTable() *transitionTable {
	t := &transitionTable{
		states:  make(map[State]map[EventType]transition),
		onEntry: make(map[State]actionFunc),
	}

	t.onEntry[StateMainMenu] = actMainMenuEntry

	// Main menu.
	t.add(StateMainMenu, EventMenuBook, transition{target: StateClubSelect, action: actStartBooking})
	t.add(StateMainMenu, EventMenuClubs, transition{target: StateClubList, action: actShowClubList})
	t.add(StateMainMenu, EventMenuMyBookings, transition{target: StateMyBookings, action: actShowBookings})
	t.add(StateMainMenu, EventMenuAsk, transition{target: StateAskQuestion, action: actAskQuestion})
	t.add(StateMainMenu, EventMenuLang, transition{target: StateLangSelect, action: actAskLang})

	// Language selection.
	t.add(StateLangSelect, EventLangChosen, transition{target: StateMainMenu, action: actSetLang})
	t.add(StateLangSelect, EventBack, transition{target: StateMainMenu, guard: backTo(StateMainMenu)})

	// Booking flow: club -> date -> table -> guests -> slot -> name -> phone -> confirm.
	t.add(StateClubSelect, EventClubChosen, transition{target: StateDateSelect, action: actChooseClub})
	t.add(StateClubSelect, EventBack, transition{target: StateMainMenu, guard: backTo(StateMainMenu), action: actAbandonStep})

	t.add(StateDateSelect, EventDateChosen, transition{target: StateTableSelect, action: actChooseDate})
	t.add(StateDateSelect, EventBack, transition{target: StateClubSelect, guard: backTo(StateClubSelect), action: actBackToClubs})

	t.add(StateTableSelect, EventTableChosen, transition{target: StatePeopleCount, action: actChooseTable})
	t.add(StateTableSelect, EventBack, transition{target: StateDateSelect, guard: backTo(StateDateSelect), action: actBackToCalendar})

	t.add(StatePeopleCount, EventGuestsEntered, transition{target: StateSlotSelect, action: actEnterGuests})
	t.add(StatePeopleCount, EventBack, transition{target: StateTableSelect, guard: backTo(StateTableSelect), action: actBackToTables})

	t.add(StateSlotSelect, EventSlotChosen, transition{target: StateGuestName, action: actChooseSlot})
	t.add(StateSlotSelect, EventBack, transition{target: StatePeopleCount, guard: backTo(StatePeopleCount), action: actBackToCount})

	t.add(StateGuestName, EventNameEntered, transition{target: StateGuestPhone, action: actEnterName})
	t.add(StateGuestName, EventBack, transition{target: StateSlotSelect, guard: backTo(StateSlotSelect), action: actBackToSlots})

	t.add(StateGuestPhone, EventPhoneEntered, transition{target: StateConfirm, action: actEnterPhone})
	t.add(StateGuestPhone, EventBack, transition{target: StateGuestName, guard: backTo(StateGuestName), action: actBackToName})

	t.add(StateConfirm, EventConfirm, transition{target: StateBookingFinished, action: actCreateBooking})
	t.add(StateConfirm, EventBack, transition{target: StateGuestPhone, guard: backTo(StateGuestPhone), action: actBackToPhone})

	// Club gallery.
	t.add(StateClubList, EventClubView, transition{target: StateClubDetails, action: actShowClubCard})
	t.add(StateClubList, EventBack, transition{target: StateMainMenu, guard: backTo(StateMainMenu)})

	t.add(StateClubDetails, EventClubChosen, transition{target: StateDateSelect, action: actChooseClub})
	t.add(StateClubDetails, EventBack, transition{target: StateClubList, guard: backTo(StateClubList), action: actBackToClubList})

	// Booking management.
	t.add(StateMyBookings, EventBookingChosen, transition{target: StateManageBooking, action: actManageBooking})
	t.add(StateMyBookings, EventBack, transition{target: StateMainMenu, guard: backTo(StateMainMenu)})

	t.add(StateManageBooking, EventBookingCancel, transition{target: StateActionFinished, action: actCancelBooking})
	t.add(StateManageBooking, EventBookingRate, transition{target: StateAskFeedback, action: actAskRating})
	t.add(StateManageBooking, EventBack, transition{target: StateMyBookings, guard: backTo(StateMyBookings), action: actBackToBookings})

	t.add(StateAskFeedback, EventRatingChosen, transition{target: StateActionFinished, action: actSaveRating})
	t.add(StateAskFeedback, EventFeedbackEntered, transition{target: StateActionFinished, action: actSaveFeedback})
	t.add(StateAskFeedback, EventBack, transition{target: StateManageBooking, guard: backTo(StateManageBooking), action: actBackToManage})

	// Questions.
	t.add(StateAskQuestion, EventQuestionEntered, transition{target: StateQuestionSent, action: actSaveQuestion})
	t.add(StateAskQuestion, EventBack, transition{target: StateMainMenu, guard: backTo(StateMainMenu)})

	// Commands act as entry points from every state that does not already
	// consume them.
	t.addEverywhere(EventCmdStart, transition{target: StateMainMenu})
	t.addEverywhere(EventCmdHelp, transition{action: actHelp})
	t.addEverywhere(EventMenuBook, transition{target: StateClubSelect, action: actStartBooking})
	t.addEverywhere(EventMenuMyBookings, transition{target: StateMyBookings, action: actShowBookings})

	t.globals = []globalTransition{
		{typ: EventCancel, target: StateCancelled, action: actCancelAll},
		{typ: EventFatal, target: StateError, action: actFatal},
		{typ: EventUnknown, target: StateMainMenu, action: actUnknown},
	}
	return t
}
