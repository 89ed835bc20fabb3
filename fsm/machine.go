package fsm

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/koteev-m/Booking-Bot-sub000/locales"
)

// Result is what an action reports back to the engine.
type Result struct {
	// Next overrides the transition's target state when non-empty. Used by
	// validation failures to re-enter the current state.
	Next State
	// Rendered marks that the action already sent the prompt appropriate
	// for the final state, suppressing the state's on-entry hook.
	Rendered bool
}

// actionFunc is the side effect run on an accepted transition. It runs
// exactly once and may perform repository and chat I/O.
type actionFunc func(ctx context.Context, m *Machine, ev Event) (Result, error)

// transition is one edge of the machine.
type transition struct {
	target State
	// guard must accept the event for the transition to fire; a rejected
	// guard makes the event a no-op (stale keyboards press back with an
	// outdated target).
	guard  func(ev Event) bool
	action actionFunc
}

// globalTransition is evaluated, in order, when no per-state transition
// matches the event.
type globalTransition struct {
	typ    EventType
	target State
	action actionFunc
}

// transitionTable is the static (state, event) -> transition map plus the
// ordered global fallbacks and per-state entry hooks. Built once, shared by
// every machine.
type transitionTable struct {
	states  map[State]map[EventType]transition
	globals []globalTransition
	onEntry map[State]actionFunc
}

func (t *transitionTable) add(from State, typ EventType, tr transition) {
	row, ok := t.states[from]
	if !ok {
		row = make(map[EventType]transition)
		t.states[from] = row
	}
	row[typ] = tr
}

// addEverywhere registers the transition for every non-terminal state that
// does not already handle the event type. Commands behave as global entry
// points this way without widening the three-global fallback contract.
func (t *transitionTable) addEverywhere(typ EventType, tr transition) {
	for _, s := range allInteractiveStates {
		if _, taken := t.states[s][typ]; !taken {
			t.add(s, typ, tr)
		}
	}
}

var allInteractiveStates = []State{
	StateStart, StateMainMenu, StateLangSelect, StateClubSelect,
	StateDateSelect, StateTableSelect, StatePeopleCount, StateSlotSelect,
	StateGuestName, StateGuestPhone, StateConfirm, StateClubList,
	StateClubDetails, StateMyBookings, StateManageBooking, StateAskFeedback,
	StateAskQuestion,
}

// Machine is one chat's live state machine instance.
type Machine struct {
	chatID int64
	state  State
	draft  Draft
	deps   Deps
	table  *transitionTable
}

// NewMachine creates a machine in the entry state for one chat.
func NewMachine(chatID int64, deps Deps) *Machine {
	return &Machine{
		chatID: chatID,
		state:  StateStart,
		deps:   deps,
		table:  bookingTable(),
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Draft returns the session's mutable draft. Callers must hold the
// session's lock (see Registry).
func (m *Machine) Draft() *Draft { return &m.draft }

func (m *Machine) bundle() *locales.Bundle {
	return m.deps.Locales.Resolve(m.draft.Lang)
}

// ProcessEvent applies one event: per-state lookup first, then the global
// fallbacks (cancel, fatal, unknown) in priority order, otherwise the event
// is a no-op. The action runs once; its error aborts the transition without
// a state change so the caller can convert it into a fatal event.
func (m *Machine) ProcessEvent(ctx context.Context, ev Event) error {
	if m.state.Terminal() {
		return nil
	}

	tr, ok := m.lookup(ev)
	if !ok {
		log.Debug().
			Int64("chat_id", m.chatID).
			Str("state", string(m.state)).
			Str("event", string(ev.Type)).
			Msg("no transition, ignoring event")
		return nil
	}

	res := Result{}
	if tr.action != nil {
		var err error
		res, err = tr.action(ctx, m, ev)
		if err != nil {
			return err
		}
	}

	next := tr.target
	if res.Next != "" {
		next = res.Next
	}
	prev := m.state
	if next != "" {
		m.state = next
	}

	log.Debug().
		Int64("chat_id", m.chatID).
		Str("state", string(prev)).
		Str("event", string(ev.Type)).
		Str("next", string(next)).
		Msg("transition")

	if hook, hasHook := m.table.onEntry[m.state]; hasHook && !res.Rendered {
		if _, err := hook(ctx, m, ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) lookup(ev Event) (transition, bool) {
	if tr, ok := m.table.states[m.state][ev.Type]; ok {
		if tr.guard != nil && !tr.guard(ev) {
			return transition{}, false
		}
		return tr, true
	}
	for _, g := range m.table.globals {
		if g.typ == ev.Type {
			return transition{target: g.target, action: g.action}, true
		}
	}
	return transition{}, false
}
