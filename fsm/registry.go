package fsm

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// session pairs one chat with its machine. The mutex serializes event
// processing for the chat: the draft is mutable and unsynchronized, so only
// one event may be in flight per chat while distinct chats run in parallel.
type session struct {
	mu      sync.Mutex
	machine *Machine
}

// Registry owns the chat-to-machine mapping. Machines are created lazily on
// the first update for a chat and reclaimed when they reach a terminal
// state, so the next interaction starts a fresh workflow pass.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*session
	deps     Deps
	mapper   *Mapper
}

// NewRegistry builds a registry over the shared collaborators.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		sessions: make(map[int64]*session),
		deps:     deps,
		mapper:   NewMapper(deps.Clubs, deps.Locales),
	}
}

// Handle routes one inbound update to its chat's machine. Safe for
// concurrent use; events for the same chat are processed one at a time in
// arrival order.
func (r *Registry) Handle(ctx context.Context, raw RawInput) {
	if raw.ChatID == 0 {
		return
	}

	s := r.session(raw.ChatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.machine
	d := m.Draft()

	// First event for this chat: resolve the user and seed the draft with
	// the stored locale.
	if d.User == nil {
		u, err := r.deps.Users.GetOrCreate(ctx, raw.UserID, raw.Name, raw.LangCode)
		if err != nil {
			log.Error().Err(err).Int64("chat_id", raw.ChatID).Msg("user upsert failed, dropping update")
			return
		}
		d.User = u
		d.Lang = u.Language
	}

	if raw.MessageID > 0 {
		d.LastMessageID = raw.MessageID
	}

	ev, ok := r.mapper.Map(ctx, raw, m.State(), d.Lang)
	if !ok {
		// Unmapped free text still deserves an answer; unmapped button
		// payloads were malformed and have already been logged.
		if raw.Callback != "" || strings.TrimSpace(raw.Text) == "" {
			return
		}
		ev = Event{Type: EventUnknown, ChatID: raw.ChatID, UserID: raw.UserID}
	}

	if err := m.ProcessEvent(ctx, ev); err != nil {
		// One fatal round-trip, never retried further: the user gets a
		// single error message and the machine settles in the error state.
		fatal := Event{Type: EventFatal, ChatID: raw.ChatID, UserID: raw.UserID, Err: err}
		if ferr := m.ProcessEvent(ctx, fatal); ferr != nil {
			log.Error().Err(ferr).Int64("chat_id", raw.ChatID).Msg("fatal transition failed")
		}
	}

	if m.State().Terminal() {
		r.remove(raw.ChatID)
	}
}

// Active returns the number of live sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) session(chatID int64) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	if !ok {
		s = &session{machine: NewMachine(chatID, r.deps)}
		r.sessions[chatID] = s
	}
	return s
}

func (r *Registry) remove(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
}
