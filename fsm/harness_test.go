package fsm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/koteev-m/Booking-Bot-sub000/locales"
	"github.com/koteev-m/Booking-Bot-sub000/model"
)

type fakeUsers struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
	err    error
}

func (f *fakeUsers) GetOrCreate(_ context.Context, tgID int64, name, lang string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.TelegramID == tgID {
			return u, nil
		}
	}
	f.nextID++
	if lang == "" {
		lang = "en"
	}
	u := &model.User{ID: f.nextID, TelegramID: tgID, Name: name, Language: lang}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdateLanguage(_ context.Context, userID int64, lang string) error {
	u, ok := f.users[userID]
	if !ok {
		return model.ErrNotFound
	}
	u.Language = lang
	return nil
}

func (f *fakeUsers) AddLoyaltyPoints(_ context.Context, userID int64, points int) error {
	u, ok := f.users[userID]
	if !ok {
		return model.ErrNotFound
	}
	u.LoyaltyPoints += points
	return nil
}

type fakeClubs struct {
	clubs []model.Club
	err   error
}

func (f *fakeClubs) ListActive(context.Context) ([]model.Club, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Club
	for _, c := range f.clubs {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClubs) Find(_ context.Context, id int64) (*model.Club, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.clubs {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeTables struct {
	tables []model.Table
	err    error
}

func (f *fakeTables) ListAvailable(_ context.Context, clubID int64, _ time.Time) ([]model.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Table
	for _, t := range f.tables {
		if t.ClubID == clubID && t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTables) Find(_ context.Context, id int64) (*model.Table, error) {
	for _, t := range f.tables {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeBookings struct {
	byID   map[int64]*model.Booking
	nextID int64
	err    error
}

func slotKey(tableID int64, date time.Time, slotStart string) string {
	return fmt.Sprintf("%d|%s|%s", tableID, date.Format("2006-01-02"), slotStart)
}

func (f *fakeBookings) taken(key string) bool {
	for _, b := range f.byID {
		if b.Status != model.StatusCancelled && slotKey(b.TableID, b.Date, b.SlotStart) == key {
			return true
		}
	}
	return false
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	if f.err != nil {
		return f.err
	}
	if f.taken(slotKey(b.TableID, b.Date, b.SlotStart)) {
		return model.ErrSlotTaken
	}
	f.nextID++
	b.ID = f.nextID
	b.Ref = fmt.Sprintf("ref-%d", f.nextID)
	stored := *b
	f.byID[b.ID] = &stored
	return nil
}

func (f *fakeBookings) Find(_ context.Context, id int64) (*model.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ListUpcomingByUser(_ context.Context, userID int64) ([]model.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Booking
	for _, b := range f.byID {
		if b.UserID == userID && b.Status != model.StatusCancelled {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id int64) error {
	b, ok := f.byID[id]
	if !ok || b.Status == model.StatusCancelled {
		return model.ErrNotFound
	}
	b.Status = model.StatusCancelled
	return nil
}

func (f *fakeBookings) AddFeedback(_ context.Context, id int64, rating int, feedback string) error {
	b, ok := f.byID[id]
	if !ok {
		return model.ErrNotFound
	}
	if rating > 0 {
		b.Rating = rating
	}
	if feedback != "" {
		b.Feedback = feedback
	}
	return nil
}

func (f *fakeBookings) Available(_ context.Context, tableID int64, date time.Time, slotStart string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.taken(slotKey(tableID, date, slotStart)), nil
}

type fakeQuestions struct {
	saved  []model.Question
	nextID int64
}

func (f *fakeQuestions) Save(_ context.Context, q *model.Question) error {
	f.nextID++
	q.ID = f.nextID
	f.saved = append(f.saved, *q)
	return nil
}

// fakeChat records every render and hands out increasing message ids.
type fakeChat struct {
	mu     sync.Mutex
	nextID int
	calls  []string
	texts  []string
}

func (c *fakeChat) record(name, text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.calls = append(c.calls, name)
	c.texts = append(c.texts, text)
	return c.nextID
}

func (c *fakeChat) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return ""
	}
	return c.calls[len(c.calls)-1]
}

func (c *fakeChat) lastText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[len(c.texts)-1]
}

func (c *fakeChat) MainMenu(_ context.Context, _ int64, _ int, _ *locales.Bundle, text string) int {
	return c.record("MainMenu", text)
}

func (c *fakeChat) Clubs(_ context.Context, _ int64, _ int, _ *locales.Bundle, text string, _ []model.Club) int {
	return c.record("Clubs", text)
}

func (c *fakeChat) Calendar(_ context.Context, _ int64, _ int, _ *locales.Bundle, text string, _ model.Club) int {
	return c.record("Calendar", text)
}

func (c *fakeChat) Tables(_ context.Context, _ int64, _ int, _ *locales.Bundle, text string, _ []model.Table) int {
	return c.record("Tables", text)
}

func (c *fakeChat) AskCount(_ context.Context, _ int64, _ int, _ *locales.Bundle, _ model.Table) int {
	return c.record("AskCount", "")
}

func (c *fakeChat) Slots(_ context.Context, _ int64, _ int, _ *locales.Bundle, text string, _ []model.Slot) int {
	return c.record("Slots", text)
}

func (c *fakeChat) AskName(_ context.Context, _ int64, _ int, _ *locales.Bundle) int {
	return c.record("AskName", "")
}

func (c *fakeChat) AskPhone(_ context.Context, _ int64, _ int, _ *locales.Bundle) int {
	return c.record("AskPhone", "")
}

func (c *fakeChat) Confirm(_ context.Context, _ int64, _ int, _ *locales.Bundle, _ model.Club, _ model.Table, _ model.Booking) int {
	return c.record("Confirm", "")
}

func (c *fakeChat) Success(_ context.Context, _ int64, _ int, _ *locales.Bundle, bk model.Booking) int {
	return c.record("Success", bk.Ref)
}

func (c *fakeChat) Cancelled(_ context.Context, _ int64, _ int, _ *locales.Bundle) int {
	return c.record("Cancelled", "")
}

func (c *fakeChat) Error(_ context.Context, _ int64, _ *locales.Bundle) int {
	return c.record("Error", "")
}

func (c *fakeChat) Info(_ context.Context, _ int64, text string) int {
	return c.record("Info", text)
}

func (c *fakeChat) LangSelect(_ context.Context, _ int64, _ int, _ *locales.Bundle, _ []string) int {
	return c.record("LangSelect", "")
}

func (c *fakeChat) ClubList(_ context.Context, _ int64, _ int, _ *locales.Bundle, _ []model.Club) int {
	return c.record("ClubList", "")
}

func (c *fakeChat) ClubCard(_ context.Context, _ int64, _ int, _ *locales.Bundle, club model.Club) int {
	return c.record("ClubCard", club.Name)
}

func (c *fakeChat) Bookings(_ context.Context, _ int64, _ int, _ *locales.Bundle, text string, _ []model.Booking, _ map[int64]string) int {
	return c.record("Bookings", text)
}

func (c *fakeChat) ManageBooking(_ context.Context, _ int64, _ int, _ *locales.Bundle, _ model.Booking, _ string) int {
	return c.record("ManageBooking", "")
}

func (c *fakeChat) AskRating(_ context.Context, _ int64, _ int, _ *locales.Bundle) int {
	return c.record("AskRating", "")
}

func (c *fakeChat) AskQuestion(_ context.Context, _ int64, _ int, _ *locales.Bundle) int {
	return c.record("AskQuestion", "")
}

func (c *fakeChat) ForwardQuestion(_ context.Context, _ int64, q model.Question) {
	c.record("ForwardQuestion", q.Text)
}

type env struct {
	users     *fakeUsers
	clubs     *fakeClubs
	tables    *fakeTables
	bookings  *fakeBookings
	questions *fakeQuestions
	chat      *fakeChat
	deps      Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()

	provider, err := locales.NewProvider("en")
	require.NoError(t, err)

	e := &env{
		users:     &fakeUsers{users: make(map[int64]*model.User)},
		clubs:     &fakeClubs{},
		tables:    &fakeTables{},
		bookings:  &fakeBookings{byID: make(map[int64]*model.Booking)},
		questions: &fakeQuestions{},
		chat:      &fakeChat{},
	}
	e.clubs.clubs = []model.Club{
		{ID: 7, Name: "Neon Hall", Address: "1 Main St", OpenHour: 20, CloseHour: 28, Active: true},
		{ID: 8, Name: "Velvet Room", Address: "2 Side St", OpenHour: 22, CloseHour: 26, Active: true},
	}
	e.tables.tables = []model.Table{
		{ID: 42, ClubID: 7, Number: 5, Seats: 4, Active: true},
		{ID: 43, ClubID: 7, Number: 6, Seats: 8, Active: true},
	}
	e.deps = Deps{
		Users:       e.users,
		Clubs:       e.clubs,
		Tables:      e.tables,
		Bookings:    e.bookings,
		Questions:   e.questions,
		Chat:        e.chat,
		Locales:     provider,
		AdminChatID: 900,
	}
	return e
}

// futureDate is a bookable calendar day.
func futureDate() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 3)
}

// newSessionMachine builds a machine with a resolved user, mirroring what the
// registry does on the first update.
func (e *env) newSessionMachine(chatID int64) *Machine {
	m := NewMachine(chatID, e.deps)
	u := &model.User{ID: 1, TelegramID: chatID, Name: "Ivan", Language: "en"}
	e.users.users[u.ID] = u
	m.Draft().User = u
	m.Draft().Lang = u.Language
	return m
}

// send is a shorthand that fails the test on an unexpected action error.
func send(t *testing.T, m *Machine, ev Event) {
	t.Helper()
	require.NoError(t, m.ProcessEvent(context.Background(), ev))
}
