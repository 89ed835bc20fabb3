// Package locales holds the embedded UI string bundles.
package locales

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed *.json
var bundleFS embed.FS

// Bundle contains every string the bot renders for one language.
type Bundle struct {
	Menu struct {
		Book       string `json:"book"`
		Clubs      string `json:"clubs"`
		MyBookings string `json:"my_bookings"`
		Ask        string `json:"ask"`
		Language   string `json:"language"`
		BookAtClub string `json:"book_at_club"` // fmt: club name
	} `json:"menu"`

	Prompts struct {
		Welcome     string `json:"welcome"`
		ChooseClub  string `json:"choose_club"`
		ChooseDate  string `json:"choose_date"`  // fmt: club name
		ChooseTable string `json:"choose_table"` // fmt: date
		AskGuests   string `json:"ask_guests"`   // fmt: table number, seats
		ChooseSlot  string `json:"choose_slot"`
		AskName     string `json:"ask_name"`
		AskPhone    string `json:"ask_phone"`
		Confirm     string `json:"confirm"` // fmt: club, date, table, guests, slot, name, phone
		ChooseLang  string `json:"choose_lang"`
		ClubList    string `json:"club_list"`
		ClubCard    string `json:"club_card"` // fmt: name, address, description, open, close
		MyBookings  string `json:"my_bookings"`
		Manage      string `json:"manage"` // fmt: club date slot
		AskRating   string `json:"ask_rating"`
		AskQuestion string `json:"ask_question"`
		Help        string `json:"help"`
	} `json:"prompts"`

	Results struct {
		Booked           string `json:"booked"` // fmt: booking ref
		Cancelled        string `json:"cancelled"`
		BookingCancelled string `json:"booking_cancelled"`
		QuestionSent     string `json:"question_sent"`
		FeedbackThanks   string `json:"feedback_thanks"`
		LangSaved        string `json:"lang_saved"`
	} `json:"results"`

	Errors struct {
		Unknown    string `json:"unknown"`
		Fatal      string `json:"fatal"`
		NoClubs    string `json:"no_clubs"`
		NoTables   string `json:"no_tables"`
		NoBookings string `json:"no_bookings"`
		ClubGone   string `json:"club_gone"`
		TableGone  string `json:"table_gone"`
		SlotTaken  string `json:"slot_taken"`
		BookingGone string `json:"booking_gone"`
		BadGuests  string `json:"bad_guests"` // fmt: max guests
		BadName    string `json:"bad_name"`
		BadPhone   string `json:"bad_phone"`
		StartOver  string `json:"start_over"`
		PastDate   string `json:"past_date"`
	} `json:"errors"`

	Buttons struct {
		Back    string `json:"back"`
		Cancel  string `json:"cancel"`
		Confirm string `json:"confirm"`
		Rate    string `json:"rate"`
		CancelB string `json:"cancel_booking"`
		Book    string `json:"book_here"`
	} `json:"buttons"`
}

// Provider resolves a language code to a bundle, falling back to the default.
type Provider struct {
	bundles map[string]*Bundle
	def     string
}

// NewProvider loads every embedded bundle. def must name one of them.
func NewProvider(def string) (*Provider, error) {
	entries, err := bundleFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	p := &Provider{bundles: make(map[string]*Bundle), def: def}
	for _, e := range entries {
		raw, err := bundleFS.ReadFile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", e.Name(), err)
		}
		b := &Bundle{}
		if err := json.Unmarshal(raw, b); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", e.Name(), err)
		}
		lang := e.Name()[:len(e.Name())-len(".json")]
		p.bundles[lang] = b
	}

	if _, ok := p.bundles[def]; !ok {
		return nil, fmt.Errorf("default locale %q not embedded", def)
	}
	return p, nil
}

// Resolve returns the bundle for lang, or the default bundle if unknown.
func (p *Provider) Resolve(lang string) *Bundle {
	if b, ok := p.bundles[lang]; ok {
		return b
	}
	return p.bundles[p.def]
}

// Languages lists the embedded language codes.
func (p *Provider) Languages() []string {
	langs := make([]string, 0, len(p.bundles))
	for code := range p.bundles {
		langs = append(langs, code)
	}
	return langs
}
