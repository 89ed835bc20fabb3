package locales

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderLoadsEmbeddedBundles(t *testing.T) {
	p, err := NewProvider("en")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "ru"}, p.Languages())
}

func TestNewProviderRejectsUnknownDefault(t *testing.T) {
	_, err := NewProvider("xx")
	require.Error(t, err)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	p, err := NewProvider("en")
	require.NoError(t, err)

	en := p.Resolve("en")
	assert.Same(t, en, p.Resolve("xx"))
	assert.NotSame(t, en, p.Resolve("ru"))
}

func TestBundlesAreComplete(t *testing.T) {
	p, err := NewProvider("en")
	require.NoError(t, err)

	for _, lang := range p.Languages() {
		b := p.Resolve(lang)
		for name, s := range map[string]string{
			"menu.book":          b.Menu.Book,
			"menu.book_at_club":  b.Menu.BookAtClub,
			"prompts.welcome":    b.Prompts.Welcome,
			"prompts.confirm":    b.Prompts.Confirm,
			"prompts.help":       b.Prompts.Help,
			"results.booked":     b.Results.Booked,
			"errors.unknown":     b.Errors.Unknown,
			"errors.slot_taken":  b.Errors.SlotTaken,
			"errors.bad_guests":  b.Errors.BadGuests,
			"buttons.back":       b.Buttons.Back,
			"buttons.confirm":    b.Buttons.Confirm,
		} {
			assert.NotEmptyf(t, s, "%s missing in %s", name, lang)
		}
	}
}

func TestFormatStringsHaveExpectedVerbs(t *testing.T) {
	p, err := NewProvider("en")
	require.NoError(t, err)

	for _, lang := range p.Languages() {
		b := p.Resolve(lang)

		out := fmt.Sprintf(b.Menu.BookAtClub, "Neon Hall")
		assert.Contains(t, out, "Neon Hall")
		assert.NotContains(t, out, "%!")

		out = fmt.Sprintf(b.Prompts.Confirm, "Neon Hall", "10.03.2025", 5, 4, "20:00-22:00", "Ivan", "+79123456789")
		assert.NotContains(t, out, "%!", "confirm template in %s must take 7 values", lang)

		out = fmt.Sprintf(b.Errors.BadGuests, 6)
		assert.NotContains(t, out, "%!")
	}
}
