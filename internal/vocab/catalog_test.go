package vocab

import (
	"testing"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `{
  "topics": [
    {
      "name": "Small Talk",
      "items": [
        {"id": "st-1", "english": "hello", "translations": {"polish": "cześć", "spanish": "hola"}, "difficulty": 1, "free": true},
        {"id": "st-2", "english": "goodbye", "translations": {"polish": "do widzenia", "spanish": "adiós"}, "difficulty": 1, "free": false},
        {"id": "st-3", "english": "thank you", "translations": {"polish": "dziękuję"}, "difficulty": 2, "free": true},
        {"id": "st-4", "english": "excuse me", "translations": {"polish": "przepraszam", "spanish": "perdón"}, "difficulty": 3, "free": false}
      ]
    }
  ]
}`

func parseTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse([]byte(testCatalog))
	require.NoError(t, err)
	return c
}

func cardIDs(deck []domain.Flashcard) []string {
	ids := make([]string, len(deck))
	for i, card := range deck {
		ids[i] = card.ID
	}
	return ids
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c, err := Default()
	require.NoError(t, err)

	var slugs []string
	for _, info := range c.Topics() {
		slugs = append(slugs, info.Slug)
		assert.Positive(t, info.Size)
		assert.Positive(t, info.FreeCount)
	}
	assert.Equal(t, []string{"technology", "finance", "hr", "project-management"}, slugs)

	for _, slug := range slugs {
		for _, lang := range domain.SupportedLanguages() {
			deck, err := c.Deck(slug, lang, DeckOptions{Count: 100, Seed: 1})
			require.NoError(t, err, "%s/%s", slug, lang)
			require.NoError(t, domain.ValidateDeck(deck, domain.FieldEnglish, lang.Field()))
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"topics": [`},
		{"topic without name", `{"topics": [{"items": []}]}`},
		{"duplicate topic slug", `{"topics": [{"name": "HR", "items": []}, {"name": "hr", "items": []}]}`},
		{"item without id", `{"topics": [{"name": "HR", "items": [{"english": "salary"}]}]}`},
		{"duplicate item", `{"topics": [{"name": "HR", "items": [{"id": "a", "english": "x"}, {"id": "a", "english": "y"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestTopic_SlugLookup(t *testing.T) {
	t.Parallel()
	c := parseTestCatalog(t)

	for _, name := range []string{"Small Talk", "small-talk", "SMALL talk"} {
		topic, err := c.Topic(name)
		require.NoError(t, err, name)
		assert.Equal(t, "small-talk", topic.Slug)
	}

	_, err := c.Topic("cooking")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestDeck_FiltersByLanguage(t *testing.T) {
	t.Parallel()
	c := parseTestCatalog(t)

	deck, err := c.Deck("small-talk", domain.LanguageSpanish, DeckOptions{Seed: 7})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"st-1", "st-2", "st-4"}, cardIDs(deck))
	for _, card := range deck {
		assert.Equal(t, "small-talk", card.Category)
	}

	deck, err = c.Deck("small-talk", domain.LanguagePolish, DeckOptions{Seed: 7})
	require.NoError(t, err)
	assert.Len(t, deck, 4)
}

func TestDeck_SeedIsReproducible(t *testing.T) {
	t.Parallel()
	c := parseTestCatalog(t)

	first, err := c.Deck("small-talk", domain.LanguagePolish, DeckOptions{Seed: 42})
	require.NoError(t, err)
	second, err := c.Deck("small-talk", domain.LanguagePolish, DeckOptions{Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, cardIDs(first), cardIDs(second))
}

func TestDeck_Options(t *testing.T) {
	t.Parallel()
	c := parseTestCatalog(t)

	t.Run("count", func(t *testing.T) {
		deck, err := c.Deck("small-talk", domain.LanguagePolish, DeckOptions{Count: 2, Seed: 3})
		require.NoError(t, err)
		assert.Len(t, deck, 2)
	})

	t.Run("max difficulty", func(t *testing.T) {
		deck, err := c.Deck("small-talk", domain.LanguagePolish, DeckOptions{MaxDifficulty: 1, Seed: 3})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"st-1", "st-2"}, cardIDs(deck))
	})

	t.Run("free only", func(t *testing.T) {
		deck, err := c.Deck("small-talk", domain.LanguagePolish, DeckOptions{FreeOnly: true, Seed: 3})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"st-1", "st-3"}, cardIDs(deck))
	})

	t.Run("free and difficulty combine", func(t *testing.T) {
		deck, err := c.Deck("small-talk", domain.LanguagePolish, DeckOptions{FreeOnly: true, MaxDifficulty: 1, Seed: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"st-1"}, cardIDs(deck))
	})
}

func TestDeck_DifficultyFallback(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`{"topics": [{"name": "Hard", "items": [
		{"id": "h-1", "english": "ubiquitous", "translations": {"polish": "wszechobecny"}, "difficulty": 3},
		{"id": "h-2", "english": "meticulous", "translations": {"polish": "skrupulatny"}, "difficulty": 3}
	]}]}`))
	require.NoError(t, err)

	deck, err := c.Deck("hard", domain.LanguagePolish, DeckOptions{MaxDifficulty: 1, Seed: 9})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"h-1", "h-2"}, cardIDs(deck))
}

func TestDeck_Errors(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`{"topics": [{"name": "Empty", "items": [
		{"id": "e-1", "english": "only polish", "translations": {"polish": "tylko polski"}}
	]}]}`))
	require.NoError(t, err)

	_, err = c.Deck("empty", domain.LanguageSpanish, DeckOptions{})
	assert.ErrorIs(t, err, ErrNoCards)

	_, err = c.Deck("missing", domain.LanguagePolish, DeckOptions{})
	assert.ErrorIs(t, err, ErrTopicNotFound)

	_, err = c.Deck("empty", domain.SupportedLanguage("de"), DeckOptions{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}

func TestNewCard(t *testing.T) {
	t.Parallel()

	card, err := NewCard("Hello", "Small Talk", map[domain.LanguageField]string{domain.FieldPolish: "Cześć"})
	require.NoError(t, err)
	assert.Len(t, card.ID, 21)
	assert.Equal(t, "small-talk", card.Category)

	other, err := NewCard("Hello", "", map[domain.LanguageField]string{domain.FieldPolish: "Cześć"})
	require.NoError(t, err)
	assert.NotEqual(t, card.ID, other.ID)
	assert.Equal(t, "custom", other.Category)

	_, err = NewCard("", "x", nil)
	assert.ErrorIs(t, err, domain.ErrCardPrimaryEmpty)
}
