package vocab

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/phrazzld/vocab-drill/internal/domain"
)

// DefaultDeckSize is the number of cards dealt when DeckOptions.Count is zero.
const DefaultDeckSize = 10

var (
	// ErrTopicNotFound is returned when no topic matches the requested slug.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrNoCards is returned when a topic has no item usable for a deck.
	ErrNoCards = errors.New("no cards available")

	// ErrInvalidCatalog is returned when catalog data fails validation.
	ErrInvalidCatalog = errors.New("invalid vocabulary catalog")
)

//go:embed catalog.json
var embeddedCatalog []byte

// Item is one catalog entry.
type Item struct {
	ID           string                          `json:"id"`
	English      string                          `json:"english"`
	Translations map[domain.LanguageField]string `json:"translations"`
	Difficulty   int                             `json:"difficulty"`
	Free         bool                            `json:"free"`
}

// Topic groups items under a display name.
type Topic struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Items []Item `json:"items"`
}

// TopicInfo summarises a topic for listings.
type TopicInfo struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Size      int    `json:"size"`
	FreeCount int    `json:"free_count"`
}

// DeckOptions controls how a deck is dealt from a topic.
type DeckOptions struct {
	// Count is the deck size; zero means DefaultDeckSize.
	Count int
	// MaxDifficulty drops harder items when positive. If nothing is left
	// the filter is ignored.
	MaxDifficulty int
	// FreeOnly restricts the deck to free items.
	FreeOnly bool
	// Seed makes the shuffle reproducible; zero picks a random seed.
	Seed uint64
}

// Catalog is an immutable set of topics.
type Catalog struct {
	topics []*Topic
	bySlug map[string]*Topic
}

type catalogFile struct {
	Topics []*Topic `json:"topics"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedCatalog)
})

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// Parse decodes and validates catalog JSON.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	c := &Catalog{bySlug: make(map[string]*Topic, len(file.Topics))}
	for _, topic := range file.Topics {
		if topic == nil || strings.TrimSpace(topic.Name) == "" {
			return nil, fmt.Errorf("%w: topic without name", ErrInvalidCatalog)
		}
		topic.Slug = slug.Make(topic.Name)
		if _, dup := c.bySlug[topic.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate topic %q", ErrInvalidCatalog, topic.Slug)
		}

		seen := make(map[string]struct{}, len(topic.Items))
		for _, item := range topic.Items {
			if item.ID == "" || strings.TrimSpace(item.English) == "" {
				return nil, fmt.Errorf("%w: topic %q has an item without id or english text",
					ErrInvalidCatalog, topic.Slug)
			}
			if _, dup := seen[item.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate item %q in topic %q",
					ErrInvalidCatalog, item.ID, topic.Slug)
			}
			seen[item.ID] = struct{}{}
		}

		c.topics = append(c.topics, topic)
		c.bySlug[topic.Slug] = topic
	}
	return c, nil
}

// Topics lists every topic in catalog order.
func (c *Catalog) Topics() []TopicInfo {
	out := make([]TopicInfo, 0, len(c.topics))
	for _, topic := range c.topics {
		info := TopicInfo{Slug: topic.Slug, Name: topic.Name, Size: len(topic.Items)}
		for _, item := range topic.Items {
			if item.Free {
				info.FreeCount++
			}
		}
		out = append(out, info)
	}
	return out
}

// Topic finds a topic by name or slug.
func (c *Catalog) Topic(name string) (*Topic, error) {
	topic, ok := c.bySlug[slug.Make(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTopicNotFound, name)
	}
	return topic, nil
}

// Deck deals shuffled flashcards from a topic for drilling from lang.
// Only items carrying a translation into lang are dealt. Card categories are
// the topic slug.
func (c *Catalog) Deck(topicName string, lang domain.SupportedLanguage, opts DeckOptions) ([]domain.Flashcard, error) {
	field := lang.Field()
	if field == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, string(lang))
	}

	topic, err := c.Topic(topicName)
	if err != nil {
		return nil, err
	}

	eligible := make([]Item, 0, len(topic.Items))
	for _, item := range topic.Items {
		if item.Translations[field] == "" {
			continue
		}
		if opts.FreeOnly && !item.Free {
			continue
		}
		eligible = append(eligible, item)
	}

	pool := eligible
	if opts.MaxDifficulty > 0 {
		pool = make([]Item, 0, len(eligible))
		for _, item := range eligible {
			if item.Difficulty <= opts.MaxDifficulty {
				pool = append(pool, item)
			}
		}
		if len(pool) == 0 {
			pool = eligible
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: topic %q has no %s items", ErrNoCards, topic.Slug, field)
	}

	shuffled := make([]Item, len(pool))
	copy(shuffled, pool)
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	count := opts.Count
	if count <= 0 {
		count = DefaultDeckSize
	}
	if count > len(shuffled) {
		count = len(shuffled)
	}

	deck := make([]domain.Flashcard, 0, count)
	for _, item := range shuffled[:count] {
		card, err := domain.NewFlashcard(item.ID, item.English, topic.Slug, item.Translations)
		if err != nil {
			return nil, fmt.Errorf("catalog item %q: %w", item.ID, err)
		}
		deck = append(deck, *card)
	}
	return deck, nil
}

// NewCard builds an ad-hoc flashcard with a generated id. An empty category
// becomes "custom".
func NewCard(primaryText, category string, translations map[domain.LanguageField]string) (*domain.Flashcard, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate card id: %w", err)
	}
	if strings.TrimSpace(category) == "" {
		category = "custom"
	} else {
		category = slug.Make(category)
	}
	return domain.NewFlashcard(id, primaryText, category, translations)
}
