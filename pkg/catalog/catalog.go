// Package catalog holds the immutable reference sets (occupation taxonomies,
// course catalogs) that queries are matched against.
//
// A Catalog is loaded once, in full, at startup and never mutated by
// queries. Item position within the catalog is the join key used by the
// vector index, so ordering is part of the contract.
package catalog

import (
	"fmt"
	"strings"
)

// Item is one entry in a reference catalog.
type Item struct {
	// ID is a stable identifier, unique within a catalog.
	ID string `json:"id"`

	// Title is the short display name (occupation title, course name).
	Title string `json:"title"`

	// Text is the descriptive text that actually gets embedded. It may
	// concatenate title, description, synonyms and skill lists.
	Text string `json:"text"`

	// Metadata carries extra source fields returned with a match
	// (course URL, duration, skill lists). Read it through the accessors;
	// callers must not assume specific keys exist.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StringField returns the metadata value for key as a string, or def when
// the key is absent or not a string.
func (i Item) StringField(key, def string) string {
	v, ok := i.Metadata[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// IntField returns the metadata value for key as an int, or def when the
// key is absent or not numeric. JSON decoding yields float64 for numbers.
func (i Item) IntField(key string, def int) int {
	v, ok := i.Metadata[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// Catalog is an immutable ordered collection of items.
type Catalog struct {
	name  string
	items []Item
}

// New builds a catalog from items. Items with no descriptive text are
// dropped, mirroring the source filtering of the occupation dataset; items
// with no ID get a positional one so results always carry an identifier.
func New(name string, items []Item) *Catalog {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("%s-%d", name, len(kept))
		}
		kept = append(kept, item)
	}
	return &Catalog{name: name, items: kept}
}

// Name returns the catalog name (e.g. "occupations", "courses").
func (c *Catalog) Name() string {
	return c.name
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// At returns the item at position i. Position is the row index assigned at
// load time and used by the vector index.
func (c *Catalog) At(i int) (Item, bool) {
	if i < 0 || i >= len(c.items) {
		return Item{}, false
	}
	return c.items[i], true
}

// Items returns the ordered item slice. Callers must treat it as read-only.
func (c *Catalog) Items() []Item {
	return c.items
}

// Texts returns the descriptive texts in catalog order, ready for a batch
// embedding call.
func (c *Catalog) Texts() []string {
	texts := make([]string, len(c.items))
	for i, item := range c.items {
		texts[i] = item.Text
	}
	return texts
}
