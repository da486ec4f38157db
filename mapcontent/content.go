// Package mapcontent holds the map document moved between callers and storage adapters.
// The repository treats Content as opaque: it is replaced as a whole, never edited in place.
package mapcontent

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FormatVersion is the current document format marker
const FormatVersion = 2

const rootID = 1

var ErrUnsupportedFormat = errors.New("unsupported map format version")

type Content struct {
	Title         string           `json:"title"`
	FormatVersion int              `json:"formatVersion"`
	ID            int              `json:"id"`
	Ideas         map[string]*Idea `json:"ideas,omitempty"`
	Attr          map[string]any   `json:"attr,omitempty"`
}

type Idea struct {
	ID    int              `json:"id"`
	Title string           `json:"title"`
	Ideas map[string]*Idea `json:"ideas,omitempty"`
	Attr  map[string]any   `json:"attr,omitempty"`
}

// New returns an initialised single-node map
func New(title string) *Content {
	c := &Content{Title: title}
	c.init()
	return c
}

// init stamps the format version and the root id on documents that lack them
func (c *Content) init() {
	if c.FormatVersion == 0 {
		c.FormatVersion = FormatVersion
	}
	if c.ID == 0 {
		c.ID = rootID
	}
}

// Parse decodes a JSON document, filling in the version marker for legacy documents
func Parse(data []byte) (*Content, error) {
	c := &Content{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse map content: %w", err)
	}
	if c.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, c.FormatVersion)
	}
	c.init()
	return c, nil
}

func Marshal(c *Content) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil map content")
	}
	return json.Marshal(c)
}

// Clone returns a deep copy; adapters keep clones so callers can't alter stored documents
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	return &Content{
		Title:         c.Title,
		FormatVersion: c.FormatVersion,
		ID:            c.ID,
		Ideas:         cloneIdeas(c.Ideas),
		Attr:          cloneAttr(c.Attr),
	}
}

func cloneIdeas(ideas map[string]*Idea) map[string]*Idea {
	if ideas == nil {
		return nil
	}
	res := make(map[string]*Idea, len(ideas))
	for rank, idea := range ideas {
		res[rank] = &Idea{
			ID:    idea.ID,
			Title: idea.Title,
			Ideas: cloneIdeas(idea.Ideas),
			Attr:  cloneAttr(idea.Attr),
		}
	}
	return res
}

// attributes are plain JSON values, a JSON round trip copies them deeply
func cloneAttr(attr map[string]any) map[string]any {
	if attr == nil {
		return nil
	}
	data, err := json.Marshal(attr)
	if err != nil {
		return attr
	}
	res := make(map[string]any, len(attr))
	if err = json.Unmarshal(data, &res); err != nil {
		return attr
	}
	return res
}
