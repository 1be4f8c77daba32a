// Package scraper defines core types shared across the pipeline.
package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies one listing index to scrape. Values come from
// configuration and are passed into the pipeline explicitly; they are never
// mutated.
type Category struct {
	Key   string `json:"key" mapstructure:"key"`
	Label string `json:"label" mapstructure:"label"`
	URL   string `json:"url" mapstructure:"url"`
}

// Page is one fetched HTTP document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Rendered   bool
}

// Record is one parsed listing. Every fixed field except URL is optional:
// an absent source element leaves the field empty, which is not an error.
// A Record is immutable once returned by the detail fetcher.
type Record struct {
	Title           string          `json:"title,omitempty"`
	Price           string          `json:"price,omitempty"`
	AdID            string          `json:"ad_id,omitempty"`
	Location        string          `json:"location,omitempty"`
	Date            string          `json:"date,omitempty"`
	URL             string          `json:"url"`
	Characteristics Characteristics `json:"characteristics,omitzero"`
}

// Characteristics holds the open-ended labeled attributes of a listing
// (room count, area, and so on). Keys keep the document order of the rows
// they were extracted from; setting an existing key overwrites its value
// without moving it.
type Characteristics struct {
	keys   []string
	values map[string]string
}

// Set stores one key/value pair, appending the key on first sight.
func (c *Characteristics) Set(key, value string) {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value for key and whether it is present.
func (c Characteristics) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (c Characteristics) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len reports the number of stored pairs.
func (c Characteristics) Len() int {
	return len(c.keys)
}

// IsZero reports whether no pairs are stored; json uses it for omitzero.
func (c Characteristics) IsZero() bool {
	return len(c.keys) == 0
}

// MarshalJSON encodes the pairs as a JSON object in insertion order.
func (c Characteristics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal characteristic key: %w", err)
		}
		vb, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal characteristic value: %w", err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving its key order.
func (c *Characteristics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode characteristics: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode characteristics: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode characteristic key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode characteristic key: unexpected token %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode characteristic value for %q: %w", key, err)
		}
		c.Set(key, value)
	}
	return nil
}

// Result aggregates one category scrape. Records are unordered; links that
// failed are simply absent, so len(Records) <= Total.
type Result struct {
	Category Category      `json:"category"`
	Records  []Record      `json:"records"`
	Total    int           `json:"total_links"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}
