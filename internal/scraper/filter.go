package scraper

import (
	"fmt"
	"time"
)

// Layouts accepted when re-parsing normalized record dates.
var recordDateLayouts = []string{"2006-01-02 15:04", DateLayout}

// DateFilter keeps records published within an inclusive day range. A zero
// bound leaves that side open.
type DateFilter struct {
	From time.Time
	To   time.Time
}

// ParseDateFilter builds a filter from YYYY-MM-DD bounds. Both empty means
// no filtering and returns nil.
func ParseDateFilter(from, to string) (*DateFilter, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	var f DateFilter
	if from != "" {
		t, err := time.Parse(DateLayout, from)
		if err != nil {
			return nil, fmt.Errorf("parse from date %q: %w", from, err)
		}
		f.From = t
	}
	if to != "" {
		t, err := time.Parse(DateLayout, to)
		if err != nil {
			return nil, fmt.Errorf("parse to date %q: %w", to, err)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, fmt.Errorf("to date %s precedes from date %s", to, from)
	}
	return &f, nil
}

// Apply returns the records whose normalized Date parses and falls inside
// the range. Records with an absent or unparseable date are dropped when a
// filter is active; a nil filter keeps everything.
func (f *DateFilter) Apply(records []Record) []Record {
	if f == nil {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		ts, ok := parseRecordDate(r.Date)
		if !ok {
			continue
		}
		if !f.From.IsZero() && ts.Before(f.From) {
			continue
		}
		// The To bound covers the whole day.
		if !f.To.IsZero() && !ts.Before(f.To.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func parseRecordDate(raw string) (time.Time, bool) {
	for _, layout := range recordDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
