// Package models defines data structures for the announcement watcher.
package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar format used in serialized records.
const DateLayout = "2006-01-02"

// Record represents one announcement entry scraped from the listing
// page. Every field is optional: a missing sub-element or an
// unparseable date leaves the field nil rather than substituting a
// sentinel value.
type Record struct {
	Link  *string    `json:"link,omitempty"`
	Title *string    `json:"title,omitempty"`
	Date  *time.Time `json:"date,omitempty"`
}

// MarshalJSON serializes the record with the date reduced to its
// calendar day, matching the notification payload format.
func (r Record) MarshalJSON() ([]byte, error) {
	type wire struct {
		Link  *string `json:"link,omitempty"`
		Title *string `json:"title,omitempty"`
		Date  string  `json:"date,omitempty"`
	}

	w := wire{
		Link:  r.Link,
		Title: r.Title,
	}
	if r.Date != nil {
		w.Date = r.Date.Format(DateLayout)
	}

	return json.Marshal(w)
}

// Feed is the ordered list of records in document order. The source
// page lists the most recent announcement first.
type Feed []Record

// CanonicalJSON returns the stable serialization of the feed used for
// both the notification body and the checkpoint digest. A nil feed
// serializes as an empty array.
func (f Feed) CanonicalJSON() ([]byte, error) {
	if f == nil {
		f = Feed{}
	}

	return json.MarshalIndent(f, "", "  ")
}
