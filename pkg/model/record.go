// Package model defines catalog change reports: records, the nested node
// tree describing a report, and the highlight policy that marks changed
// timestamp cells.
package model

import (
	"strings"
	"time"
)

// Record is one catalog record as returned by the org.
type Record struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name,omitempty" yaml:"name,omitempty"`
	CreatedDate      string            `json:"created_date,omitempty" yaml:"created_date,omitempty"`
	LastModifiedDate string            `json:"last_modified_date,omitempty" yaml:"last_modified_date,omitempty"`
	Fields           map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// DedupeByID returns records with duplicate IDs removed, keeping the first
// occurrence. Records without an ID are always kept.
func DedupeByID(records []*Record) []*Record {
	seen := make(map[string]bool, len(records))
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.ID != "" {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
		}
		out = append(out, r)
	}
	return out
}

// RecordURL links a record ID to its page in the org. It returns "" when
// either part is missing.
func RecordURL(instanceURL, id string) string {
	if instanceURL == "" || id == "" {
		return ""
	}
	return strings.TrimRight(instanceURL, "/") + "/" + id
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700", // Salesforce API format
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a record timestamp. Timestamps without a zone are
// taken as UTC. The result is always in UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// HighlightPolicy decides which timestamp cells are marked as changed.
type HighlightPolicy struct {
	Cutoff time.Time
}

// Marked reports whether the timestamp is at or after the cutoff. Empty or
// unparseable timestamps are never marked, and a zero cutoff marks nothing.
func (p HighlightPolicy) Marked(ts string) bool {
	if p.Cutoff.IsZero() {
		return false
	}
	t, ok := ParseTimestamp(ts)
	return ok && !t.Before(p.Cutoff)
}

// Classes returns the created/modified highlight flags for a record.
func (p HighlightPolicy) Classes(r *Record) (created, modified bool) {
	if r == nil {
		return false, false
	}
	return p.Marked(r.CreatedDate), p.Marked(r.LastModifiedDate)
}
