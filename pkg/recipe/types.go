// Package recipe provides named view presets: a cutoff, the initial filter
// state and how deep the tree starts collapsed. Builtin recipes can be
// overridden or disabled from the user config directory and from the
// project's .ct directory.
package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/changetree/pkg/model"
)

// Recipe is one named view preset.
type Recipe struct {
	Name        string `yaml:"-" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Since is the highlight cutoff: a relative span ("14d", "2w", "1m",
	// "1y"), a date or an RFC3339 timestamp. Empty keeps the report's cutoff.
	Since string `yaml:"since,omitempty" json:"since,omitempty"`
	// OnlyHighlighted starts with the highlight filter on.
	OnlyHighlighted bool `yaml:"only_highlighted,omitempty" json:"only_highlighted,omitempty"`
	// CollapseDepth collapses every row at this depth or deeper; nil leaves
	// the loaded collapse state alone.
	CollapseDepth *int `yaml:"collapse_depth,omitempty" json:"collapse_depth,omitempty"`
	// Columns overrides the designated highlight cells.
	Columns []int `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Cutoff resolves Since relative to now. The zero time means "use the
// report's cutoff".
func (r *Recipe) Cutoff(now time.Time) (time.Time, error) {
	if r == nil {
		return time.Time{}, nil
	}
	return ParseRelativeTime(r.Since, now)
}

// Summary is a short description of a recipe for listings.
type Summary struct {
	Name        string
	Description string
	Source      string
}

// TimeParseError reports an unrecognized time specification.
type TimeParseError struct {
	Input string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("unrecognized time %q: use 14d, 2w, 1m, 1y, YYYY-MM-DD or RFC3339", e.Input)
}

var relativePattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParseRelativeTime turns a time specification into an absolute time.
// Relative spans count back from now; a bare date is midnight in now's
// location; anything else goes through model.ParseTimestamp. Empty input
// yields the zero time.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if m := relativePattern.FindStringSubmatch(strings.ToLower(s)); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, &TimeParseError{Input: s}
		}
		switch m[2] {
		case "d":
			return now.AddDate(0, 0, -n), nil
		case "w":
			return now.AddDate(0, 0, -7*n), nil
		case "m":
			return now.AddDate(0, -n, 0), nil
		default:
			return now.AddDate(-n, 0, 0), nil
		}
	}

	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if t, ok := model.ParseTimestamp(s); ok {
		return t, nil
	}
	return time.Time{}, &TimeParseError{Input: s}
}
