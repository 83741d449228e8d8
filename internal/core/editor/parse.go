package editor

import (
	"errors"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnparsableTime is returned when no layout or phrase matches
var ErrUnparsableTime = errors.New("unrecognized date/time")

// DisplayLayout is how the editor shows start and end values
const DisplayLayout = "2006-01-02 15:04:05"

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseTime reads a start or end value typed by the user, relative to base.
// Clock-only input lands on base's day.
func ParseTime(input string, base time.Time) (time.Time, error) {
	return ParseTimeOn(input, base, base)
}

// ParseTimeOn is ParseTime with clock-only input ("10:45") placed on day
// instead of now. Absolute layouts are read in day's location; phrases like
// "10 minutes ago" stay relative to now.
func ParseTimeOn(input string, day, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, ErrUnparsableTime
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}

	loc := day.Location()
	for _, layout := range []string{DisplayLayout, "2006-01-02 15:04", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}

	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	result, err := parser.Parse(input, now)
	if err == nil && result != nil {
		return result.Time, nil
	}
	return time.Time{}, ErrUnparsableTime
}

// FormatTime renders t the way ParseTime reads it back
func FormatTime(t time.Time) string {
	return t.Format(DisplayLayout)
}
