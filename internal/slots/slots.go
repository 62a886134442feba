// Package slots generates the bookable start times for a day and filters
// them against the current time.
package slots

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const fullDay = 24 * time.Hour

var (
	ErrInvalidWindow = errors.New("invalid booking window")
	ErrInvalidClock  = errors.New("invalid HH:MM value")
)

// Window is the daily working window, expressed as offsets from local midnight.
type Window struct {
	Start time.Duration
	End   time.Duration
	Step  time.Duration
}

// DefaultWindow is 09:00-17:00 in 30 minute steps.
func DefaultWindow() Window {
	return Window{Start: 9 * time.Hour, End: 17 * time.Hour, Step: 30 * time.Minute}
}

// ParseWindow builds a Window from "HH:MM" bounds and a step in minutes.
func ParseWindow(start, end string, stepMinutes int) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e, Step: time.Duration(stepMinutes) * time.Minute}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks that the window produces at least one slot within a single day.
func (w Window) Validate() error {
	switch {
	case w.Step <= 0:
		return fmt.Errorf("%w: step must be positive", ErrInvalidWindow)
	case w.Start < 0 || w.End > fullDay:
		return fmt.Errorf("%w: bounds must be within one day", ErrInvalidWindow)
	case w.Start >= w.End:
		return fmt.Errorf("%w: start must be before end", ErrInvalidWindow)
	}
	return nil
}

// Generate returns the candidate start times for any day, ascending.
// The grid never depends on the meeting duration; a start is skipped only
// when its step would run past midnight.
func (w Window) Generate() []string {
	if w.Validate() != nil {
		return nil
	}
	out := make([]string, 0, int((w.End-w.Start)/w.Step))
	for off := w.Start; off < w.End; off += w.Step {
		if off+w.Step > fullDay {
			break
		}
		out = append(out, FormatClock(off))
	}
	return out
}

// ParseClock parses "H:MM" or "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// FormatClock renders an offset from midnight as "HH:MM".
func FormatClock(off time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(off/time.Hour), int((off%time.Hour)/time.Minute))
}

// Day returns local midnight of the calendar day t falls on in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// At combines the calendar date of day with a "HH:MM" slot as wall-clock time in loc.
// Only the year, month and day fields of day are used.
func At(day time.Time, slot string, loc *time.Location) (time.Time, error) {
	off, err := ParseClock(slot)
	if err != nil {
		return time.Time{}, err
	}
	h := int(off / time.Hour)
	m := int((off % time.Hour) / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), nil
}
