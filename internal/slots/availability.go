package slots

import "time"

// TimeSlot is one candidate start time on a viewed day.
type TimeSlot struct {
	Time      string    `json:"time"`
	Start     time.Time `json:"start"`
	Available bool      `json:"available"`
}

// DaySelectable reports whether day is today or later, compared by calendar
// day in the location of now.
func DaySelectable(now, day time.Time) bool {
	loc := now.Location()
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return !d.Before(Day(now, loc))
}

// Grid pairs every generated start on day with its availability. On past days
// nothing is available; on today any start before now is unavailable.
func Grid(now, day time.Time, w Window) []TimeSlot {
	loc := now.Location()
	selectable := DaySelectable(now, day)
	candidates := w.Generate()
	out := make([]TimeSlot, 0, len(candidates))
	for _, c := range candidates {
		start, err := At(day, c, loc)
		if err != nil {
			continue
		}
		out = append(out, TimeSlot{
			Time:      c,
			Start:     start,
			Available: selectable && !start.Before(now),
		})
	}
	return out
}

// Offered returns only the starts a guest may pick on day.
func Offered(now, day time.Time, w Window) []string {
	var out []string
	for _, s := range Grid(now, day, w) {
		if s.Available {
			out = append(out, s.Time)
		}
	}
	return out
}

// IsOffered reports whether slot is currently bookable on day.
func IsOffered(now, day time.Time, w Window, slot string) bool {
	want, err := ParseClock(slot)
	if err != nil {
		return false
	}
	for _, s := range Offered(now, day, w) {
		if got, _ := ParseClock(s); got == want {
			return true
		}
	}
	return false
}
