package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimezoneResolver reports the guest's current zone.
type TimezoneResolver func() *time.Location

// SystemTimezone returns the zone the process reads wall clocks in. Go names
// that zone "Local" whatever its rules; ZoneName recovers an IANA name for it.
func SystemTimezone() *time.Location {
	return time.Local
}

// zoneCandidates lists IANA names the host may be configured with, most
// specific first.
var zoneCandidates = func() []string {
	var names []string
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		names = append(names, tz)
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if _, zone, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/"); ok {
			names = append(names, zone)
		}
	}
	if raw, err := os.ReadFile("/etc/timezone"); err == nil {
		if zone := strings.TrimSpace(string(raw)); zone != "" {
			names = append(names, zone)
		}
	}
	return names
}

// ZoneName returns a name the server can load for loc. For the process zone
// it picks the first configured IANA zone whose offset at `at` matches, then a
// fixed Etc/GMT zone for whole-hour offsets, then UTC. The absolute times sent
// with a booking carry their offset, so the name never shifts the meeting.
func ZoneName(loc *time.Location, at time.Time) string {
	if loc == nil {
		return "UTC"
	}
	if name := loc.String(); name != "Local" && name != "" {
		return name
	}
	_, offset := at.In(loc).Zone()
	for _, name := range zoneCandidates() {
		cand, err := time.LoadLocation(name)
		if err != nil || cand.String() == "Local" {
			continue
		}
		if _, off := at.In(cand).Zone(); off == offset {
			return cand.String()
		}
	}
	switch {
	case offset == 0:
		return "UTC"
	case offset%3600 == 0:
		// Etc/GMT signs are inverted: Etc/GMT-2 is UTC+02:00.
		return fmt.Sprintf("Etc/GMT%+d", -offset/3600)
	}
	return "UTC"
}
