package meet

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMeetDomain is the provider domain used in placeholder links.
	DefaultMeetDomain = "google.com"

	PrefixAuthFallback   = "fallback_auth_"
	PrefixAPIFallback    = "fallback_api_"
	PrefixSystemFallback = "fallback_sys_"

	linkAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// PlaceholderLink returns a link shaped like https://meet.<domain>/abc-def-ghi.
// It is cosmetic: nothing guarantees uniqueness.
func PlaceholderLink(domain string) string {
	if domain == "" {
		domain = DefaultMeetDomain
	}
	return "https://meet." + domain + "/" + segment() + "-" + segment() + "-" + segment()
}

func segment() string {
	b := make([]byte, 3)
	for i := range b {
		b[i] = linkAlphabet[rand.Intn(len(linkAlphabet))]
	}
	return string(b)
}

func fallbackID(prefix string, now time.Time) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsFallback reports whether a meeting id came from one of the fallback paths
// rather than from the provider.
func IsFallback(meetingID string) bool {
	return strings.HasPrefix(meetingID, PrefixAuthFallback) ||
		strings.HasPrefix(meetingID, PrefixAPIFallback) ||
		strings.HasPrefix(meetingID, PrefixSystemFallback)
}
