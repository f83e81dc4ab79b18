// Package device turns raw User-Agent strings into the display names shown
// on the session-management screen.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent produces a short human-readable device name such as
// "Chrome on Mac OS X" or "Safari on iPhone". Unknown or empty agents map
// to "Unknown Device".
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	platform := ua.Platform()

	// Prefer the concrete platform for mobile devices ("iPhone", "iPad").
	if platform == "iPhone" || platform == "iPad" {
		os = platform
	}

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown Device"
	}
}
