package ua

import "strings"

// ClientInfo holds the device class and browser family parsed from a
// User-Agent string.
type ClientInfo struct {
	Device  string
	Browser string
}

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// Parse classifies a raw User-Agent header. It only needs to be good enough
// for reporting; anything unrecognized falls through to "unknown".
func Parse(raw string) ClientInfo {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ClientInfo{Device: DeviceUnknown, Browser: "unknown"}
	}
	return ClientInfo{Device: parseDevice(s), Browser: parseBrowser(s)}
}

func parseDevice(s string) string {
	switch {
	case strings.Contains(s, "ipad") || strings.Contains(s, "tablet"):
		return DeviceTablet
	// Android tablets do not carry "Mobile" in their UA, so check Mobile last.
	case strings.Contains(s, "mobile") || strings.Contains(s, "iphone"):
		return DeviceMobile
	case strings.Contains(s, "android"):
		return DeviceTablet
	case strings.Contains(s, "windows") || strings.Contains(s, "macintosh") ||
		strings.Contains(s, "x11") || strings.Contains(s, "linux"):
		return DeviceDesktop
	default:
		return DeviceUnknown
	}
}

func parseBrowser(s string) string {
	switch {
	case strings.Contains(s, "edg/") || strings.Contains(s, "edge/"):
		return "edge"
	case strings.Contains(s, "opr/") || strings.Contains(s, "opera"):
		return "opera"
	case strings.Contains(s, "samsungbrowser"):
		return "samsung"
	case strings.Contains(s, "firefox/"):
		return "firefox"
	case strings.Contains(s, "chrome/") || strings.Contains(s, "crios/"):
		return "chrome"
	case strings.Contains(s, "safari/"):
		return "safari"
	default:
		return "unknown"
	}
}
