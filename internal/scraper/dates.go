package scraper

import (
	"strings"
	"time"
)

// Relative-date tokens emitted by the site on freshly published listings.
const (
	tokenToday     = "Өнөөдөр"
	tokenYesterday = "Өчигдөр"
)

// DateLayout is the absolute day format produced by NormalizeDate.
const DateLayout = "2006-01-02"

// NormalizeDate resolves the site's relative date tokens against now:
// "Өнөөдөр 14:30" becomes "<today> 14:30", "Өчигдөр 09:00" becomes
// "<yesterday> 09:00". Strings without a token pass through unchanged, since
// listings older than a day already carry an absolute date.
func NormalizeDate(raw string, now time.Time) string {
	switch {
	case strings.Contains(raw, tokenToday):
		return prefixDay(now, strings.Replace(raw, tokenToday, "", 1))
	case strings.Contains(raw, tokenYesterday):
		return prefixDay(now.AddDate(0, 0, -1), strings.Replace(raw, tokenYesterday, "", 1))
	default:
		return raw
	}
}

func prefixDay(day time.Time, remainder string) string {
	remainder = strings.TrimSpace(remainder)
	if remainder == "" {
		return day.Format(DateLayout)
	}
	return day.Format(DateLayout) + " " + remainder
}
