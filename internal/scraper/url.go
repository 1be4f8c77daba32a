package scraper

import (
	"fmt"
	"strings"
)

// listingPageURL builds the index URL for one page of a category.
func listingPageURL(base string, page int) string {
	return fmt.Sprintf("%s?page=%d", base, page)
}

// absoluteListingURL resolves a listing href against the site origin.
// Listing anchors normally carry site-relative paths; absolute hrefs are
// passed through untouched.
func absoluteListingURL(origin, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return origin + href
}
