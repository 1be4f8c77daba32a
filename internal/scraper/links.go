package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Markers identifying listing anchors on the index pages.
const (
	listingAnchorSelector = "a.mask"
	listingHrefPrefix     = "/adv/"
)

// CollectLinks fetches every index page 1..totalPages in order and returns
// the absolute detail-page URLs found on them, page order then document
// order. Index pages are cheap relative to detail pages, so this phase runs
// sequentially. Any page failure aborts the whole collection: a partial link
// set usually means a systemic problem rather than a one-off, so it is not
// silently accepted.
func (s *Scraper) CollectLinks(ctx context.Context, baseURL string, totalPages int) ([]string, error) {
	var links []string
	for i := 1; i <= totalPages; i++ {
		pageURL := listingPageURL(baseURL, i)
		page, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		indexPagesFetched.Inc()
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
		if err != nil {
			return nil, fmt.Errorf("parse index page %s: %w", pageURL, err)
		}
		before := len(links)
		links = append(links, listingLinks(doc, s.cfg.SiteOrigin)...)
		s.logger.Debug("collected listing links",
			zap.String("page", pageURL),
			zap.Int("found", len(links)-before))
	}
	return links, nil
}

// listingLinks extracts the detail-page URLs from one index document.
func listingLinks(doc *goquery.Document, origin string) []string {
	var out []string
	doc.Find(listingAnchorSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.HasPrefix(href, listingHrefPrefix) {
			return
		}
		out = append(out, absoluteListingURL(origin, href))
	})
	return out
}
