package scraper

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

var pageParamPattern = regexp.MustCompile(`[?&]page=(\d+)`)

// LastPage fetches the category index once and returns the highest page
// number advertised by any link on it, or 1 when no pagination links are
// present. A failed fetch is fatal for the category: without a page count no
// links can be collected, so the error propagates to the caller undecorated.
func (s *Scraper) LastPage(ctx context.Context, baseURL string) (int, error) {
	page, err := s.fetcher.Fetch(ctx, baseURL)
	if err != nil {
		return 0, err
	}
	indexPagesFetched.Inc()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return 0, fmt.Errorf("parse category index %s: %w", baseURL, err)
	}
	return maxPageParam(doc), nil
}

// maxPageParam scans every hyperlink for a numeric page query parameter and
// returns the largest value found, defaulting to 1 for single-page
// categories.
func maxPageParam(doc *goquery.Document) int {
	last := 1
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		m := pageParamPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > last {
			last = n
		}
	})
	return last
}
