package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Selectors and labels of the detail-page contract. Extraction only works
// while the site keeps emitting these.
const (
	titleSelector            = "#ad-title"
	priceSelector            = `meta[itemprop="price"]`
	adIDSelector             = `span[itemprop="sku"]`
	locationSelector         = `span[itemprop="address"]`
	locationFallbackSelector = "#show-post-render-app a[href] span"
	charsRowSelector         = "ul.chars-column > li"
	charsKeySelector         = ".key-chars"
	charsValueSelector       = ".value-chars"
	renderMountSelector      = "#show-post-render-app"
	publishedLabel           = "Нийтэлсэн:"
)

// FetchDetail retrieves one listing page and extracts a Record from it.
// Every field is extracted independently; a missing element leaves its field
// empty and is never an error. An error is returned only when the page
// itself cannot be fetched or parsed — the caller decides how to isolate it.
func (s *Scraper) FetchDetail(ctx context.Context, link string) (Record, error) {
	page, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		return Record{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return Record{}, fmt.Errorf("parse listing page %s: %w", link, err)
	}

	if s.renderer != nil && looksLikeRenderShell(doc) {
		page, doc = s.renderEscalate(ctx, link, page, doc)
	}
	s.archivePage(ctx, link, page.Body)

	return parseDetail(doc, link, s.clock.Now()), nil
}

// renderEscalate re-fetches a client-rendered shell through headless Chrome.
// Escalation is best-effort: on any failure the static document is kept.
func (s *Scraper) renderEscalate(ctx context.Context, link string, page Page, doc *goquery.Document) (Page, *goquery.Document) {
	rendered, err := s.renderer.Render(ctx, link)
	if err != nil {
		s.logger.Debug("render escalation failed; keeping static body",
			zap.String("url", link), zap.Error(err))
		return page, doc
	}
	renderedDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(rendered.Body))
	if err != nil {
		s.logger.Debug("rendered body unparseable; keeping static body",
			zap.String("url", link), zap.Error(err))
		return page, doc
	}
	return rendered, renderedDoc
}

// looksLikeRenderShell reports whether the static document is a client-side
// shell: the title element is missing while the render-app mount is present.
func looksLikeRenderShell(doc *goquery.Document) bool {
	if doc.Find(titleSelector).Length() > 0 {
		return false
	}
	return doc.Find(renderMountSelector).Length() > 0
}

// archivePage stores the raw body when an archive is configured. Archive
// problems are warnings, never item failures.
func (s *Scraper) archivePage(ctx context.Context, link string, body []byte) {
	if s.archive == nil || len(body) == 0 {
		return
	}
	digest, err := s.hasher.Hash(body)
	if err != nil {
		s.logger.Warn("hash page body", zap.String("url", link), zap.Error(err))
		return
	}
	key := fmt.Sprintf("%s/%s.html", s.clock.Now().Format(DateLayout), digest[:16])
	if err := s.archive.Save(ctx, key, body); err != nil {
		s.logger.Warn("archive page body",
			zap.String("url", link), zap.String("object", key), zap.Error(err))
	}
}

// parseDetail extracts the record fields from one listing document.
func parseDetail(doc *goquery.Document, pageURL string, now time.Time) Record {
	rec := Record{URL: pageURL}

	rec.Title = strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if content, ok := doc.Find(priceSelector).First().Attr("content"); ok {
		rec.Price = strings.TrimSpace(content)
	}
	rec.AdID = strings.TrimSpace(doc.Find(adIDSelector).First().Text())

	loc := doc.Find(locationSelector).First()
	if loc.Length() == 0 {
		loc = doc.Find(locationFallbackSelector).First()
	}
	rec.Location = strings.TrimSpace(loc.Text())

	rec.Date = publishedDate(doc, now)

	doc.Find(charsRowSelector).Each(func(_ int, li *goquery.Selection) {
		key := li.Find(charsKeySelector).First()
		value := li.Find(charsValueSelector).First()
		if key.Length() == 0 || value.Length() == 0 {
			return
		}
		name := strings.TrimSuffix(strings.TrimSpace(key.Text()), ":")
		rec.Characteristics.Set(name, strings.TrimSpace(value.Text()))
	})

	return rec
}

// publishedDate finds the first span carrying the publish label, strips the
// label, and normalizes the remainder.
func publishedDate(doc *goquery.Document, now time.Time) string {
	var raw string
	found := false
	doc.Find("span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(text, publishedLabel) {
			return true
		}
		raw = strings.TrimSpace(strings.Replace(text, publishedLabel, "", 1))
		found = true
		return false
	})
	if !found {
		return ""
	}
	return NormalizeDate(raw, now)
}
