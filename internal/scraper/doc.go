// Package scraper implements the unegui.mn listing extraction pipeline:
// page-count discovery, listing-link collection, concurrent detail-page
// fetching with per-item failure isolation, and relative-date normalization.
package scraper
