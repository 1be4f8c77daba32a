// Package api implements the HTTP control surface for the scraper.
//
// Scrape runs are submitted as asynchronous jobs: POST /v1/scrapes
// enqueues a job and returns its id, and the remaining endpoints read
// job state and scraped records back out of the job store. Handlers
// never block on scraping work.
package api
