// Package sinks contains progress.Sink implementations that mirror scrape
// progress into logs, Prometheus collectors, and the job store.
package sinks
