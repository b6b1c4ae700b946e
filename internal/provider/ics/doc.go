// Package ics implements a read-only calendar provider backed by an ICS feed
// subscription. Recurring events are expanded into concrete occurrences at
// fetch time, so the engine sees the same pre-expanded shape the API-backed
// providers deliver.
package ics
