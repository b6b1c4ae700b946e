// Package google implements the calendar provider backed by the Google
// Calendar API.
package google
