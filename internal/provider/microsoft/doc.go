// Package microsoft implements the calendar provider backed by the Microsoft
// Graph API.
package microsoft
