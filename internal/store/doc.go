// Package store persists the account registry and the calendar selection
// cache in a local SQLite database.
//
// The engine never touches this package directly; the command layer resolves
// the selected calendars here and hands the engine a read-only list of
// sources. OAuth tokens are not stored here, see the auth package.
package store
