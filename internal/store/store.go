package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Platform identifies which backend an account belongs to.
type Platform string

const (
	PlatformGoogle    Platform = "google"
	PlatformMicrosoft Platform = "microsoft"
	PlatformICS       Platform = "ics"
)

// Platforms lists all supported platforms.
var Platforms = []Platform{PlatformGoogle, PlatformMicrosoft, PlatformICS}

// ParsePlatform validates a platform name from user input.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (expected google, microsoft or ics)", s)
}

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Account is one linked calendar account. URL is only set for ICS feed
// accounts and holds the subscription address.
type Account struct {
	ID       int64
	Name     string
	Platform Platform
	URL      string
}

// Calendar is one cached calendar belonging to an account.
type Calendar struct {
	AccountID int64
	ID        string
	Name      string
	Selected  bool
	CanEdit   bool
	HoldEvent bool
}

// Store wraps the SQLite database holding accounts and calendars.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary initializes) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id       INTEGER PRIMARY KEY,
		name     TEXT NOT NULL,
		platform TEXT NOT NULL,
		url      TEXT NOT NULL DEFAULT '',
		UNIQUE (name, platform)
	);
	CREATE TABLE IF NOT EXISTS calendars (
		account_id  INTEGER NOT NULL,
		calendar_id TEXT NOT NULL,
		name        TEXT NOT NULL,
		selected    BOOLEAN NOT NULL DEFAULT 0,
		can_edit    BOOLEAN NOT NULL DEFAULT 0,
		hold_event  BOOLEAN NOT NULL DEFAULT 0,
		PRIMARY KEY (account_id, calendar_id),
		FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddAccount registers a new account and returns its identifier. url is
// empty except for ICS feed accounts.
func (s *Store) AddAccount(name string, platform Platform, url string) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO accounts (name, platform, url) VALUES (?, ?, ?)", name, string(platform), url)
	if err != nil {
		return 0, fmt.Errorf("failed to insert account %s: %w", name, err)
	}
	return res.LastInsertId()
}

// RemoveAccount deletes an account and, via the foreign key, its calendars.
func (s *Store) RemoveAccount(name string, platform Platform) error {
	res, err := s.db.Exec(
		"DELETE FROM accounts WHERE name = ? AND platform = ?", name, string(platform))
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account %s on %s: %w", name, platform, ErrNotFound)
	}
	return nil
}

// Accounts returns all registered accounts.
func (s *Store) Accounts() ([]Account, error) {
	rows, err := s.db.Query("SELECT id, name, platform, url FROM accounts ORDER BY name, platform")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		var platform string
		if err := rows.Scan(&a.ID, &a.Name, &platform, &a.URL); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Platform = Platform(platform)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountByName looks up one account by name and platform.
func (s *Store) AccountByName(name string, platform Platform) (*Account, error) {
	var a Account
	var p string
	err := s.db.QueryRow(
		"SELECT id, name, platform, url FROM accounts WHERE name = ? AND platform = ?",
		name, string(platform)).Scan(&a.ID, &a.Name, &p, &a.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s on %s: %w", name, platform, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", name, err)
	}
	a.Platform = Platform(p)
	return &a, nil
}

// ReplaceCalendars swaps the cached calendar list for an account, preserving
// the previous selection and hold flags of calendars that still exist.
func (s *Store) ReplaceCalendars(accountID int64, calendars []Calendar) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	prev := make(map[string]Calendar)
	rows, err := tx.Query(
		"SELECT calendar_id, selected, hold_event FROM calendars WHERE account_id = ?", accountID)
	if err != nil {
		return fmt.Errorf("failed to query previous calendars: %w", err)
	}
	for rows.Next() {
		var c Calendar
		if err := rows.Scan(&c.ID, &c.Selected, &c.HoldEvent); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan previous calendar: %w", err)
		}
		prev[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if _, err := tx.Exec("DELETE FROM calendars WHERE account_id = ?", accountID); err != nil {
		return fmt.Errorf("failed to clear calendars: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO calendars (account_id, calendar_id, name, selected, can_edit, hold_event) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range calendars {
		selected := c.Selected
		holdEvent := c.HoldEvent
		if p, ok := prev[c.ID]; ok {
			selected = p.Selected
			holdEvent = p.HoldEvent
		}
		if _, err := stmt.Exec(accountID, c.ID, c.Name, selected, c.CanEdit, holdEvent); err != nil {
			return fmt.Errorf("failed to insert calendar %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Calendars returns all cached calendars for an account.
func (s *Store) Calendars(accountID int64) ([]Calendar, error) {
	return s.queryCalendars(
		"SELECT account_id, calendar_id, name, selected, can_edit, hold_event FROM calendars WHERE account_id = ? ORDER BY name",
		accountID)
}

// SelectedCalendars returns every calendar marked for availability queries,
// across all accounts.
func (s *Store) SelectedCalendars() ([]Calendar, error) {
	return s.queryCalendars(
		"SELECT account_id, calendar_id, name, selected, can_edit, hold_event FROM calendars WHERE selected = 1 ORDER BY account_id, name")
}

// SetSelected marks or unmarks a calendar for availability queries.
func (s *Store) SetSelected(accountID int64, calendarID string, selected bool) error {
	res, err := s.db.Exec(
		"UPDATE calendars SET selected = ? WHERE account_id = ? AND calendar_id = ?",
		selected, accountID, calendarID)
	if err != nil {
		return fmt.Errorf("failed to update selection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("calendar %s: %w", calendarID, ErrNotFound)
	}
	return nil
}

// SetHoldCalendar nominates the single calendar used to create hold events.
// Any previous nomination is cleared.
func (s *Store) SetHoldCalendar(accountID int64, calendarID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("UPDATE calendars SET hold_event = 0"); err != nil {
		return fmt.Errorf("failed to clear hold calendar: %w", err)
	}
	res, err := tx.Exec(
		"UPDATE calendars SET hold_event = 1 WHERE account_id = ? AND calendar_id = ?",
		accountID, calendarID)
	if err != nil {
		return fmt.Errorf("failed to set hold calendar: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("calendar %s: %w", calendarID, ErrNotFound)
	}

	return tx.Commit()
}

// HoldCalendar returns the calendar nominated for hold events.
func (s *Store) HoldCalendar() (*Calendar, error) {
	cals, err := s.queryCalendars(
		"SELECT account_id, calendar_id, name, selected, can_edit, hold_event FROM calendars WHERE hold_event = 1")
	if err != nil {
		return nil, err
	}
	if len(cals) == 0 {
		return nil, fmt.Errorf("hold calendar: %w", ErrNotFound)
	}
	return &cals[0], nil
}

func (s *Store) queryCalendars(query string, args ...any) ([]Calendar, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer rows.Close()

	var calendars []Calendar
	for rows.Next() {
		var c Calendar
		if err := rows.Scan(&c.AccountID, &c.ID, &c.Name, &c.Selected, &c.CanEdit, &c.HoldEvent); err != nil {
			return nil, fmt.Errorf("failed to scan calendar: %w", err)
		}
		calendars = append(calendars, c)
	}
	return calendars, rows.Err()
}
