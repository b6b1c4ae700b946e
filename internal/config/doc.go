// Package config loads the avail configuration file and parses the
// CLI-facing value formats: MM/DD/YYYY dates, clock times like "9:00am",
// and duration shorthand like "1w", "3d", "2h" or "45m".
package config
