// Package auth manages OAuth2 credentials for the calendar providers.
//
// Tokens are cached per platform and account as files in the avail config
// directory. The interactive login flow prints an authorization URL and
// reads the resulting code from stdin; everything downstream works off an
// oauth2.TokenSource, which refreshes access tokens transparently.
package auth
