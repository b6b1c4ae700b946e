// Package provider defines the contract between the availability engine and
// the calendar backends (Google Calendar, Microsoft Graph, ICS feeds).
//
// The engine depends only on the interfaces and types in this package, never
// on provider-specific wire formats. Each backend lives in a subpackage and
// is injected into the engine by the command layer.
package provider
