package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/teemow/avail/internal/auth"
	"github.com/teemow/avail/internal/config"
	"github.com/teemow/avail/internal/provider"
	googleprovider "github.com/teemow/avail/internal/provider/google"
	"github.com/teemow/avail/internal/provider/ics"
	"github.com/teemow/avail/internal/provider/microsoft"
	"github.com/teemow/avail/internal/store"
)

// openStore opens the account and calendar cache in the config directory.
func openStore() (*store.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return store.Open(filepath.Join(dir, "avail.db"))
}

// buildProvider creates the calendar provider for one linked account.
func buildProvider(ctx context.Context, cfg *config.Config, account store.Account) (provider.Provider, error) {
	switch account.Platform {
	case store.PlatformGoogle:
		ts, err := auth.TokenSource(ctx, account.Platform, account.Name, cfg)
		if err != nil {
			return nil, err
		}
		return googleprovider.NewClient(ctx, account.Name, ts)
	case store.PlatformMicrosoft:
		ts, err := auth.TokenSource(ctx, account.Platform, account.Name, cfg)
		if err != nil {
			return nil, err
		}
		return microsoft.NewClient(ctx, account.Name, ts), nil
	case store.PlatformICS:
		if account.URL == "" {
			return nil, fmt.Errorf("account %s has no feed URL", account.Name)
		}
		return ics.NewFeed(account.Name, account.Name, account.URL), nil
	default:
		return nil, fmt.Errorf("unknown platform %q", account.Platform)
	}
}

// buildProviders creates one provider per account that owns a calendar in
// the given list, keyed by account ID.
func buildProviders(ctx context.Context, cfg *config.Config, accounts []store.Account, calendars []store.Calendar) (map[int64]provider.Provider, error) {
	byID := make(map[int64]store.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	providers := make(map[int64]provider.Provider)
	for _, cal := range calendars {
		if _, ok := providers[cal.AccountID]; ok {
			continue
		}
		account, ok := byID[cal.AccountID]
		if !ok {
			return nil, fmt.Errorf("calendar %s references unknown account %d", cal.ID, cal.AccountID)
		}
		p, err := buildProvider(ctx, cfg, account)
		if err != nil {
			return nil, fmt.Errorf("failed to set up %s account %s: %w", account.Platform, account.Name, err)
		}
		providers[cal.AccountID] = p
	}
	return providers, nil
}
