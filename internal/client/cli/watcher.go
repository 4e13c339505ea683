package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/services"
)

const pingTimeout = 3 * time.Second

// probe pings the server once and records the outcome. It reports whether
// the server just came back.
func (a *App) probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.auth.Ping(pctx)
	cancel()

	online := err == nil
	if !a.core.State.SetOnline(online, err) {
		return false
	}
	a.log.Info(ctx, "connectivity changed", "mode", a.mode())
	return online
}

// StartOnlineStatusWatcher pings the server every interval until ctx is
// done. When the server becomes reachable again while changes are
// queued, it replays them.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.probe(ctx) {
				continue
			}
			if !a.isLoggedIn() || a.core.Ledger.CountPending() == 0 {
				continue
			}
			rep, err := a.sync.SyncAll(ctx)
			if errors.Is(err, services.ErrSyncInProgress) {
				continue
			}
			if err != nil {
				a.log.Warn(ctx, "background sync stopped", "error", err)
				continue
			}
			fmt.Fprintf(a.out, "\nBack online. %s\n", rep)

		case <-ctx.Done():
			return
		}
	}
}
