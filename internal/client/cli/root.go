package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := a.user()
	if s == "" {
		return ""
	}
	s += " " + string(a.mode())
	if n := a.core.Ledger.CountPending(); n > 0 {
		s += fmt.Sprintf(", %d pending", n)
	}
	return fmt.Sprintf(" (%s)", s)
}

// Root starts the connectivity watcher and runs the REPL until the user
// leaves or ctx is cancelled.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to applylog (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
