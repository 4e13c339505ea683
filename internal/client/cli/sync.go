package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/services"
)

// Sync replays every queued change and prints a one-line summary followed
// by the items that failed.
func (a *App) Sync(ctx context.Context) error {
	if a.core.Ledger.CountPending() == 0 {
		fmt.Fprintln(a.out, "Nothing to sync.")
		return nil
	}
	return a.runSync(ctx)
}

func (a *App) runSync(ctx context.Context) error {
	rep, err := a.sync.SyncAll(ctx)
	if errors.Is(err, services.ErrSyncInProgress) {
		fmt.Fprintln(a.out, "A sync is already running.")
		return nil
	}
	fmt.Fprintln(a.out, rep.String())
	for _, f := range rep.Failures {
		state := "will retry"
		if f.Blocked {
			state = "blocked"
		}
		fmt.Fprintf(a.out, "  %s (%s): %s [%s]\n", f.Ref, f.Label, f.Message, state)
	}
	if services.IsSessionError(err) {
		return errors.New("session expired, please log in again")
	}
	return err
}

// Pending lists queued changes with their retry state.
func (a *App) Pending(context.Context) error {
	renderPending(a.out, a.core.Ledger.Entries())
	return nil
}

func parseRefArg(args []string, cmd string) (ledger.Ref, error) {
	if len(args) != 1 {
		return ledger.Ref{}, usageError(cmd + " <ref>  (see 'pending')")
	}
	return ledger.ParseRef(args[0])
}

// Discard drops one queued change without sending it.
func (a *App) Discard(ctx context.Context, args []string) error {
	ref, err := parseRefArg(args, "discard")
	if err != nil {
		return err
	}
	if err := a.sync.Discard(ctx, ref); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Discarded %s.\n", ref)
	return nil
}

// Retry unblocks one queued change and syncs.
func (a *App) Retry(ctx context.Context, args []string) error {
	ref, err := parseRefArg(args, "retry")
	if err != nil {
		return err
	}
	if err := a.sync.Retry(ctx, ref); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Re-queued %s.\n", ref)
	if a.mode() == ModeOnline {
		return a.runSync(ctx)
	}
	return nil
}

// Stats prints the aggregate. "stats refresh" reloads it from the server.
func (a *App) Stats(ctx context.Context, args []string) error {
	force := false
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "refresh":
		force = true
	default:
		return usageError("stats [refresh]")
	}
	s, err := a.core.Stats.Fetch(ctx, force)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load statistics (%v); showing local figures.\n", err)
	}
	renderStats(a.out, s, a.core.Stats.State(), a.core.Statuses, a.core.Platforms)
	return nil
}

// Export has the server render every job in format and downloads the file.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("export <csv|json|xlsx|pdf>")
	}
	res, err := a.export.Export(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes).\n", res.Path, res.Bytes)
	if res.Pending > 0 {
		fmt.Fprintf(a.out, "%d local change(s) are not synced yet and are missing from the file.\n", res.Pending)
	}
	return nil
}

// Status prints connectivity, session and queue state.
func (a *App) Status(context.Context) error {
	v := a.core.State.View()
	user := a.user()
	if user == "" {
		user = "(not logged in)"
	}
	fmt.Fprintf(a.out, "User:         %s\n", user)
	fmt.Fprintf(a.out, "Server:       %s (%s)\n", a.config.ServerEndpointAddr, a.mode())
	fmt.Fprintf(a.out, "Pending:      %d change(s), %d blocked\n", a.core.Ledger.CountPending(), len(a.core.Ledger.Blocked()))
	fmt.Fprintf(a.out, "Last fetch:   %s\n", ago(v.LastFetched, time.Now()))
	if v.LastError != nil {
		fmt.Fprintf(a.out, "Last error:   %v\n", v.LastError)
	}
	fmt.Fprintf(a.out, "Statistics:   %s\n", a.core.Stats.State())
	return nil
}
