package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/config"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/applylog/internal/client/services"
	"github.com/dmitrijs2005/applylog/internal/cryptox"
	"github.com/dmitrijs2005/applylog/internal/filex"
	"github.com/dmitrijs2005/applylog/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	core   *services.Core
	auth   *services.AuthService
	jobs   *services.JobService
	tags   *services.TagService
	sync   *services.SyncService
	export *services.ExportService
	log    logging.Logger

	mu       sync.Mutex
	userName string

	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer
}

// NewApp opens the local database and the server connection and wires the
// services together. The log goes to a file in the data directory so it
// does not interleave with REPL output.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if _, err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	logFile, err := os.OpenFile(c.LogFile(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	logger := logging.NewText(logFile, c.LogLevel)

	key, err := cryptox.LoadOrCreateKey(c.KeyFile())
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("session key: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DSN())
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	var auth *services.AuthService
	api, err := client.NewGRPCClient(c.ServerEndpointAddr,
		client.WithTimeout(c.RequestTimeout),
		client.WithTLS(c.UseTLS),
		client.WithTokenListener(func(token string) { auth.SaveRefreshToken(token) }),
	)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, err
	}

	core := services.NewCore(services.CoreOptions{
		PageSize:    c.PageSize,
		MaxAttempts: c.MaxSyncAttempts,
		Stats:       api,
		Meta:        metadata.NewSealedRepository(metadata.NewSQLiteRepository(db), key),
		Log:         logger,
	})
	a := newApp(c, core, api, os.Stdin, os.Stdout)
	auth = a.auth
	a.closers = append(a.closers, db, logFile)
	return a, nil
}

// newApp builds an App around an existing core and transport.
func newApp(c *config.Config, core *services.Core, api client.Client, in io.Reader, out io.Writer) *App {
	a := &App{
		config: c,
		core:   core,
		log:    core.Log.With("module", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
	}
	a.auth = services.NewAuthService(core, api)
	a.jobs = services.NewJobService(core, api)
	a.tags = services.NewTagService(core, api)
	a.sync = services.NewSyncService(core, a.jobs, a.tags)
	a.export = services.NewExportService(core, api, c.Exports())
	return a
}

// Run restores the previous session, runs the REPL and releases
// everything when the user leaves.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.start(ctx)
	a.Root(ctx)
}

// Close releases the transport, the database and the log file.
func (a *App) Close() error {
	err := a.auth.Close()
	for _, c := range a.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// start restores the ledger saved by the previous run and, when a session
// is stored, resumes it and loads the first page.
func (a *App) start(ctx context.Context) {
	if err := a.core.Load(ctx); err != nil {
		a.log.Error(ctx, "failed to restore queued changes", "error", err)
	}
	user, err := a.auth.Resume(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to resume session", "error", err)
		return
	}
	if user == "" {
		return
	}
	a.setUser(user)
	fmt.Fprintf(a.out, "Welcome back, %s.\n", user)
	a.loadAll(ctx)
}

// loadAll probes the server and, when it answers, replays queued changes
// and loads the dictionaries, the first page and the statistics.
func (a *App) loadAll(ctx context.Context) {
	a.probe(ctx)
	if a.mode() != ModeOnline {
		fmt.Fprintln(a.out, "Server unreachable, working offline.")
		return
	}
	if a.core.Ledger.CountPending() > 0 {
		if err := a.runSync(ctx); err != nil {
			fmt.Fprintln(a.out, "Error:", err)
		}
		return
	}
	a.tags.RefreshAll(ctx)
	if res := a.jobs.Fetch(ctx, models.Query{}); !res.OK() {
		a.log.Warn(ctx, "initial fetch failed", "result", res.String())
	}
	if _, err := a.core.Stats.Fetch(ctx, false); err != nil {
		a.log.Warn(ctx, "initial stats fetch failed", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

func (a *App) user() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}

func (a *App) mode() Mode {
	if a.core.State.View().Online {
		return ModeOnline
	}
	return ModeOffline
}
