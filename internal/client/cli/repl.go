package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/applylog/internal/client/models"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	Tags(ctx context.Context, kind models.TagKind) error
	AddTag(ctx context.Context, kind models.TagKind, args []string) error
	DeleteTag(ctx context.Context, kind models.TagKind, args []string) error

	Stats(ctx context.Context, args []string) error
	Pending(ctx context.Context) error
	Discard(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Status(ctx context.Context) error
}

const helpLoggedOut = `Available commands:
  register                  create an account
  login                     open a session
  status                    connection and queue state
  exit | quit               leave the program`

const helpLoggedIn = `Available commands:
  list [page]               show the current search, optionally another page
  search key=value...       filter: q, status, platform, from, to, sort, order, limit
  show <id>                 show one job
  add                       add a job application
  edit <id>                 change a job
  delete <id>               delete a job
  statuses | platforms      list a dictionary
  add-status <name>         add a custom status
  add-platform <name>       add a custom platform
  delete-status <key>       delete a custom status
  delete-platform <key>     delete a custom platform
  stats [refresh]           show statistics
  pending                   list changes waiting for the server
  discard <ref>             drop a queued change
  retry <ref>               re-queue a blocked change
  sync                      send queued changes now
  export <format>           download csv, json, xlsx or pdf
  status                    connection and queue state
  logout                    end the session and forget local data
  exit | quit               leave the program`

// public commands work without a session.
var public = map[string]bool{
	"help": true, "register": true, "login": true, "status": true, "exit": true, "quit": true,
}

// runREPL starts a read–eval–print loop.
//
// It reads a line from in, parses the first token as the command and
// dispatches to a. Errors returned by handlers are printed and the loop
// goes on. The loop exits on EOF or when the user types "exit" or "quit".
//
// The prompt shows the current status from statusFn.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "applylog%s> ", statusFn())
		line, err := readLine(in)
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !public[cmd] && !a.isLoggedIn() {
			fmt.Fprintln(out, "Please log in first (type 'help' for commands).")
			continue
		}

		var cerr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpLoggedIn)
			} else {
				fmt.Fprintln(out, helpLoggedOut)
			}
		case "register":
			cerr = a.Register(ctx)
		case "login":
			cerr = a.Login(ctx)
		case "logout":
			cerr = a.Logout(ctx)
		case "l", "list":
			cerr = a.List(ctx, args)
		case "search":
			cerr = a.Search(ctx, args)
		case "show":
			cerr = a.Show(ctx, args)
		case "add":
			cerr = a.Add(ctx)
		case "edit":
			cerr = a.Edit(ctx, args)
		case "delete", "rm":
			cerr = a.Delete(ctx, args)
		case "statuses":
			cerr = a.Tags(ctx, models.TagStatus)
		case "platforms":
			cerr = a.Tags(ctx, models.TagPlatform)
		case "add-status":
			cerr = a.AddTag(ctx, models.TagStatus, args)
		case "add-platform":
			cerr = a.AddTag(ctx, models.TagPlatform, args)
		case "delete-status":
			cerr = a.DeleteTag(ctx, models.TagStatus, args)
		case "delete-platform":
			cerr = a.DeleteTag(ctx, models.TagPlatform, args)
		case "stats":
			cerr = a.Stats(ctx, args)
		case "pending":
			cerr = a.Pending(ctx)
		case "discard":
			cerr = a.Discard(ctx, args)
		case "retry":
			cerr = a.Retry(ctx, args)
		case "sync":
			cerr = a.Sync(ctx)
		case "export":
			cerr = a.Export(ctx, args)
		case "status":
			cerr = a.Status(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cerr != nil {
			fmt.Fprintln(out, "Error:", cerr)
		}
	}
}
