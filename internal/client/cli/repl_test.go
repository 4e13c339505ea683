package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
}

func (f *fakeExec) rec(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	return f.rec("register")
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.rec("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.rec("logout")
}
func (f *fakeExec) List(_ context.Context, args []string) error {
	return f.rec(strings.TrimSpace("list " + strings.Join(args, " ")))
}
func (f *fakeExec) Search(_ context.Context, args []string) error {
	return f.rec("search " + strings.Join(args, " "))
}
func (f *fakeExec) Show(_ context.Context, args []string) error {
	return f.rec("show " + strings.Join(args, " "))
}
func (f *fakeExec) Add(context.Context) error { return f.rec("add") }
func (f *fakeExec) Edit(_ context.Context, args []string) error {
	return f.rec("edit " + strings.Join(args, " "))
}
func (f *fakeExec) Delete(_ context.Context, args []string) error {
	return f.rec("delete " + strings.Join(args, " "))
}
func (f *fakeExec) Tags(_ context.Context, kind models.TagKind) error {
	return f.rec("tags " + string(kind))
}
func (f *fakeExec) AddTag(_ context.Context, kind models.TagKind, args []string) error {
	return f.rec("add-tag " + string(kind) + " " + strings.Join(args, " "))
}
func (f *fakeExec) DeleteTag(_ context.Context, kind models.TagKind, args []string) error {
	return f.rec("delete-tag " + string(kind) + " " + strings.Join(args, " "))
}
func (f *fakeExec) Stats(_ context.Context, args []string) error {
	return f.rec(strings.TrimSpace("stats " + strings.Join(args, " ")))
}
func (f *fakeExec) Pending(context.Context) error { return f.rec("pending") }
func (f *fakeExec) Discard(_ context.Context, args []string) error {
	return f.rec("discard " + strings.Join(args, " "))
}
func (f *fakeExec) Retry(_ context.Context, args []string) error {
	return f.rec("retry " + strings.Join(args, " "))
}
func (f *fakeExec) Sync(context.Context) error { return f.rec("sync") }
func (f *fakeExec) Export(_ context.Context, args []string) error {
	return f.rec("export " + strings.Join(args, " "))
}
func (f *fakeExec) Status(context.Context) error { return f.rec("status") }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"login",
		"list",
		"list 2",
		"search q=acme status=offer",
		"show 7",
		"add",
		"edit 7",
		"rm 7",
		"statuses",
		"platforms",
		"add-status On Hold",
		"add-platform Hacker News",
		"delete-status on-hold",
		"delete-platform hacker-news",
		"stats refresh",
		"pending",
		"discard create:tmp-1",
		"retry update:7",
		"sync",
		"export csv",
		"status",
		"logout",
		"exit",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input), &out)

	assert.Equal(t, []string{
		"login",
		"list",
		"list 2",
		"search q=acme status=offer",
		"show 7",
		"add",
		"edit 7",
		"delete 7",
		"tags status",
		"tags platform",
		"add-tag status On Hold",
		"add-tag platform Hacker News",
		"delete-tag status on-hold",
		"delete-tag platform hacker-news",
		"stats refresh",
		"pending",
		"discard create:tmp-1",
		"retry update:7",
		"sync",
		"export csv",
		"status",
		"logout",
	}, exec.calls)
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("list\nstatus\nhelp\nquit\n"), &out)

	assert.Equal(t, []string{"status"}, exec.calls)
	assert.Contains(t, out.String(), "Please log in first")
	assert.Contains(t, out.String(), "register")
	assert.NotContains(t, out.String(), "add-status")
}

func TestRunREPL_HelpWhenLoggedIn(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return " (alice online)" }, rdr("help\n"), &out)

	assert.Contains(t, out.String(), "applylog (alice online)> ")
	assert.Contains(t, out.String(), "add-status")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	exec := &fakeExec{loggedIn: true, err: errors.New("boom")}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("sync\nfoobar\n\nsync\n"), &out)

	assert.Equal(t, []string{"sync", "sync"}, exec.calls)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: boom"))
	assert.Contains(t, out.String(), "Unknown command: foobar")
}
