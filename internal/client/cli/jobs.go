package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/client/services"
	"github.com/dmitrijs2005/applylog/internal/client/tags"
	"github.com/dmitrijs2005/applylog/internal/tagkey"
	"github.com/dmitrijs2005/applylog/internal/timex"
)

// clearValue empties an optional field in "edit".
const clearValue = "-"

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

// outcome prints done for a change the user can see now. Changes the
// server has not taken yet are reported as queued; rejections are errors.
func (a *App) outcome(res services.Result, done string) error {
	switch res.Kind {
	case services.None:
		fmt.Fprintln(a.out, done+".")
		return nil
	case services.Transient:
		fmt.Fprintln(a.out, done+" locally; it will be sent when the server is reachable.")
		return nil
	case services.Unauthorized:
		fmt.Fprintln(a.out, done+" locally; log in again to send it.")
		return nil
	}
	return errors.New(res.String())
}

func (a *App) showPage() {
	renderJobs(a.out, a.core.State.View(), a.core.Statuses, a.core.Platforms)
}

// List fetches a page of the active query. Offline, the last page seen
// is shown with local changes applied.
func (a *App) List(ctx context.Context, args []string) error {
	var res services.Result
	switch len(args) {
	case 0:
		res = a.jobs.Refresh(ctx)
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return usageError("list [page]")
		}
		res = a.jobs.Page(ctx, n)
	default:
		return usageError("list [page]")
	}
	if !res.OK() {
		if res.Kind == services.Validation {
			return errors.New(res.String())
		}
		fmt.Fprintf(a.out, "Showing cached results (%s).\n", res)
	}
	a.showPage()
	return nil
}

// parseQuery turns "key=value" words into a query. An empty value clears
// nothing; the query always starts from scratch.
func parseQuery(args []string) (models.Query, error) {
	const usage = "search [q=text] [status=key] [platform=key] [from=YYYY-MM-DD] [to=YYYY-MM-DD] [sort=field] [order=asc|desc] [limit=n]"
	var q models.Query
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return q, usageError(usage)
		}
		switch strings.ToLower(k) {
		case "q", "company":
			q.Q = v
		case "status":
			q.Status = tagkey.Normalize(v)
		case "platform":
			q.Platform = tagkey.Normalize(v)
		case "from":
			q.DateFrom = v
		case "to":
			q.DateTo = v
		case "sort":
			q.SortBy = v
		case "order":
			q.SortOrder = strings.ToLower(v)
		case "limit":
			n, err := strconv.Atoi(v)
			if err != nil {
				return q, usageError(usage)
			}
			q.Limit = n
		default:
			return q, usageError(usage)
		}
	}
	return q, nil
}

// Search replaces the active query and shows its first page. Without
// arguments it clears all filters.
func (a *App) Search(ctx context.Context, args []string) error {
	q, err := parseQuery(args)
	if err != nil {
		return err
	}
	if res := a.jobs.Search(ctx, q); !res.OK() {
		return errors.New(res.String())
	}
	a.showPage()
	return nil
}

// Show prints one job of the current page.
func (a *App) Show(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("show <id>")
	}
	j, ok := a.core.State.View().Find(args[0])
	if !ok {
		return fmt.Errorf("job %s is not on the current page", args[0])
	}
	renderJob(a.out, j, a.core.Statuses, a.core.Platforms)
	return nil
}

// Add prompts for a new job application and creates it.
func (a *App) Add(ctx context.Context) error {
	var j models.Job
	var err error

	if j.Title, err = getSimpleText(a.reader, "Job title", a.out); err != nil {
		return err
	}
	if j.Company, err = getSimpleText(a.reader, "Company", a.out); err != nil {
		return err
	}
	today := timex.FormatDate(time.Now())
	if j.DateApplied, err = GetWithDefault(a.reader, "Date applied (YYYY-MM-DD)", today, a.out); err != nil {
		return err
	}
	status, err := GetWithDefault(a.reader, "Status "+keyHint(a.core.Statuses), "applied", a.out)
	if err != nil {
		return err
	}
	if j.Status, err = lookupKey(a.core.Statuses, status); err != nil {
		return err
	}
	platforms, err := getSimpleText(a.reader, "Platforms, comma separated "+keyHint(a.core.Platforms), a.out)
	if err != nil {
		return err
	}
	if j.Platforms, err = lookupKeys(a.core.Platforms, platforms); err != nil {
		return err
	}
	if j.JobLink, err = getSimpleText(a.reader, "Job link (optional)", a.out); err != nil {
		return err
	}
	if j.Salary, err = getSimpleText(a.reader, "Salary (optional)", a.out); err != nil {
		return err
	}
	if j.Location, err = getSimpleText(a.reader, "Location (optional)", a.out); err != nil {
		return err
	}
	if j.NextActionDate, err = getSimpleText(a.reader, "Next action date (optional, YYYY-MM-DD)", a.out); err != nil {
		return err
	}
	if j.Notes, err = GetMultiline(a.reader, "Notes (optional)", a.out); err != nil {
		return err
	}

	created, res := a.jobs.Create(ctx, j)
	if res.Kind == services.Validation && created.LocalID == "" {
		return errors.New(res.String())
	}
	if err := a.outcome(res, fmt.Sprintf("Created %s at %s (%s)", created.Title, created.Company, created.Key())); err != nil {
		return fmt.Errorf("%w (the job stays listed as pending; see 'pending')", err)
	}
	return nil
}

// Edit prompts for every field of a visible job. An empty answer keeps the
// current value and "-" clears an optional one.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("edit <id>")
	}
	cur, ok := a.core.State.View().Find(args[0])
	if !ok {
		return fmt.Errorf("job %s is not on the current page", args[0])
	}

	fmt.Fprintf(a.out, "Editing %s. Enter keeps a value, %q clears an optional one.\n", cur.Key(), clearValue)

	var d models.JobDiff
	fields := []struct {
		prompt   string
		current  string
		dst      **string
		optional bool
	}{
		{"Job title", cur.Title, &d.Title, false},
		{"Company", cur.Company, &d.Company, false},
		{"Date applied", cur.DateApplied, &d.DateApplied, false},
		{"Job link", cur.JobLink, &d.JobLink, true},
		{"Salary", cur.Salary, &d.Salary, true},
		{"Location", cur.Location, &d.Location, true},
		{"Next action date", cur.NextActionDate, &d.NextActionDate, true},
		{"Notes", cur.Notes, &d.Notes, true},
	}
	for _, f := range fields {
		v, err := GetWithDefault(a.reader, f.prompt, f.current, a.out)
		if err != nil {
			return err
		}
		if f.optional && v == clearValue {
			v = ""
		}
		if v != f.current {
			*f.dst = models.String(v)
		}
	}

	status, err := GetWithDefault(a.reader, "Status "+keyHint(a.core.Statuses), cur.Status, a.out)
	if err != nil {
		return err
	}
	if status, err = lookupKey(a.core.Statuses, status); err != nil {
		return err
	}
	if status != cur.Status {
		d.Status = models.String(status)
	}

	platforms, err := GetWithDefault(a.reader, "Platforms "+keyHint(a.core.Platforms), strings.Join(cur.Platforms, ","), a.out)
	if err != nil {
		return err
	}
	keys, err := lookupKeys(a.core.Platforms, platforms)
	if err != nil {
		return err
	}
	if !slices.Equal(keys, cur.Platforms) {
		d.Platforms = keys
	}

	if d.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing changed.")
		return nil
	}
	_, res := a.jobs.Update(ctx, cur.Key(), d)
	return a.outcome(res, "Updated "+cur.Key())
}

// Delete removes a visible job.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <id>")
	}
	res := a.jobs.Delete(ctx, args[0])
	return a.outcome(res, "Deleted "+args[0])
}

func keyHint(d *tags.Dictionary) string {
	entries := d.Entries()
	keys := make([]string, 0, len(entries))
	for _, t := range entries {
		keys = append(keys, t.Key)
	}
	return "(" + strings.Join(keys, ", ") + ")"
}

// lookupKey accepts a key or a display name known to d.
func lookupKey(d *tags.Dictionary, v string) (string, error) {
	key := tagkey.Normalize(v)
	if !d.Has(key) {
		return "", fmt.Errorf("unknown %s %q; add it with 'add-%s'", d.Kind(), v, d.Kind())
	}
	return key, nil
}

func lookupKeys(d *tags.Dictionary, list string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, err := lookupKey(d, part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
