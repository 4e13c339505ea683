package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/client/state"
	"github.com/dmitrijs2005/applylog/internal/client/stats"
	"github.com/dmitrijs2005/applylog/internal/client/tags"
)

const maxCell = 32

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxCell {
		return s[:maxCell-3] + "..."
	}
	return s
}

// renderJobs prints the visible page. Rows with unconfirmed changes are
// marked with an asterisk.
func renderJobs(w io.Writer, v state.View, statuses, platforms *tags.Dictionary) {
	if len(v.Jobs) == 0 {
		fmt.Fprintln(w, "No job applications.")
	} else {
		tw := newTable(w)
		fmt.Fprintln(tw, "\tID\tTITLE\tCOMPANY\tAPPLIED\tSTATUS\tPLATFORMS\tNEXT ACTION")
		for _, j := range v.Jobs {
			mark := ""
			if j.Pending {
				mark = "*"
			}
			names := make([]string, 0, len(j.Platforms))
			for _, p := range j.Platforms {
				names = append(names, platforms.Name(p))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				mark, j.Key(), cell(j.Title), cell(j.Company), j.DateApplied,
				statuses.Name(j.Status), cell(strings.Join(names, ", ")), j.NextActionDate)
		}
		tw.Flush()
	}

	fmt.Fprintf(w, "Page %d of %d, %d total", v.CurrentPage, max(v.TotalPages, 1), v.TotalItems)
	if v.Query.Filtered() {
		fmt.Fprint(w, " (filtered)")
	}
	fmt.Fprintln(w)
}

// renderJob prints every field of one job.
func renderJob(w io.Writer, j models.Job, statuses, platforms *tags.Dictionary) {
	names := make([]string, 0, len(j.Platforms))
	for _, p := range j.Platforms {
		names = append(names, platforms.Name(p))
	}
	tw := newTable(w)
	rows := [][2]string{
		{"ID", j.Key()},
		{"Title", j.Title},
		{"Company", j.Company},
		{"Date applied", j.DateApplied},
		{"Status", statuses.Name(j.Status)},
		{"Platforms", strings.Join(names, ", ")},
		{"Link", j.JobLink},
		{"Salary", j.Salary},
		{"Location", j.Location},
		{"Next action", j.NextActionDate},
	}
	for _, r := range rows {
		if r[1] != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
		}
	}
	if j.Pending {
		fmt.Fprintf(tw, "Sync:\t%s\n", "pending")
	}
	tw.Flush()
	if j.Notes != "" {
		fmt.Fprintf(w, "Notes:\n%s\n", j.Notes)
	}
}

func renderTags(w io.Writer, d *tags.Dictionary) {
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tNAME\t")
	for _, t := range d.Entries() {
		kind := "custom"
		if t.Default {
			kind = "default"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Key, t.Name, kind)
	}
	tw.Flush()
}

func renderStats(w io.Writer, s models.Stats, st stats.State, statuses, platforms *tags.Dictionary) {
	fmt.Fprintf(w, "Total: %d  This week: %d  This month: %d  Upcoming actions: %d\n",
		s.Total, s.ThisWeek, s.ThisMonth, s.UpcomingActions)

	if len(s.ByStatus) > 0 {
		tw := newTable(w)
		fmt.Fprintln(tw, "STATUS\tCOUNT")
		for _, t := range statuses.Entries() {
			if n := s.ByStatus[t.Key]; n > 0 {
				fmt.Fprintf(tw, "%s\t%d\n", t.Name, n)
			}
		}
		tw.Flush()
	}
	if len(s.TopPlatforms) > 0 {
		tw := newTable(w)
		fmt.Fprintln(tw, "TOP PLATFORMS\tCOUNT")
		for _, p := range s.TopPlatforms {
			fmt.Fprintf(tw, "%s\t%d\n", platforms.Name(p.Key), p.Count)
		}
		tw.Flush()
	}
	if st != stats.Fresh {
		fmt.Fprintf(w, "(%s; run 'stats refresh' to reload)\n", st)
	}
}

func renderPending(w io.Writer, entries []ledger.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Nothing to sync.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "REF\tCHANGE\tATTEMPTS\tSTATE\tLAST ERROR")
	for _, e := range entries {
		st := "queued"
		if e.Blocked {
			st = "blocked"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.Ref, cell(e.Label), e.Attempts, st, cell(e.LastError))
	}
	tw.Flush()
}

func ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return now.Sub(t).Truncate(time.Second).String() + " ago"
}
