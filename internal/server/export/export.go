// Package export renders a user's job applications as csv, json, xlsx or
// pdf files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/timex"
	"github.com/dmitrijs2005/applylog/internal/validation"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

var formats = []Format{CSV, JSON, XLSX, PDF}

var contentTypes = map[Format]string{
	CSV:  "text/csv",
	JSON: "application/json",
	XLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	PDF:  "application/pdf",
}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := contentTypes[f]; ok {
		return f, nil
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return "", &validation.Error{Fields: []validation.FieldError{{
		Field:   "format",
		Message: fmt.Sprintf("Format must be one of %s", strings.Join(names, ", ")),
	}}}
}

func (f Format) ContentType() string { return contentTypes[f] }

// FileName is job_applications_<date>.<ext> for the given day.
func FileName(f Format, day time.Time) string {
	return fmt.Sprintf("job_applications_%s.%s", timex.FormatDate(day), f)
}

var header = []string{
	"Job Title", "Company", "Date Applied", "Status", "Location", "Salary",
	"Job Link", "Platforms", "Next Action Date", "Notes", "Created At", "Updated At",
}

// record flattens a job into the header's column order.
func record(j models.Job) []string {
	next := ""
	if j.NextActionDate != nil {
		next = timex.FormatDate(*j.NextActionDate)
	}
	return []string{
		j.Title,
		j.Company,
		timex.FormatDate(j.DateApplied),
		j.Status,
		j.Location,
		j.Salary,
		j.JobLink,
		strings.Join(j.Platforms, "; "),
		next,
		j.Notes,
		formatTimestamp(j.CreatedAt),
		formatTimestamp(j.UpdatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Render writes jobs to w in format f.
func Render(w io.Writer, f Format, jobs []models.Job) error {
	switch f {
	case CSV:
		return renderCSV(w, jobs)
	case JSON:
		return renderJSON(w, jobs)
	case XLSX:
		return renderXLSX(w, jobs)
	case PDF:
		return renderPDF(w, jobs)
	}
	return fmt.Errorf("unsupported export format %q", f)
}
