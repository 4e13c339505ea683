// Package validation checks job, tag and query input. The server enforces
// these rules authoritatively; the client runs the same checks before an
// optimistic apply so obviously broken input never enters the ledger.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/timex"
)

const (
	MaxTitleLen    = 200
	MaxCompanyLen  = 200
	MaxSalaryLen   = 100
	MaxLocationLen = 200
	MaxNotesLen    = 5000
	MaxQueryLen    = 100
	MaxTagNameLen  = 100
	MinPlatforms   = 1
	MaxPlatforms   = 10
)

// SortFields lists the accepted sort columns.
var SortFields = []string{"date_applied", "company", "job_title", "status", "created_at"}

// FieldError names one rejected field.
type FieldError struct {
	Field   string
	Message string
}

// Error collects every field problem found in one input.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap makes errors.Is(err, common.ErrorValidation) hold.
func (e *Error) Unwrap() error { return common.ErrorValidation }

func (e *Error) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *Error) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Job is the full set of user-editable job fields.
type Job struct {
	Title          string
	Company        string
	DateApplied    string
	JobLink        string
	Salary         string
	Location       string
	Status         string
	NextActionDate string
	Notes          string
	Platforms      []string
}

// Patch carries only the fields being changed; nil means untouched.
type Patch struct {
	Title          *string
	Company        *string
	DateApplied    *string
	JobLink        *string
	Salary         *string
	Location       *string
	Status         *string
	NextActionDate *string
	Notes          *string
	Platforms      []string
}

// ValidateJob checks a complete job for creation.
func ValidateJob(j Job) error {
	e := &Error{}
	checkRequired(e, "title", "Job title", j.Title, MaxTitleLen)
	checkRequired(e, "company", "Company", j.Company, MaxCompanyLen)
	checkDate(e, "date_applied", "Date applied", j.DateApplied, true)
	if strings.TrimSpace(j.Status) == "" {
		e.add("status", "Status is required")
	}
	checkOptional(e, j.JobLink, j.Salary, j.Location, j.Notes)
	checkDate(e, "next_action_date", "Next action date", j.NextActionDate, false)
	checkPlatforms(e, j.Platforms)
	return e.orNil()
}

// ValidatePatch checks only the fields present in p.
func ValidatePatch(p Patch) error {
	e := &Error{}
	if p.Title != nil {
		checkRequired(e, "title", "Job title", *p.Title, MaxTitleLen)
	}
	if p.Company != nil {
		checkRequired(e, "company", "Company", *p.Company, MaxCompanyLen)
	}
	if p.DateApplied != nil {
		checkDate(e, "date_applied", "Date applied", *p.DateApplied, true)
	}
	if p.Status != nil && strings.TrimSpace(*p.Status) == "" {
		e.add("status", "Status is required")
	}
	checkOptional(e, deref(p.JobLink), deref(p.Salary), deref(p.Location), deref(p.Notes))
	if p.NextActionDate != nil {
		checkDate(e, "next_action_date", "Next action date", *p.NextActionDate, false)
	}
	if p.Platforms != nil {
		checkPlatforms(e, p.Platforms)
	}
	return e.orNil()
}

// ValidateTag checks a custom dictionary entry after key derivation.
func ValidateTag(key, name string) error {
	e := &Error{}
	if key == "" {
		e.add("key", "Name must contain at least one letter or digit")
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) > MaxTagNameLen {
		e.add("name", "Name must be less than %d characters", MaxTagNameLen)
	}
	return e.orNil()
}

// Query holds list/search parameters as received on the wire.
type Query struct {
	Q         string
	Status    string
	Platform  string
	DateFrom  string
	DateTo    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ValidateQuery checks search parameters; zero page/limit mean defaults.
func ValidateQuery(q Query) error {
	e := &Error{}
	if utf8.RuneCountInString(q.Q) > MaxQueryLen {
		e.add("q", "Search query must be less than %d characters", MaxQueryLen)
	}
	checkDate(e, "date_from", "Date from", q.DateFrom, false)
	checkDate(e, "date_to", "Date to", q.DateTo, false)
	if q.DateFrom != "" && q.DateTo != "" && q.DateFrom > q.DateTo {
		e.add("date_from", "Date from must be before or equal to date to")
	}
	if q.SortBy != "" && !contains(SortFields, q.SortBy) {
		e.add("sort_by", "Sort field must be one of %s", strings.Join(SortFields, ", "))
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		e.add("sort_order", "Sort order must be asc or desc")
	}
	if q.Page < 0 {
		e.add("page", "Page must be positive")
	}
	if q.Limit < 0 {
		e.add("limit", "Limit must be positive")
	}
	return e.orNil()
}

func checkRequired(e *Error, field, label, value string, max int) {
	v := strings.TrimSpace(value)
	if v == "" {
		e.add(field, "%s is required", label)
		return
	}
	if utf8.RuneCountInString(v) > max {
		e.add(field, "%s must be less than %d characters", label, max)
	}
}

func checkDate(e *Error, field, label, value string, required bool) {
	if value == "" {
		if required {
			e.add(field, "%s is required", label)
		}
		return
	}
	if _, err := timex.ParseDate(value); err != nil {
		e.add(field, "%s must be a valid date (YYYY-MM-DD)", label)
	}
}

func checkOptional(e *Error, link, salary, location, notes string) {
	if link != "" && !isHTTPURL(link) {
		e.add("job_link", "Job link must be a valid URL")
	}
	if utf8.RuneCountInString(salary) > MaxSalaryLen {
		e.add("salary", "Salary must be less than %d characters", MaxSalaryLen)
	}
	if utf8.RuneCountInString(location) > MaxLocationLen {
		e.add("location", "Location must be less than %d characters", MaxLocationLen)
	}
	if utf8.RuneCountInString(notes) > MaxNotesLen {
		e.add("notes", "Notes must be less than %d characters", MaxNotesLen)
	}
}

func checkPlatforms(e *Error, platforms []string) {
	n := 0
	for _, p := range platforms {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	switch {
	case n < MinPlatforms:
		e.add("platforms", "At least one application platform is required")
	case n > MaxPlatforms:
		e.add("platforms", "Maximum %d application platforms allowed", MaxPlatforms)
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
