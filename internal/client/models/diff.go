package models

import "slices"

// String returns a pointer to s, for building diffs.
func String(s string) *string { return &s }

// JobDiff is a partial change to a Job. A nil field is untouched; a nil
// Platforms slice leaves platforms as they are.
type JobDiff struct {
	Title          *string  `json:"title,omitempty"`
	Company        *string  `json:"company,omitempty"`
	DateApplied    *string  `json:"date_applied,omitempty"`
	JobLink        *string  `json:"job_link,omitempty"`
	Salary         *string  `json:"salary,omitempty"`
	Location       *string  `json:"location,omitempty"`
	Status         *string  `json:"status,omitempty"`
	NextActionDate *string  `json:"next_action_date,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Platforms      []string `json:"platforms,omitempty"`
}

// IsEmpty reports whether d changes nothing.
func (d JobDiff) IsEmpty() bool {
	for _, f := range d.fieldPtrs() {
		if *f != nil {
			return false
		}
	}
	return d.Platforms == nil
}

// Merge returns d with next layered on top; next wins on overlap.
func (d JobDiff) Merge(next JobDiff) JobDiff {
	out := d.Clone()
	dst, src := out.fieldPtrs(), next.fieldPtrs()
	for i := range dst {
		if *src[i] != nil {
			v := **src[i]
			*dst[i] = &v
		}
	}
	if next.Platforms != nil {
		out.Platforms = slices.Clone(next.Platforms)
	}
	return out
}

// Without drops every field that sent carries with the same value. Fields
// changed again since sent was taken are kept.
func (d JobDiff) Without(sent JobDiff) JobDiff {
	out := d.Clone()
	dst, src := out.fieldPtrs(), sent.fieldPtrs()
	for i := range dst {
		if *dst[i] != nil && *src[i] != nil && **dst[i] == **src[i] {
			*dst[i] = nil
		}
	}
	if out.Platforms != nil && sent.Platforms != nil && slices.Equal(out.Platforms, sent.Platforms) {
		out.Platforms = nil
	}
	return out
}

// Apply returns j with the diff applied.
func (d JobDiff) Apply(j Job) Job {
	j = j.Clone()
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&j.Title, d.Title)
	set(&j.Company, d.Company)
	set(&j.DateApplied, d.DateApplied)
	set(&j.JobLink, d.JobLink)
	set(&j.Salary, d.Salary)
	set(&j.Location, d.Location)
	set(&j.Status, d.Status)
	set(&j.NextActionDate, d.NextActionDate)
	set(&j.Notes, d.Notes)
	if d.Platforms != nil {
		j.Platforms = slices.Clone(d.Platforms)
	}
	return j
}

// Clone deep-copies d.
func (d JobDiff) Clone() JobDiff {
	out := d
	for _, f := range out.fieldPtrs() {
		if *f != nil {
			v := **f
			*f = &v
		}
	}
	out.Platforms = slices.Clone(d.Platforms)
	return out
}

func (d *JobDiff) fieldPtrs() []**string {
	return []**string{
		&d.Title, &d.Company, &d.DateApplied, &d.JobLink, &d.Salary,
		&d.Location, &d.Status, &d.NextActionDate, &d.Notes,
	}
}

// Fields names the fields d changes, in declaration order.
func (d JobDiff) Fields() []string {
	names := []string{
		"title", "company", "date_applied", "job_link", "salary",
		"location", "status", "next_action_date", "notes",
	}
	var out []string
	for i, f := range d.fieldPtrs() {
		if *f != nil {
			out = append(out, names[i])
		}
	}
	if d.Platforms != nil {
		out = append(out, "platforms")
	}
	return out
}
