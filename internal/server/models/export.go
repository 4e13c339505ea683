package models

import "time"

// ExportLink points at an export stored in object storage.
type ExportLink struct {
	FileName    string
	ContentType string
	URL         string
	ExpiresAt   time.Time
}
