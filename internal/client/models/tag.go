package models

// TagKind selects one of the two dictionaries.
type TagKind string

const (
	TagStatus   TagKind = "status"
	TagPlatform TagKind = "platform"
)

// Tag is a dictionary entry. Default entries are server-seeded and immutable.
type Tag struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}
