package models

import "fmt"

// TagKind selects the status or the platform dictionary.
type TagKind string

const (
	TagStatus   TagKind = "status"
	TagPlatform TagKind = "platform"
)

// ParseTagKind accepts the wire names of the two dictionaries.
func ParseTagKind(s string) (TagKind, error) {
	switch k := TagKind(s); k {
	case TagStatus, TagPlatform:
		return k, nil
	}
	return "", fmt.Errorf("unknown tag kind %q", s)
}

type Tag struct {
	Key  string
	Name string
}

// TagMeta carries the display names of the keys a job references, so
// unknown custom entries can be created alongside the job.
type TagMeta struct {
	Status    *Tag
	Platforms []Tag
}
