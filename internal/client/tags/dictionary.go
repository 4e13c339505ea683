// Package tags keeps the client copy of the status and platform
// dictionaries. Default entries are seeded by the server and immutable;
// custom entries belong to the user. A custom key may never shadow a
// default one, and the first entry to claim a key keeps it.
package tags

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/tagkey"
	"github.com/dmitrijs2005/applylog/internal/validation"
)

var (
	ErrAlreadyExists = fmt.Errorf("tag %w", common.ErrorAlreadyExists)
	ErrDefaultTag    = fmt.Errorf("%w: default entries cannot be changed", common.ErrorValidation)
	ErrNotFound      = fmt.Errorf("tag %w", common.ErrorNotFound)
)

// DefaultStatuses mirrors the server seed and is used until the first fetch.
func DefaultStatuses() []models.Tag {
	return []models.Tag{
		{Key: "applied", Name: "Applied", Default: true},
		{Key: "screening", Name: "Screening/Review", Default: true},
		{Key: "interview", Name: "Interview Scheduled", Default: true},
		{Key: "offer", Name: "Offer Received", Default: true},
		{Key: "rejected", Name: "Rejected", Default: true},
		{Key: "closed", Name: "No Follow-up Required", Default: true},
	}
}

// DefaultPlatforms mirrors the server seed and is used until the first fetch.
func DefaultPlatforms() []models.Tag {
	return []models.Tag{
		{Key: "linkedin", Name: "LinkedIn", Default: true},
		{Key: "company-website", Name: "Company Website", Default: true},
		{Key: "hr-email", Name: "HR Email", Default: true},
		{Key: "whatsapp", Name: "WhatsApp", Default: true},
		{Key: "recruiter", Name: "Recruiter Contact", Default: true},
		{Key: "other", Name: "Other", Default: true},
	}
}

// Dictionary is safe for concurrent use.
type Dictionary struct {
	kind models.TagKind

	mu       sync.RWMutex
	defaults []models.Tag
	custom   []models.Tag
}

func NewDictionary(kind models.TagKind, defaults []models.Tag) *Dictionary {
	d := &Dictionary{kind: kind}
	d.defaults = markDefault(defaults, true)
	return d
}

func (d *Dictionary) Kind() models.TagKind { return d.kind }

// Add derives the key from name and inserts a custom entry.
func (d *Dictionary) Add(name string) (models.Tag, error) {
	key, name := tagkey.Resolve("", name)
	if err := validation.ValidateTag(key, name); err != nil {
		return models.Tag{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if indexOf(d.defaults, key) >= 0 {
		return models.Tag{}, fmt.Errorf("%q: %w", key, ErrDefaultTag)
	}
	if indexOf(d.custom, key) >= 0 {
		return models.Tag{}, fmt.Errorf("%q: %w", key, ErrAlreadyExists)
	}
	t := models.Tag{Key: key, Name: name}
	d.custom = append(d.custom, t)
	return t, nil
}

// Restore puts a removed custom entry back, e.g. after a rejected delete.
func (d *Dictionary) Restore(t models.Tag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if indexOf(d.defaults, t.Key) >= 0 || indexOf(d.custom, t.Key) >= 0 {
		return
	}
	t.Default = false
	d.custom = append(d.custom, t)
}

// Remove deletes a custom entry and returns it.
func (d *Dictionary) Remove(key string) (models.Tag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if indexOf(d.defaults, key) >= 0 {
		return models.Tag{}, fmt.Errorf("%q: %w", key, ErrDefaultTag)
	}
	i := indexOf(d.custom, key)
	if i < 0 {
		return models.Tag{}, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	t := d.custom[i]
	d.custom = slices.Delete(d.custom, i, i+1)
	return t, nil
}

// Entries lists defaults first, then custom entries in insertion order.
func (d *Dictionary) Entries() []models.Tag {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append(slices.Clone(d.defaults), d.custom...)
}

// Name returns the display name for key, or key itself when unknown.
func (d *Dictionary) Name(key string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := indexOf(d.defaults, key); i >= 0 {
		return d.defaults[i].Name
	}
	if i := indexOf(d.custom, key); i >= 0 {
		return d.custom[i].Name
	}
	return key
}

func (d *Dictionary) Has(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return indexOf(d.defaults, key) >= 0 || indexOf(d.custom, key) >= 0
}

func (d *Dictionary) IsDefault(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return indexOf(d.defaults, key) >= 0
}

// Replace installs an authoritative copy. A nil defaults slice keeps the
// current defaults. Custom entries colliding with a default are dropped
// and duplicate custom keys keep their first occurrence.
func (d *Dictionary) Replace(defaults, custom []models.Tag) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if defaults != nil {
		d.defaults = markDefault(defaults, true)
	}
	kept := make([]models.Tag, 0, len(custom))
	for _, t := range markDefault(custom, false) {
		if indexOf(d.defaults, t.Key) >= 0 || indexOf(kept, t.Key) >= 0 {
			continue
		}
		kept = append(kept, t)
	}
	d.custom = kept
}

// Custom returns the custom entries only.
func (d *Dictionary) Custom() []models.Tag {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.custom)
}

func markDefault(in []models.Tag, def bool) []models.Tag {
	out := make([]models.Tag, len(in))
	for i, t := range in {
		t.Default = def
		out[i] = t
	}
	return out
}

func indexOf(list []models.Tag, key string) int {
	return slices.IndexFunc(list, func(t models.Tag) bool { return t.Key == key })
}
