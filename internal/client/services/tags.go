package services

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
)

// TagAPI is the part of the server API the tag service needs.
type TagAPI interface {
	ListDefaultTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error)
	ListCustomTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error)
	CreateTag(ctx context.Context, kind models.TagKind, key, name string) (models.Tag, error)
	DeleteTag(ctx context.Context, kind models.TagKind, key string) error
}

// TagService manages the custom status and platform dictionaries.
type TagService struct {
	core *Core
	api  TagAPI
	log  logging.Logger
}

func NewTagService(core *Core, api TagAPI) *TagService {
	return &TagService{core: core, api: api, log: core.Log.With("module", "tags")}
}

func tagRef(kind ledger.Kind, tk models.TagKind, key string) ledger.Ref {
	return ledger.Ref{Kind: kind, TagKind: tk, Key: key}
}

// Add derives a key from name and adds the entry locally, then on the
// server. A key that collides with a default or an existing entry is
// rejected before anything is queued.
func (s *TagService) Add(ctx context.Context, kind models.TagKind, name string) (models.Tag, Result) {
	dict := s.core.Dictionary(kind)
	tag, err := dict.Add(name)
	if err != nil {
		return models.Tag{}, resultOf(err)
	}

	ref := tagRef(ledger.KindTagCreate, kind, tag.Key)
	s.core.Ledger.RecordTagCreate(kind, tag.Key, tag.Name)
	defer s.core.persist(ctx)

	if !s.core.flight.acquire(ref.String()) {
		return tag, Result{}
	}
	_, err = s.api.CreateTag(ctx, kind, tag.Key, tag.Name)
	s.core.flight.release(ref.String())

	switch res := resultOf(err); {
	case err == nil, errors.Is(err, common.ErrorAlreadyExists):
		s.core.Ledger.ConfirmTagCreate(kind, tag.Key)
		return tag, Result{}
	case res.Kind == Validation:
		// Rejected outright: the entry would never sync.
		s.core.Ledger.ConfirmTagCreate(kind, tag.Key)
		_, _ = dict.Remove(tag.Key)
		return models.Tag{}, res
	default:
		s.core.Ledger.MarkFailed(ref, err.Error(), false)
		s.log.Warn(ctx, "tag create queued", "entry", ref.String(), "kind", res.Kind.String(), "error", err)
		return tag, res
	}
}

// Remove deletes a custom entry. Default entries cannot be removed.
func (s *TagService) Remove(ctx context.Context, kind models.TagKind, key string) Result {
	dict := s.core.Dictionary(kind)
	removed, err := dict.Remove(key)
	if err != nil {
		return resultOf(err)
	}
	defer s.core.persist(ctx)

	if !s.core.Ledger.RecordTagDelete(kind, key) {
		// The entry only existed locally.
		return Result{}
	}

	ref := tagRef(ledger.KindTagDelete, kind, key)
	if !s.core.flight.acquire(ref.String()) {
		return Result{}
	}
	err = s.api.DeleteTag(ctx, kind, key)
	s.core.flight.release(ref.String())

	switch res := resultOf(err); res.Kind {
	case None, NotFound:
		s.core.Ledger.ConfirmTagDelete(kind, key)
		return Result{}
	case Validation:
		s.core.Ledger.ConfirmTagDelete(kind, key)
		dict.Restore(removed)
		return res
	default:
		s.core.Ledger.MarkFailed(ref, err.Error(), false)
		s.log.Warn(ctx, "tag delete queued", "entry", ref.String(), "kind", res.Kind.String(), "error", err)
		return res
	}
}

// Refresh reloads one dictionary from the server and reapplies the tag
// changes still queued.
func (s *TagService) Refresh(ctx context.Context, kind models.TagKind) Result {
	defaults, err := s.api.ListDefaultTags(ctx, kind)
	if err != nil {
		return resultOf(err)
	}
	custom, err := s.api.ListCustomTags(ctx, kind)
	if err != nil {
		return resultOf(err)
	}

	snap := s.core.Ledger.Snapshot()
	custom = slices.DeleteFunc(custom, func(t models.Tag) bool {
		return slices.ContainsFunc(snap.TagDeletes, func(p ledger.PendingTag) bool {
			return p.Kind == kind && p.Key == t.Key
		})
	})
	for _, p := range snap.TagCreates {
		if p.Kind != kind {
			continue
		}
		if !slices.ContainsFunc(custom, func(t models.Tag) bool { return t.Key == p.Key }) {
			custom = append(custom, models.Tag{Key: p.Key, Name: p.Name})
		}
	}

	s.core.Dictionary(kind).Replace(defaults, custom)
	return Result{}
}

// RefreshAll reloads both dictionaries.
func (s *TagService) RefreshAll(ctx context.Context) Result {
	for _, kind := range []models.TagKind{models.TagStatus, models.TagPlatform} {
		if res := s.Refresh(ctx, kind); !res.OK() {
			return res
		}
	}
	return Result{}
}
