package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/applylog/internal/tagkey"
	"github.com/dmitrijs2005/applylog/internal/validation"
)

// TagService manages the status and platform dictionaries.
type TagService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTagService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *TagService {
	return &TagService{db: db, repomanager: m, log: log.With("module", "tags")}
}

func parseKind(kind string) (models.TagKind, error) {
	k, err := models.ParseTagKind(kind)
	if err != nil {
		return "", &validation.Error{Fields: []validation.FieldError{{Field: "kind", Message: err.Error()}}}
	}
	return k, nil
}

func (s *TagService) ListDefaults(ctx context.Context, kind string) ([]models.Tag, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Tags(s.db).ListDefaults(ctx, k)
}

func (s *TagService) ListCustom(ctx context.Context, userID, kind string) ([]models.Tag, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Tags(s.db).ListCustom(ctx, userID, k)
}

// Create adds a custom entry. The key is derived from name when empty.
// A key that matches a default is a validation error; one the user
// already has yields common.ErrorAlreadyExists.
func (s *TagService) Create(ctx context.Context, userID, kind, key, name string) (*models.Tag, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	key, name = tagkey.Resolve(tagkey.Normalize(key), name)
	if err := validation.ValidateTag(key, name); err != nil {
		return nil, err
	}

	repo := s.repomanager.Tags(s.db)
	defaults, err := repo.ListDefaults(ctx, k)
	if err != nil {
		return nil, err
	}
	if hasKey(defaults, key) {
		return nil, &validation.Error{Fields: []validation.FieldError{{
			Field:   "key",
			Message: fmt.Sprintf("%q is a default %s", key, k),
		}}}
	}

	tag := models.Tag{Key: key, Name: name}
	if err := repo.CreateCustom(ctx, userID, k, tag); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating %s: %w", k, err)
	}

	s.log.Info(ctx, "custom tag created", "user_id", userID, "kind", k, "key", key)
	return &tag, nil
}

// Delete removes a custom entry. Defaults cannot be deleted.
func (s *TagService) Delete(ctx context.Context, userID, kind, key string) error {
	k, err := parseKind(kind)
	if err != nil {
		return err
	}
	key = tagkey.Normalize(key)

	repo := s.repomanager.Tags(s.db)
	defaults, err := repo.ListDefaults(ctx, k)
	if err != nil {
		return err
	}
	if hasKey(defaults, key) {
		return &validation.Error{Fields: []validation.FieldError{{
			Field:   "key",
			Message: fmt.Sprintf("default %s %q cannot be deleted", k, key),
		}}}
	}

	if err := repo.DeleteCustom(ctx, userID, k, key); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting %s: %w", k, err)
	}
	return nil
}
