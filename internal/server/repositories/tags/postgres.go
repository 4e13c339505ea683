package tags

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/dbx"
	"github.com/dmitrijs2005/applylog/internal/server/models"
)

type tables struct {
	defaults string
	custom   string
}

var tableNames = map[models.TagKind]tables{
	models.TagStatus:   {defaults: "default_statuses", custom: "user_statuses"},
	models.TagPlatform: {defaults: "default_platforms", custom: "user_platforms"},
}

func tablesFor(kind models.TagKind) (tables, error) {
	t, ok := tableNames[kind]
	if !ok {
		return tables{}, fmt.Errorf("unknown tag kind %q", kind)
	}
	return t, nil
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListDefaults(ctx context.Context, kind models.TagKind) ([]models.Tag, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, fmt.Sprintf(`SELECT key, name FROM %s ORDER BY name`, t.defaults))
}

func (r *PostgresRepository) ListCustom(ctx context.Context, userID string, kind models.TagKind) ([]models.Tag, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, fmt.Sprintf(`SELECT key, name FROM %s WHERE user_id = $1 ORDER BY name`, t.custom), userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.Key, &tag.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) CreateCustom(ctx context.Context, userID string, kind models.TagKind, tag models.Tag) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, key, name) VALUES ($1, $2, $3)`, t.custom)
	if _, err := r.db.ExecContext(ctx, query, userID, tag.Key, tag.Name); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) EnsureCustom(ctx context.Context, userID string, kind models.TagKind, tag models.Tag) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, key, name) VALUES ($1, $2, $3) ON CONFLICT (user_id, key) DO NOTHING`, t.custom)
	if _, err := r.db.ExecContext(ctx, query, userID, tag.Key, tag.Name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteCustom(ctx context.Context, userID string, kind models.TagKind, key string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND key = $2`, t.custom), userID, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
