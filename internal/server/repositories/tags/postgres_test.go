package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestListDefaults(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT key, name FROM default_platforms ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "name"}).AddRow("linkedin", "LinkedIn").AddRow("other", "Other"))

	got, err := repo.ListDefaults(context.Background(), models.TagPlatform)
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{{Key: "linkedin", Name: "LinkedIn"}, {Key: "other", Name: "Other"}}, got)
}

func TestListCustom(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT key, name FROM user_statuses WHERE user_id = \$1 ORDER BY name`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"key", "name"}))

	got, err := repo.ListCustom(context.Background(), "u1", models.TagStatus)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUnknownKind(t *testing.T) {
	repo, _ := newRepoWithMock(t)
	_, err := repo.ListDefaults(context.Background(), "color")
	assert.Error(t, err)
	assert.Error(t, repo.CreateCustom(context.Background(), "u1", "color", models.Tag{Key: "x"}))
}

func TestCreateCustom(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `INSERT INTO user_statuses \(user_id, key, name\) VALUES \(\$1, \$2, \$3\)$`
	tag := models.Tag{Key: "on-hold", Name: "On Hold"}

	mock.ExpectExec(q).WithArgs("u1", "on-hold", "On Hold").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.CreateCustom(context.Background(), "u1", models.TagStatus, tag))

	mock.ExpectExec(q).WillReturnError(&pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, repo.CreateCustom(context.Background(), "u1", models.TagStatus, tag), common.ErrorAlreadyExists)

	mock.ExpectExec(q).WillReturnError(errors.New("boom"))
	err := repo.CreateCustom(context.Background(), "u1", models.TagStatus, tag)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestEnsureCustom(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`INSERT INTO user_platforms .* ON CONFLICT \(user_id, key\) DO NOTHING`).
		WithArgs("u1", "hacker-news", "Hacker News").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureCustom(context.Background(), "u1", models.TagPlatform, models.Tag{Key: "hacker-news", Name: "Hacker News"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCustom(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `DELETE FROM user_platforms WHERE user_id = \$1 AND key = \$2`

	mock.ExpectExec(q).WithArgs("u1", "hacker-news").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteCustom(context.Background(), "u1", models.TagPlatform, "hacker-news"))

	mock.ExpectExec(q).WithArgs("u1", "ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteCustom(context.Background(), "u1", models.TagPlatform, "ghost"), common.ErrorNotFound)
}
