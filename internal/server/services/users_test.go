package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/server/auth"
	"github.com/dmitrijs2005/applylog/internal/server/config"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T, rm *fakeRepoManager) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	orig := bcryptCost
	bcryptCost = bcrypt.MinCost
	t.Cleanup(func() { bcryptCost = orig })

	db, mock := newSQLMockDB(t)
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, cfg, logging.Nop()), mock
}

func hashed(t *testing.T, pw string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return h
}

func TestRefreshToken_Success(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.findOut = &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(10 * time.Minute)}
	s, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn != time.Hour {
		t.Fatalf("bad pair: %+v", pair)
	}
	if len(rm.r.deleted) != 1 || rm.r.deleted[0] != "refresh-xyz" {
		t.Fatalf("old token not revoked: %v", rm.r.deleted)
	}
	if len(rm.r.issued) != 1 || rm.r.issued[0] != pair.RefreshToken {
		t.Fatalf("new token not stored: %v", rm.r.issued)
	}
	uid, err := s.UserIDFromAccessToken(pair.AccessToken)
	if err != nil || uid != "u1" {
		t.Fatalf("access token subject: %q, %v", uid, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.findOut = &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(-1 * time.Minute)}
	s, _ := newUserService(t, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want ErrRefreshTokenExpired, got %v", err)
	}
	if len(rm.r.deleted) != 1 {
		t.Fatalf("expired token should be purged, deleted=%v", rm.r.deleted)
	}
}

func TestRefreshToken_Unknown(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.findErr = common.ErrorNotFound
	s, _ := newUserService(t, rm)

	if _, err := s.RefreshToken(context.Background(), "r"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestRefreshToken_FindErr(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.findErr = errBoom{}
	s, _ := newUserService(t, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error searching refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
}

func TestRefreshToken_DeleteErr(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.findOut = &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(10 * time.Minute)}
	rm.r.delErr = errBoom{}
	s, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error deleting refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}

func TestRefreshToken_CreateErr(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.findOut = &models.RefreshToken{UserID: "u1", ExpiresAt: time.Now().Add(10 * time.Minute)}
	rm.r.createErr = errBoom{}
	s, mock := newUserService(t, rm)
	mock.ExpectBegin()
	mock.ExpectRollback()

	if _, err := s.RefreshToken(context.Background(), "r"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.createOut = &models.User{ID: "42", UserName: "alice"}
	s, _ := newUserService(t, rm)

	u, err := s.Register(context.Background(), " alice ", "correct horse")
	if err != nil || u.ID != "42" {
		t.Fatalf("Register ok: got (%v, %v)", u, err)
	}
	if rm.u.created.UserName != "alice" {
		t.Fatalf("username not trimmed: %q", rm.u.created.UserName)
	}
	if bcrypt.CompareHashAndPassword(rm.u.created.PasswordHash, []byte("correct horse")) != nil {
		t.Fatal("stored hash does not match password")
	}
}

func TestRegister_Errors(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.createErr = common.ErrorAlreadyExists
	s, _ := newUserService(t, rm)

	if _, err := s.Register(context.Background(), "bob", "long enough"); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
	if _, err := s.Register(context.Background(), "b", "short"); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
	if rm.u.created == nil || rm.u.created.UserName != "bob" {
		t.Fatal("invalid input must not reach the repository")
	}
}

func TestLogin_Flows(t *testing.T) {
	cases := []struct {
		name    string
		getOut  *models.User
		getErr  error
		pw      string
		wantErr error
	}{
		{name: "unknown user", getErr: common.ErrorNotFound, pw: "x", wantErr: common.ErrorUnauthorized},
		{name: "storage failure", getErr: errBoom{}, pw: "x", wantErr: common.ErrorInternal},
		{name: "wrong password", getOut: &models.User{ID: "u1", PasswordHash: hashed(t, "right-password")}, pw: "wrong", wantErr: common.ErrorUnauthorized},
		{name: "ok", getOut: &models.User{ID: "u1", PasswordHash: hashed(t, "right-password")}, pw: "right-password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rm := newFakeRepoManager()
			rm.u.getOut, rm.u.getErr = tc.getOut, tc.getErr
			s, _ := newUserService(t, rm)

			pair, err := s.Login(context.Background(), "alice", tc.pw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
				t.Fatalf("Login success: pair=%+v err=%v", pair, err)
			}
		})
	}
}

func TestUserIDFromAccessToken_Expired(t *testing.T) {
	s, _ := newUserService(t, newFakeRepoManager())
	tok, err := auth.GenerateToken("u1", []byte("k"), -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.UserIDFromAccessToken(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestPurgeExpiredRefreshTokens(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.purged = 3
	s, _ := newUserService(t, rm)

	n, err := s.PurgeExpiredRefreshTokens(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("got (%d, %v)", n, err)
	}
}
