package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/applylog/internal/client/state"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
)

// AuthAPI is the session part of the server API.
type AuthAPI interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Resume(refreshToken string)
	Logout()
	Close() error
}

// AuthService handles the session and remembers it in the local
// metadata store, so a restart does not require a new login.
type AuthService struct {
	core *Core
	api  AuthAPI
	log  logging.Logger
}

func NewAuthService(core *Core, api AuthAPI) *AuthService {
	return &AuthService{core: core, api: api, log: core.Log.With("module", "auth")}
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errors.Join(common.ErrorValidation, errors.New("username and password are required"))
	}
	return nil
}

func (a *AuthService) Register(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	return a.api.Register(ctx, username, password)
}

// Login opens a session. Logging in as a different user than the one
// whose changes are queued discards those changes.
func (a *AuthService) Login(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	if err := a.api.Login(ctx, username, password); err != nil {
		return err
	}
	if a.core.Meta == nil {
		return nil
	}

	prev, err := a.core.Meta.Get(ctx, metadata.KeyUsername)
	if err != nil {
		return err
	}
	if prev != nil && string(prev) != username && a.core.Ledger.CountPending() > 0 {
		a.log.Warn(ctx, "discarding changes queued by another user", "pending", a.core.Ledger.CountPending())
		a.core.Ledger.Restore(ledger.Snapshot{})
		a.core.persist(ctx)
	}
	return a.core.Meta.Set(ctx, metadata.KeyUsername, []byte(username))
}

// SaveRefreshToken stores a rotated refresh token. It is meant to be
// registered as the transport's token listener.
func (a *AuthService) SaveRefreshToken(token string) {
	if a.core.Meta == nil {
		return
	}
	ctx := context.Background()
	if err := a.core.Meta.Set(ctx, metadata.KeyRefreshToken, []byte(token)); err != nil {
		a.log.Error(ctx, "failed to save session", "error", err)
	}
}

// Resume restores the stored session. It returns the username, or ""
// when there is nothing to resume.
func (a *AuthService) Resume(ctx context.Context) (string, error) {
	if a.core.Meta == nil {
		return "", nil
	}
	token, err := a.core.Meta.Get(ctx, metadata.KeyRefreshToken)
	if err != nil || token == nil {
		return "", err
	}
	user, err := a.core.Meta.Get(ctx, metadata.KeyUsername)
	if err != nil {
		return "", err
	}
	a.api.Resume(string(token))
	return string(user), nil
}

// Logout ends the session and forgets everything stored locally,
// including queued changes.
func (a *AuthService) Logout(ctx context.Context) error {
	a.api.Logout()
	a.core.Ledger.Restore(ledger.Snapshot{})
	a.core.State.Replace(state.View{PageSize: a.core.State.View().PageSize, CurrentPage: 1})
	a.core.Stats.Invalidate()
	if a.core.Meta == nil {
		return nil
	}
	return a.core.Meta.Clear(ctx)
}

// Ping reports whether the server is reachable.
func (a *AuthService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}

func (a *AuthService) Close() error {
	return a.api.Close()
}

// IsSessionError reports whether err means the user has to log in again.
func IsSessionError(err error) bool {
	return errors.Is(err, client.ErrUnauthorized)
}
