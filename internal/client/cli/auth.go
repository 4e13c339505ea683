package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register prompts for a username and password and creates the account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, userName, string(password)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login prompts for credentials and opens a session. On success the
// dictionaries and the first page are loaded and queued changes are sent.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, userName, string(password)); err != nil {
		a.log.Warn(ctx, "login failed", "user", userName, "error", err)
		if errors.Is(err, client.ErrUnavailable) {
			return errors.New("server unavailable, try again later")
		}
		return err
	}

	a.log.Info(ctx, "logged in", "user", userName)
	a.setUser(userName)
	fmt.Fprintf(a.out, "Logged in as %s.\n", userName)
	a.loadAll(ctx)
	return nil
}

// Logout ends the session and forgets local data, queued changes included.
func (a *App) Logout(ctx context.Context) error {
	if n := a.core.Ledger.CountPending(); n > 0 {
		fmt.Fprintf(a.out, "Dropping %d unsynced change(s).\n", n)
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setUser("")
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
