package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/tokenx"
)

func (a *App) Me(ctx context.Context) error {
	u, err := a.users.Me(ctx)
	if err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

// UpdateProfile asks for a new name and email; an empty answer keeps the
// current value.
func (a *App) UpdateProfile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "New name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if name == "" && email == "" {
		a.println("Nothing to update.")
		return nil
	}

	u, err := a.users.UpdateMe(ctx, models.UserUpdateRequest{Name: name, Email: email})
	if u == nil {
		return err
	}
	a.printUser(u)
	return err
}

func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := GetConfirmation(a.reader, "Delete your account? This cannot be undone", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}

	if err := a.users.DeleteMe(ctx); err != nil {
		return err
	}
	if err := a.cookies.Clear(ctx); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	a.println("Account deleted.")
	return nil
}

// Status shows the local session, what the access token claims about itself
// and what the backend says about it.
func (a *App) Status(ctx context.Context) error {
	cred := a.session.Credential()
	if !cred.Authenticated() {
		a.println("Not signed in.")
		return nil
	}

	if cred.User != nil {
		a.printUser(cred.User)
	}

	claims, err := tokenx.Inspect(cred.AccessToken)
	switch {
	case err != nil:
		a.println("Access token: opaque")
	case claims.ExpiresAt.IsZero():
		a.println("Access token: no expiry")
	default:
		left, _ := tokenx.TimeUntilExpiry(cred.AccessToken, time.Now())
		if left <= 0 {
			a.printf("Access token: expired at %s\n", claims.ExpiresAt.Local().Format(time.DateTime))
		} else {
			a.printf("Access token: expires at %s (in %s)\n",
				claims.ExpiresAt.Local().Format(time.DateTime), left.Truncate(time.Second))
		}
	}

	ir, err := a.auth.Introspect(ctx)
	if err != nil {
		return fmt.Errorf("introspect: %w", err)
	}
	a.printf("Backend: active=%t\n", ir.Active)
	return nil
}
