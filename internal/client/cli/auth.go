package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/iamclient/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// promptPassword reads a password and returns it as a string. The raw bytes
// are wiped before returning.
func (a *App) promptPassword(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for a name, an email and a password and creates the
// account. The backend answers with a message, usually asking the user to
// verify the email address.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Enter password")
	if err != nil {
		return err
	}

	msg, err := a.auth.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	a.printMessage(msg, "Registered. Check your mailbox to verify the address.")
	return nil
}

// Login prompts for credentials and signs in. When the session cannot be
// saved locally the user is still signed in for this run.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Enter password")
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, email, password)
	if err != nil && user == nil {
		return err
	}
	if err != nil {
		a.log.Warn(ctx, "session not saved", "error", err)
		a.println("Signed in, but the session could not be saved and will not survive a restart.")
	}
	a.printf("Signed in as %s\n", user.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	return a.signOut(ctx, a.auth.Logout)
}

// LogoutAll ends every session of the user, on all devices.
func (a *App) LogoutAll(ctx context.Context) error {
	return a.signOut(ctx, a.auth.LogoutAll)
}

// signOut always drops local credentials and cookies, even when the backend
// could not be told.
func (a *App) signOut(ctx context.Context, logout func(context.Context) error) error {
	err := logout(ctx)
	if cerr := a.cookies.Clear(ctx); cerr != nil {
		err = errors.Join(err, fmt.Errorf("clear cookies: %w", cerr))
	}
	a.println("Signed out.")
	return err
}

// Restore trades the saved refresh cookie for a new session. It also
// completes OAuth and registration flows that end with the backend setting
// the cookie.
func (a *App) Restore(ctx context.Context) error {
	user, err := a.auth.RestoreSession(ctx)
	if err != nil {
		return err
	}
	if user != nil {
		a.printf("Session restored for %s\n", user.Email)
	} else {
		a.println("Session restored.")
	}
	return nil
}

func (a *App) VerifyEmail(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}
	msg, err := a.auth.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}
	a.printMessage(msg, "Email verified.")
	return nil
}

func (a *App) ResendVerification(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.auth.ResendVerification(ctx, email)
	if err != nil {
		return err
	}
	a.printMessage(msg, "Verification email sent.")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.auth.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	a.printMessage(msg, "If the address is known, a reset link is on its way.")
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Enter new password")
	if err != nil {
		return err
	}
	msg, err := a.auth.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	a.printMessage(msg, "Password changed. You can log in now.")
	return nil
}
