package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/iamclient/internal/client/transport"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	Restore(ctx context.Context) error
	VerifyEmail(ctx context.Context) error
	ResendVerification(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error

	Me(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Status(ctx context.Context) error
	Stats(ctx context.Context) error

	AdminList(ctx context.Context) error
	AdminGet(ctx context.Context) error
	AdminFind(ctx context.Context) error
	AdminCreate(ctx context.Context) error
	AdminRoles(ctx context.Context) error
	AdminDisable(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, register, restore, verify-email, resend-verification, " +
		"forgot-password, reset-password, status, stats, exit"
	helpSignedIn = "Available commands: me, update-profile, delete-account, status, logout, logout-all, " +
		"admin-list, admin-get, admin-find, admin-create, admin-roles, admin-disable, stats, exit"
)

// runREPL starts a read–eval–print loop for the IAM CLI.
//
// It reads a line from reader, takes the first token as the command and
// dispatches to methods on a. The prompt shows statusFn's value, which
// changes as the user signs in and out. Command errors are printed and the
// loop goes on. The loop exits on EOF, on "exit" or "quit", or when ctx is
// done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for ctx.Err() == nil {
		fmt.Fprintf(w, "iam %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var run func(context.Context) error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpSignedIn)
			} else {
				fmt.Fprintln(w, helpSignedOut)
			}
			continue

		case "register":
			run = a.Register
		case "login":
			run = a.Login
		case "logout":
			run = a.Logout
		case "logout-all":
			run = a.LogoutAll
		case "restore":
			run = a.Restore
		case "verify-email":
			run = a.VerifyEmail
		case "resend-verification":
			run = a.ResendVerification
		case "forgot-password":
			run = a.ForgotPassword
		case "reset-password":
			run = a.ResetPassword

		case "me":
			run = a.Me
		case "update-profile":
			run = a.UpdateProfile
		case "delete-account":
			run = a.DeleteAccount
		case "status":
			run = a.Status
		case "stats":
			run = a.Stats

		case "admin-list":
			run = a.AdminList
		case "admin-get":
			run = a.AdminGet
		case "admin-find":
			run = a.AdminFind
		case "admin-create":
			run = a.AdminCreate
		case "admin-roles":
			run = a.AdminRoles
		case "admin-disable":
			run = a.AdminDisable

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}

		if err := run(ctx); err != nil {
			fmt.Fprintln(w, "Error:", describeError(err))
		}
	}
}

// describeError renders err for the terminal. Backend errors show the
// server's message and status code.
func describeError(err error) string {
	var he *transport.HTTPError
	if errors.As(err, &he) {
		if he.IsNetworkError {
			return "server unavailable: " + he.Message()
		}
		return fmt.Sprintf("%s (HTTP %d)", he.Message(), he.Status)
	}
	return err.Error()
}
