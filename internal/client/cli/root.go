package cli

import (
	"context"
)

// Root greets the user, reports a restored session and runs the REPL until
// the user exits.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to the IAM CLI (type 'help' for commands)")

	if cred := a.session.Credential(); cred.Authenticated() {
		a.println("Restored session", a.getStatus())
	} else {
		a.println("Not signed in. Use 'login', or 'restore' to resume a session from a saved cookie.")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
