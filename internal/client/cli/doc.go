// Package cli provides the interactive IAM command-line client.
//
// It wires configuration, local state, the refresh coordinator and the API
// services, then runs a REPL. The credential store and the refresh cookie
// are kept in a local SQLite file, so a session survives restarts.
//
// Key features:
//   - Login / Register / Logout (one device or all)
//   - Restore a session from the saved refresh cookie
//   - Email verification and password reset
//   - Profile: show, update, delete
//   - User administration: list, find, create, change roles, disable
//   - Token status and refresh statistics
//
// When a refresh fails the session-expired hook prints a notice and the
// prompt falls back to the signed-out state.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
