// Package cli provides the interactive TellBrandz command-line client.
//
// It wires configuration, local state, the backend client and the client
// components (session, profile, view controller, workflows, directory)
// behind a REPL. A background watcher tracks whether the backend is
// reachable.
//
// Key features:
//   - Sign up with email verification, sign in, demo sessions
//   - Share tells with media and file brand claims
//   - Browse, filter, sort, compare and export the brand directory
//   - Favourites, selected country and onboarding state kept locally
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
