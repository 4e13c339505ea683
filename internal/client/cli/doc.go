// Package cli provides the interactive applylog command-line client.
//
// It wires configuration, the local database, the gRPC transport and the
// optimistic services into a REPL. Every change is shown at once and sent
// in the background of the command; changes the server could not take are
// queued and replayed by "sync", or automatically when the connectivity
// watcher sees the server come back.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
