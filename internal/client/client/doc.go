// Package client talks to the applylog server.
//
// # Overview
//
// The package provides:
//  1. The Client contract used by the client services: auth, job listing
//     and mutation, tag dictionaries, statistics and export.
//  2. GRPCClient, the gRPC implementation. It attaches a bearer token to
//     every authenticated call, renews it silently through the refresh RPC
//     and maps gRPC status codes to the errors below.
//  3. Local database bootstrap (OpenDatabase, RunMigrations) for the
//     pending-change ledger and session storage.
//
// # Error Handling
//
// Callers match with errors.Is / errors.As:
//   - ErrUnavailable: network failure, timeout, rate limit or server fault;
//     safe to retry.
//   - ErrUnauthorized: missing or expired credentials; re-login required.
//   - ErrNotFound: the addressed row is gone on the server.
//   - *RejectedError: the server refused the payload; retrying the same
//     request fails the same way.
package client
