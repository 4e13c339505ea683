// Package ledger records job and tag mutations that have been applied
// locally but not yet confirmed by the server.
//
// Every entry keeps its retry bookkeeping. Entries leave the ledger only
// through an explicit confirmation, a superseding delete, or Discard;
// an entry that keeps failing is blocked rather than dropped, so the user
// can decide what to do with it.
package ledger
