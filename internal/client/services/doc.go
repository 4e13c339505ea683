// Package services contains the application services of the applylog
// client: the optimistic job and tag mutations, the sync that replays the
// pending-change ledger, session handling and exports.
//
// Mutations never return transport errors. They apply locally first and
// report the remote outcome as a Result; anything the server did not
// confirm stays in the ledger for SyncService.
package services
