// Package store is the client-side submission ledger.
//
// Before a tribute is offered, its commitment ID and every consumption
// unit hash it spends are claimed here in one transaction. The contract
// rejects a second offer with the same draft ID (IdAlreadyExists) or a
// reused CU hash (CUAlreadyExists); the ledger catches both before a
// transaction is paid for.
//
// # Patterns
//
// Logical ordering
//   - Rows are ordered by seq INTEGER, never by timestamps
//   - ReadSubmissions returns ORDER BY seq ASC
//
// All-or-nothing claims
//   - A conflicting commitment ID or CU hash aborts the whole claim
//   - Nothing is written when Claim returns an error
//
// # Connection
//
// The ledger holds a single connection in WAL mode with foreign keys
// enforced. Writers wait up to five seconds on a locked file. Schema
// upgrades are tracked in PRAGMA user_version.
package store
