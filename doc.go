// Package fintrack provides the ledger of a local-first personal finance
// tracker: named accounts holding credit and debit transactions, balances
// derived from them, and recurring entries applied on schedule.
//
// The core functionalities include:
//   - Ledger Store: the single source of truth for accounts and their
//     transactions, persisted synchronously in a key-value store (see package
//     kv) under the "accounts" key.
//   - Balance Calculator: pure functions deriving balances from transactions.
//     Balances are never persisted.
//   - Snapshots: point-in-time copies of the ledger used to build assistant
//     prompts and to validate references made by assistant actions.
//   - Recurring entries: monthly or yearly rules applied idempotently by a
//     background Scheduler.
//
// The natural-language assistant that drives the ledger lives in package
// assistant; the command line client in package cmd.
package fintrack
