// Package core runs drivepool operations end to end.
//
// A mutating run follows the same sequence every time:
//
//  1. load the ledger (an unreadable ledger aborts here)
//  2. register accounts the ledger does not know yet
//  3. keep the loaded state as the "before" snapshot
//  4. plan on a clone (placement or removal)
//  5. compile directives, writing include lists
//  6. save the ledger, backing up the previous file
//  7. record the run archive with both snapshots
//
// Nothing reaches the ledger file before step 6, so a failure in planning or
// compiling leaves persisted state untouched. A dry run stops after step 5
// and compiles into an in-memory filesystem.
package core
