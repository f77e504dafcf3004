// Package commands provides the command implementations behind the CLI.
//
// Each command lives in its own subdirectory and takes an Options struct:
//   - upload/    - place a source's files and emit transfer directives
//   - remove/    - release files under a prefix and emit delete directives
//   - structure/ - tree view of what the ledger has placed
//   - accounts/  - per-account usage and ledger consistency
//   - genconfig/ - print or write a starting configuration file
//
// Commands return plain result structs; rendering is left to pkg/ui.
package commands
