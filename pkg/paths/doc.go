// Package paths resolves where drivepool keeps its files.
//
// Everything the tool persists lives under a single data directory:
//
//   - accounts/               one <account-id>.json per service account
//   - drive_data.json         the placement ledger
//   - db_backups/             timestamped copies of the ledger taken before each save
//   - rclone_include_files/   include lists referenced by directives
//   - backups/                one directory per mutating run
//
// The data directory is chosen, in order, from DRIVEPOOL_DATA_DIR, the
// paths.data_dir config value, and $XDG_DATA_HOME/drivepool. Relative
// entries in the [paths] config section are resolved against it.
//
// # Usage
//
//	p, err := paths.New(cfg.Paths)
//	if err != nil {
//	    return err
//	}
//	ledgerFile := p.LedgerFile()      // ~/.local/share/drivepool/drive_data.json
//	includes := p.IncludeDir()        // ~/.local/share/drivepool/rclone_include_files
package paths
