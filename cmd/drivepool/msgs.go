package drivepool

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort      = "Spread files across a pool of cloud drive accounts"
	MsgUploadShort    = "Place a source's files and print transfer directives"
	MsgRemoveShort    = "Release placed files under a prefix and print delete directives"
	MsgStructureShort = "Show the tree of placed files"
	MsgAccountsShort  = "Show account usage and check the ledger"
	MsgGenConfigShort = "Print or write a configuration file"
	MsgVersionShort   = "Print version information"
	MsgManShort       = "Generate man pages"
	MsgStructureLong  = "Show every placed destination path as a tree with its size and owning account.\nWith a prefix, only paths starting with it are shown."
	MsgAccountsLong   = "List each account's capacity, used and remaining space and file count,\nand report any accounting problem found in the ledger."
	MsgGenConfigLong  = "Print the default configuration with every value commented out, or the\neffective configuration with --effective. With --write, save it as\n./drivepool.toml."

	// Examples
	MsgUploadExample = `  drivepool upload ~/Music/albums music             # files land under music/
  drivepool upload ~/Music/albums music --upload-folder  # under music/albums/
  drivepool upload id=1AbCdEf shared --upload-folder --folder-name projects`
	MsgRemoveExample = `  drivepool remove music/albums/old/
  drivepool remove --all --dry-run`

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun       = "Plan and print directives without saving the ledger or writing backups"
	MsgFlagConfig       = "Config file to use instead of ./drivepool.toml"
	MsgFlagFormat       = "Output format: auto, term, text or json"
	MsgFlagOrder        = "Override placement.order (fullest or emptiest)"
	MsgFlagDedup        = "Override placement.dedup (path or content)"
	MsgFlagUploadFolder = "Keep the source folder's name under the destination"
	MsgFlagFolderName   = "Name of a remote source folder, needed with --upload-folder"
	MsgFlagAll          = "Release every placed file"
	MsgFlagDepth        = "Directory levels to expand, 0 for all"
	MsgFlagWrite        = "Write ./drivepool.toml instead of printing"
	MsgFlagForce        = "Overwrite an existing file"
	MsgFlagEffective    = "Render the effective configuration instead of the commented defaults"
	MsgFlagManDir       = "Directory to write man pages to"

	// Errors
	MsgErrNoCommand  = "no command specified"
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrInitPaths  = "failed to resolve paths: %w"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/upload-long.txt
	msgUploadLongRaw string
	MsgUploadLong    = strings.TrimSpace(msgUploadLongRaw)

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)
)
