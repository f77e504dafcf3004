package types

// FileDescriptor describes one file a source lister found, together with the
// destination it maps to. Descriptors are immutable once produced.
type FileDescriptor struct {
	// Filename is the base name of the file
	Filename string `json:"filename" yaml:"filename"`

	// RelativeSourcePath is the path relative to the source root; it is what
	// ends up in include lists
	RelativeSourcePath string `json:"relative_file_path" yaml:"relative_file_path"`

	// Size in bytes
	Size int64 `json:"size" yaml:"size"`

	// DestinationDir is the remote directory RelativeSourcePath is resolved
	// against, so that DestinationPathWithName == DestinationDir/RelativeSourcePath.
	// Every file of one source shares it, which lets a whole batch be copied
	// with a single include list.
	DestinationDir string `json:"destination_path" yaml:"destination_path"`

	// DestinationPathWithName is the ledger key
	DestinationPathWithName string `json:"destination_path_with_name" yaml:"destination_path_with_name"`

	// ContentHash is the hex MD5 of the content, only set when a lister was
	// asked to hash
	ContentHash string `json:"md5,omitempty" yaml:"md5,omitempty"`
}
