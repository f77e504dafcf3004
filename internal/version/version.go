package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/drivepool/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/drivepool/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/drivepool/internal/version.Date={{.Date}}
)
