// Package backup implements the QuickPad backup job: archive the data
// directory, ship the archive to an S3-compatible object store, clean up.
package backup

// DefaultSources are the entries under the data directory that make it
// into a backup archive.
var DefaultSources = []string{
	"users.txt",
	"user_notes",
	"user_uploads",
}

type Config struct {
	// DataDir is the server's data directory, read without coordination:
	// the snapshot is best-effort, not atomic.
	DataDir string
	// ArchiveDir is where the archive is assembled before upload.
	ArchiveDir string
	Sources    []string

	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

func (c *Config) sources() []string {
	if len(c.Sources) > 0 {
		return c.Sources
	}
	return DefaultSources
}
