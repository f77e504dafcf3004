package hashutil

import (
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/arthur-debert/drivepool/pkg/types"
)

// FileMD5 streams a file through MD5 and returns the lowercase hex digest,
// the form cloud drives report for stored files.
func FileMD5(fsys types.FS, path string) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
