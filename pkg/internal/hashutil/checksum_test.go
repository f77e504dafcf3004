package hashutil

import (
	"testing"

	"github.com/arthur-debert/drivepool/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMD5(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/empty", nil, 0644))
	require.NoError(t, fs.WriteFile("/hello", []byte("hello"), 0644))

	sum, err := FileMD5(fs, "/empty")
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", sum)

	sum, err = FileMD5(fs, "/hello")
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sum)

	_, err = FileMD5(fs, "/missing")
	assert.Error(t, err)
}
