// pkg/lister/local_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test local enumeration and destination mapping

package lister_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/lister"
	"github.com/arthur-debert/drivepool/pkg/testutil"
	"github.com/arthur-debert/drivepool/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceTree(t *testing.T) types.FS {
	fs := testutil.NewTestFS()
	testutil.WriteFiles(t, fs, map[string]string{
		"/home/me/photos/b.jpg":        "bb",
		"/home/me/photos/a.jpg":        "a",
		"/home/me/photos/2024/x.jpg":   "xxxx",
		"/home/me/photos/2024/q/z.jpg": "zzz",
		"/home/me/photos/0/first.jpg":  "f",
	})
	return fs
}

func TestLocal_Directory(t *testing.T) {
	tests := []struct {
		name         string
		destination  string
		uploadFolder bool
		wantRoot     string
	}{
		{"plain", "backup/", false, "backup"},
		{"upload_folder", "backup", true, "backup/photos"},
		{"remote_root", "", false, ""},
		{"remote_root_upload_folder", "/", true, "photos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := lister.NewLocal(sourceTree(t), lister.LocalOptions{
				Source:       "/home/me/photos/",
				Destination:  tt.destination,
				UploadFolder: tt.uploadFolder,
			})
			require.NoError(t, err)
			assert.Equal(t, "/home/me/photos", l.SourceRoot())

			got, err := l.List(context.Background())
			require.NoError(t, err)

			var rels, dests []string
			for _, d := range got {
				rels = append(rels, d.RelativeSourcePath)
				dests = append(dests, d.DestinationPathWithName)
				assert.Equal(t, tt.wantRoot, d.DestinationDir)
			}
			assert.Equal(t, []string{"a.jpg", "b.jpg", "0/first.jpg", "2024/x.jpg", "2024/q/z.jpg"}, rels)

			prefix := tt.wantRoot
			if prefix != "" {
				prefix += "/"
			}
			assert.Equal(t, prefix+"2024/q/z.jpg", dests[4])
			assert.Equal(t, int64(3), got[4].Size)
			assert.Equal(t, "z.jpg", got[4].Filename)
		})
	}
}

func TestLocal_SingleFile(t *testing.T) {
	l, err := lister.NewLocal(sourceTree(t), lister.LocalOptions{
		Source:       "/home/me/photos/b.jpg",
		Destination:  "pics",
		UploadFolder: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/home/me/photos", l.SourceRoot())

	got, err := l.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.FileDescriptor{{
		Filename:                "b.jpg",
		RelativeSourcePath:      "b.jpg",
		Size:                    2,
		DestinationDir:          "pics",
		DestinationPathWithName: "pics/b.jpg",
	}}, got)
}

func TestLocal_Hash(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteFiles(t, fs, map[string]string{"/src/hello.txt": "hello"})

	l, err := lister.NewLocal(fs, lister.LocalOptions{Source: "/src", Destination: "d", Hash: true})
	require.NoError(t, err)
	got, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", got[0].ContentHash)
}

func TestLocal_InvalidSource(t *testing.T) {
	_, err := lister.NewLocal(testutil.NewTestFS(), lister.LocalOptions{Source: "/nope", Destination: "d"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceInvalid))

	_, err = lister.NewLocal(testutil.NewTestFS(), lister.LocalOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceInvalid))
}

func TestLocal_Cancelled(t *testing.T) {
	l, err := lister.NewLocal(sourceTree(t), lister.LocalOptions{Source: "/home/me/photos", Destination: "d"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
