// pkg/commands/structure/structure_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test the placed-path tree, prefix filtering and depth truncation

package structure_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/drivepool/pkg/commands/structure"
	"github.com/arthur-debert/drivepool/pkg/errors"
	"github.com/arthur-debert/drivepool/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *testutil.TestEngine {
	t.Helper()
	env := testutil.NewTestEngine(t, 50, []string{"A", "B"}, nil)
	env.Upload(t, map[string]string{
		"/src/z.txt":            strings.Repeat("z", 10),
		"/src/music/a.mp3":      strings.Repeat("a", 40),
		"/src/music/b.mp3":      strings.Repeat("b", 30),
		"/src/music/live/c.mp3": strings.Repeat("c", 5),
	}, "lib")
	return env
}

func names(nodes []*structure.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestStructure_BuildsTree(t *testing.T) {
	env := seeded(t)

	result, err := structure.Structure(structure.StructureOptions{Engine: env.Engine})
	require.NoError(t, err)

	root := result.Root
	assert.Equal(t, 4, root.Files)
	assert.Equal(t, int64(85), root.Bytes)
	require.Equal(t, []string{"lib"}, names(root.Children))

	lib := root.Children[0]
	assert.Equal(t, []string{"z.txt", "music"}, names(lib.Children), "files before directories")

	music := lib.Children[1]
	assert.False(t, music.IsFile())
	assert.Equal(t, "lib/music", music.Path)
	assert.Equal(t, 3, music.Files)
	assert.Equal(t, []string{"a.mp3", "b.mp3", "live"}, names(music.Children))
	assert.Equal(t, "lib/music/a.mp3", music.Children[0].Path)
	assert.NotEmpty(t, music.Children[0].AccountID)

	assert.Equal(t, []string{"A", "B"}, result.Accounts)
}

func TestStructure_PrefixFilters(t *testing.T) {
	env := seeded(t)

	result, err := structure.Structure(structure.StructureOptions{Engine: env.Engine, Prefix: "lib/music/l"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Root.Files)
	assert.Equal(t, int64(5), result.Root.Bytes)

	result, err = structure.Structure(structure.StructureOptions{Engine: env.Engine, Prefix: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, result.Root.Children)
	assert.Empty(t, result.Accounts)
}

func TestStructure_DepthTruncates(t *testing.T) {
	env := seeded(t)

	result, err := structure.Structure(structure.StructureOptions{Engine: env.Engine, Depth: 2})
	require.NoError(t, err)

	lib := result.Root.Children[0]
	music := lib.Children[1]
	assert.True(t, music.Truncated)
	assert.Empty(t, music.Children)
	assert.Equal(t, 3, music.Files, "aggregates survive truncation")

	_, err = structure.Structure(structure.StructureOptions{Engine: env.Engine, Depth: -1})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
