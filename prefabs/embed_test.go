package prefabs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useDiskDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })
	return dir
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := useDiskDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ball.yaml"), []byte("name: disk_ball\n"), 0o644))

	spec, err := LoadEntityBuildSpec("ball.yaml")
	require.NoError(t, err)
	assert.Equal(t, "disk_ball", spec.Name)

	_, ok := ModTime("ball.yaml")
	assert.True(t, ok)

	// floor.yaml only exists in the embedded copy.
	floor, err := LoadEntityBuildSpec("floor.yaml")
	require.NoError(t, err)
	assert.Equal(t, "floor", floor.Name)
	_, ok = ModTime("floor.yaml")
	assert.False(t, ok)
}

func TestLoadScript(t *testing.T) {
	useDiskDir(t)

	for _, name := range []string{"update.tengo", "scripts/update.tengo", "prefabs/scripts/update.tengo"} {
		data, err := LoadScript(name)
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "update := func(engine)")
	}
}

func TestCleanPaths(t *testing.T) {
	cases := []struct {
		in, prefab, script string
	}{
		{"", "", ""},
		{"scene.yaml", "scene.yaml", "scripts/scene.yaml"},
		{"prefabs/ball.yaml", "ball.yaml", "scripts/ball.yaml"},
		{"scripts/update.tengo", "scripts/update.tengo", "scripts/update.tengo"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.prefab, cleanPrefabPath(c.in))
			assert.Equal(t, c.script, cleanScriptPath(c.in))
		})
	}
}
