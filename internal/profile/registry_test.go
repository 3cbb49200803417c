package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	return r
}

func TestRegistry_AddListGet(t *testing.T) {
	r := setupRegistry(t)

	p, err := r.Add("My Backend", "/tmp/backend/tasks.json", "/tmp/backend")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.ID, "my-backend-"), "ID should be slug-prefixed, got %q", p.ID)
	assert.Equal(t, "My Backend", p.Name)

	profiles, err := r.List()
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	got, err := r.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.TaskPath, got.TaskPath)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_EmptyName(t *testing.T) {
	r := setupRegistry(t)
	_, err := r.Add("   ", "/tmp/tasks.json", "")
	assert.Error(t, err)
}

func TestRegistry_RenameKeepsID(t *testing.T) {
	r := setupRegistry(t)
	p, err := r.Add("Old Name", "/tmp/tasks.json", "")
	require.NoError(t, err)

	renamed, err := r.Rename(p.ID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, p.ID, renamed.ID)
	assert.Equal(t, "New Name", renamed.Name)

	_, err = r.Rename("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_Remove(t *testing.T) {
	r := setupRegistry(t)
	p, err := r.Add("Gone Soon", "/tmp/tasks.json", "")
	require.NoError(t, err)

	require.NoError(t, r.Remove(p.ID))

	profiles, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)

	assert.True(t, errors.Is(r.Remove(p.ID), ErrNotFound))
}

func TestRegistry_LegacyArraySettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	legacy := `[{"id":"old-1","name":"Legacy","taskPath":"/tmp/tasks.json"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	r, err := NewRegistry(path)
	require.NoError(t, err)

	profiles, err := r.List()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Legacy", profiles[0].Name)

	// A write upgrades the file to the object form.
	_, err = r.Add("Fresh", "/tmp/other/tasks.json", "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "{"), "settings should be upgraded to object form")
}

func TestProfile_MemoryDir(t *testing.T) {
	p := Profile{TaskPath: "/data/proj/tasks.json"}
	assert.Equal(t, filepath.Join("/data/proj", "memory"), p.MemoryDir())
}
