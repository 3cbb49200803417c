package agents

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAgent(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestLoadProject_FrontMatter(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAgent(t, fsys, "/proj/.claude/agents/backend.md", `---
name: backend-dev
description: Implements backend tasks
color: "#00ff00"
tools:
  - bash
  - edit
---
Work through tasks in dependency order.
`)

	agents, err := NewLoaderWithFs(fsys).LoadProject("/proj")
	require.NoError(t, err)
	require.Len(t, agents, 1)

	a := agents[0]
	assert.Equal(t, "backend-dev", a.Name)
	assert.Equal(t, "Implements backend tasks", a.Description)
	assert.Equal(t, []string{"bash", "edit"}, a.Tools)
	assert.Equal(t, "project", a.Source)
	assert.Contains(t, a.Body, "dependency order")
}

func TestLoadProject_NoFrontMatterFallsBackToFileName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAgent(t, fsys, "/proj/.claude/agents/reviewer.md", "Just review the diffs.\n")

	agents, err := NewLoaderWithFs(fsys).LoadProject("/proj")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "reviewer", agents[0].Name)
	assert.Equal(t, "Just review the diffs.\n", agents[0].Body)
}

func TestLoadProject_MissingDirAndEmptyRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()

	agents, err := NewLoaderWithFs(fsys).LoadProject("/nowhere")
	require.NoError(t, err)
	assert.Empty(t, agents)

	agents, err = NewLoaderWithFs(fsys).LoadProject("")
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestLoadDir_SortsAndSkipsNonMarkdown(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAgent(t, fsys, "/agents/zeta.md", "---\nname: zeta\n---\nz\n")
	writeAgent(t, fsys, "/agents/alpha.md", "---\nname: alpha\n---\na\n")
	writeAgent(t, fsys, "/agents/notes.txt", "not an agent")

	agents, err := NewLoaderWithFs(fsys).LoadGlobal("/agents")
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "alpha", agents[0].Name)
	assert.Equal(t, "zeta", agents[1].Name)
	assert.Equal(t, "global", agents[0].Source)
}

func TestLoadDir_BrokenFrontMatterSkipped(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAgent(t, fsys, "/agents/good.md", "---\nname: good\n---\nok\n")
	writeAgent(t, fsys, "/agents/bad.md", "---\nname: [unclosed\n---\nbody\n")

	agents, err := NewLoaderWithFs(fsys).LoadGlobal("/agents")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "good", agents[0].Name)
}
