// Package agents loads agent definitions: markdown files with optional YAML
// front-matter that describe the sub-agents a project assigns tasks to.
// Project agents live in <root>/.claude/agents; user-global agents live in
// the viewer's global agents directory. The filesystem is abstracted behind
// afero so tests run against an in-memory fs.
package agents

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ProjectAgentsDir is the conventional location of project-scoped agents,
// relative to the project root.
const ProjectAgentsDir = ".claude/agents"

// Agent is one agent definition file, parsed.
type Agent struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Color       string   `json:"color,omitempty" yaml:"color"`
	Tools       []string `json:"tools,omitempty" yaml:"tools"`
	FileName    string   `json:"fileName" yaml:"-"`
	Source      string   `json:"source" yaml:"-"` // "project" or "global"
	Body        string   `json:"-" yaml:"-"`
}

// Loader reads agent directories.
type Loader struct {
	fs afero.Fs
}

// NewLoader builds a loader over the OS filesystem.
func NewLoader() *Loader {
	return &Loader{fs: afero.NewOsFs()}
}

// NewLoaderWithFs builds a loader over a custom filesystem, for tests.
func NewLoaderWithFs(fsys afero.Fs) *Loader {
	return &Loader{fs: fsys}
}

// LoadProject returns the agents defined under a project root, sorted by
// name. A project without an agents directory yields an empty list.
func (l *Loader) LoadProject(projectRoot string) ([]Agent, error) {
	if projectRoot == "" {
		return []Agent{}, nil
	}
	return l.loadDir(filepath.Join(projectRoot, ProjectAgentsDir), "project")
}

// LoadGlobal returns the user-global agents, sorted by name.
func (l *Loader) LoadGlobal(globalDir string) ([]Agent, error) {
	return l.loadDir(globalDir, "global")
}

func (l *Loader) loadDir(dir, source string) ([]Agent, error) {
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Agent{}, nil
		}
		return nil, fmt.Errorf("read agents dir %s: %w", dir, err)
	}

	agents := make([]Agent, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		a, err := l.loadFile(filepath.Join(dir, e.Name()), source)
		if err != nil {
			// One broken agent file must not hide the rest.
			continue
		}
		agents = append(agents, a)
	}

	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents, nil
}

func (l *Loader) loadFile(path, source string) (Agent, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return Agent{}, fmt.Errorf("read agent file %s: %w", path, err)
	}

	a := Agent{
		FileName: filepath.Base(path),
		Source:   source,
	}

	body, meta := splitFrontMatter(string(data))
	a.Body = body
	if meta != "" {
		if err := yaml.Unmarshal([]byte(meta), &a); err != nil {
			return Agent{}, fmt.Errorf("parse front-matter in %s: %w", path, err)
		}
	}
	if a.Name == "" {
		a.Name = strings.TrimSuffix(a.FileName, ".md")
	}
	return a, nil
}

// splitFrontMatter separates a leading "---" YAML block from the markdown
// body. Files without front-matter return the whole content as body.
func splitFrontMatter(content string) (body, meta string) {
	const fence = "---"
	trimmed := strings.TrimLeft(content, "\uFEFF\r\n")
	if !strings.HasPrefix(trimmed, fence+"\n") {
		return content, ""
	}

	rest := strings.TrimPrefix(trimmed, fence+"\n")
	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return content, ""
	}

	meta = rest[:end]
	body = strings.TrimLeft(rest[end+len("\n"+fence):], "\r\n")
	body = strings.TrimPrefix(body, "\n")
	return body, meta
}
