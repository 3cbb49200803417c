// Package notes serves the viewer's release notes: embedded markdown files,
// one per version, named v<semver>.md.
package notes

import (
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//go:embed releases/*.md
var releaseFS embed.FS

// Note is one release note.
type Note struct {
	Version string `json:"version"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
}

// List returns all release notes newest-first, without bodies.
func List() ([]Note, error) {
	entries, err := releaseFS.ReadDir("releases")
	if err != nil {
		return nil, fmt.Errorf("read release notes: %w", err)
	}

	notes := make([]Note, 0, len(entries))
	for _, e := range entries {
		version := strings.TrimSuffix(e.Name(), ".md")
		if version == e.Name() {
			continue
		}
		data, err := releaseFS.ReadFile("releases/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read release note %s: %w", e.Name(), err)
		}
		notes = append(notes, Note{
			Version: version,
			Title:   titleOf(string(data), version),
		})
	}

	sort.Slice(notes, func(i, j int) bool {
		return compareVersions(notes[i].Version, notes[j].Version) > 0
	})
	return notes, nil
}

// Get returns one release note with its full markdown body.
func Get(version string) (Note, error) {
	data, err := releaseFS.ReadFile("releases/" + version + ".md")
	if err != nil {
		return Note{}, fmt.Errorf("release note %s: %w", version, err)
	}
	body := string(data)
	return Note{Version: version, Title: titleOf(body, version), Body: body}, nil
}

// titleOf pulls the first markdown heading, falling back to the version.
func titleOf(body, version string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "# "))
		}
	}
	return version
}

// compareVersions orders vX.Y.Z strings numerically per component.
func compareVersions(a, b string) int {
	pa := versionParts(a)
	pb := versionParts(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var na, nb int
		if i < len(pa) {
			na = pa[i]
		}
		if i < len(pb) {
			nb = pb[i]
		}
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(v, "v")
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return parts
		}
		parts[i] = n
	}
	return parts
}
