package board

import (
	"strings"

	"github.com/shrimptools/taskviewer/models"
)

// FilterAll is the neutral value for the status and story filters.
const FilterAll = "all"

// FilterState is the UI-session filter tuple. The zero value is not neutral
// (empty status/story would match nothing); use NewFilterState or normalize
// through the accessors below.
type FilterState struct {
	Text   string `json:"text"`
	Status string `json:"status"`
	Story  string `json:"story"`
}

// NewFilterState returns the neutral filter that passes every task.
func NewFilterState() FilterState {
	return FilterState{Status: FilterAll, Story: FilterAll}
}

func (f FilterState) statusFilter() string {
	if f.Status == "" {
		return FilterAll
	}
	return f.Status
}

func (f FilterState) storyFilter() string {
	if f.Story == "" {
		return FilterAll
	}
	return f.Story
}

// IsNeutral reports whether the filter passes everything.
func (f FilterState) IsNeutral() bool {
	return f.Text == "" && f.statusFilter() == FilterAll && f.storyFilter() == FilterAll
}

// Filter applies the text, status, and story filters, ANDed together, and
// returns the matching tasks in input order. It is total over partial
// records: a task with no name or status simply fails to match a non-neutral
// text or status filter. The story filter compares against the derived story
// key, so "No Story" catches tasks with a missing or empty story field.
func Filter(tasks []models.Task, state FilterState) []models.Task {
	text := strings.ToLower(strings.TrimSpace(state.Text))
	status := state.statusFilter()
	story := state.storyFilter()

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if text != "" && !matchesText(t, text) {
			continue
		}
		if status != FilterAll && string(t.Status) != status {
			continue
		}
		if story != FilterAll && StoryKeyOf(t) != story {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesText(t models.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Name), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// GroupFiltered filters and re-groups in one step so displayed counts always
// reflect the active filter, never the unfiltered totals.
func GroupFiltered(tasks []models.Task, state FilterState) []StoryGroup {
	return Group(Filter(tasks, state))
}

// VisibleKeys returns the story keys present under the given filter, in
// display order. ExpandAll must operate on these, not on a cached full set.
func VisibleKeys(tasks []models.Task, state FilterState) []string {
	groups := GroupFiltered(tasks, state)
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}
