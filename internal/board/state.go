package board

import "github.com/shrimptools/taskviewer/models"

// ExpansionState maps story keys to their expanded flag. The zero value is
// the default view: everything collapsed. Transitions return a new value and
// leave the receiver untouched, so the view layer can hold snapshots.
type ExpansionState map[string]bool

// Toggle flips the targeted key only; every other key keeps its prior value.
func (s ExpansionState) Toggle(key string) ExpansionState {
	next := s.clone()
	next[key] = !s[key]
	return next
}

// ExpandAll expands exactly the given keys, which should be the keys
// currently visible under the active filter. Keys left over from a previous
// filter state are dropped so they cannot linger as expanded entries with no
// visible content.
func (s ExpansionState) ExpandAll(visibleKeys []string) ExpansionState {
	next := make(ExpansionState, len(visibleKeys))
	for _, k := range visibleKeys {
		next[k] = true
	}
	return next
}

// CollapseAll returns the default collapsed state.
func (s ExpansionState) CollapseAll() ExpansionState {
	return ExpansionState{}
}

// IsExpanded reports the flag for a key; unknown keys are collapsed.
func (s ExpansionState) IsExpanded(key string) bool {
	return s[key]
}

func (s ExpansionState) clone() ExpansionState {
	next := make(ExpansionState, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	return next
}

// Tab identifies the active dashboard view.
type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabStories   Tab = "stories"
	TabTable     Tab = "table"
	TabHistory   Tab = "history"
)

// ViewState is the complete UI-session state for one project view: active
// tab, selected task, filters, and expansion flags. It is plain data with
// pure transition methods; it is never persisted, so a reload starts over
// collapsed on the dashboard tab.
type ViewState struct {
	ActiveTab      Tab
	SelectedTaskID string
	Filter         FilterState
	Expanded       ExpansionState
}

// NewViewState returns the initial state for a freshly opened view.
func NewViewState() ViewState {
	return ViewState{
		ActiveTab: TabDashboard,
		Filter:    NewFilterState(),
		Expanded:  ExpansionState{},
	}
}

// WithTab switches the active tab.
func (v ViewState) WithTab(tab Tab) ViewState {
	v.ActiveTab = tab
	return v
}

// WithSelectedTask records the selected task; empty clears the selection.
func (v ViewState) WithSelectedTask(id string) ViewState {
	v.SelectedTaskID = id
	return v
}

// WithFilter swaps the filter tuple. Expansion flags are kept; keys hidden
// by the new filter simply stop rendering, and ExpandAll recomputes against
// visible keys when invoked.
func (v ViewState) WithFilter(f FilterState) ViewState {
	v.Filter = f
	return v
}

// ToggleStory flips one story's expansion flag.
func (v ViewState) ToggleStory(key string) ViewState {
	v.Expanded = v.Expanded.Toggle(key)
	return v
}

// ExpandVisible expands every story visible under the current filter,
// derived from the full task list at call time.
func (v ViewState) ExpandVisible(tasks []models.Task) ViewState {
	v.Expanded = v.Expanded.ExpandAll(VisibleKeys(tasks, v.Filter))
	return v
}

// CollapseStories resets every story to collapsed.
func (v ViewState) CollapseStories() ViewState {
	v.Expanded = v.Expanded.CollapseAll()
	return v
}
