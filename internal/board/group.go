// Package board contains the derived views the dashboard renders: story
// grouping with rollup stats, free-text and status filtering, expansion
// state, and the top-level dashboard projection. Everything here is a pure
// function over snapshot data; nothing mutates the underlying tasks and
// nothing persists. Partial records degrade to documented defaults instead
// of failing, so a half-written or hand-edited task file still renders.
package board

import (
	"math"
	"sort"

	"github.com/shrimptools/taskviewer/models"
)

// NoStoryKey is the bucket for tasks whose story field is empty or missing.
// It sorts by its literal text like any other key; it is not forced first
// or last.
const NoStoryKey = "No Story"

// StoryStats are the per-group status counts. completed + inProgress +
// pending == total always holds; anything that is not completed or
// in_progress counts as pending, including unknown or missing statuses.
type StoryStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
}

// StoryGroup is one derived story bucket. Tasks keep the order they had in
// the source list.
type StoryGroup struct {
	Key                  string        `json:"key"`
	Description          string        `json:"description,omitempty"`
	Tasks                []models.Task `json:"tasks"`
	Stats                StoryStats    `json:"stats"`
	CompletionPercentage int           `json:"completionPercentage"`
}

// StoryKeyOf derives the grouping key for a task. Empty string and missing
// story both land under NoStoryKey.
func StoryKeyOf(t models.Task) string {
	if t.Story == "" {
		return NoStoryKey
	}
	return t.Story
}

// Group buckets tasks by derived story key and computes per-group stats.
// Story order is plain lexicographic by key; task order within a group is
// insertion order from the input. Calling Group twice on the same input
// yields identical output.
func Group(tasks []models.Task) []StoryGroup {
	byKey := make(map[string]*StoryGroup)
	var keys []string

	for _, t := range tasks {
		key := StoryKeyOf(t)
		g, ok := byKey[key]
		if !ok {
			g = &StoryGroup{Key: key}
			byKey[key] = g
			keys = append(keys, key)
		}
		if g.Description == "" && t.StoryDescription != "" {
			g.Description = t.StoryDescription
		}
		g.Tasks = append(g.Tasks, t)
	}

	sort.Strings(keys)

	groups := make([]StoryGroup, 0, len(keys))
	for _, key := range keys {
		g := byKey[key]
		g.Stats = countStatuses(g.Tasks)
		g.CompletionPercentage = percentage(g.Stats.Completed, g.Stats.Total)
		groups = append(groups, *g)
	}
	return groups
}

func countStatuses(tasks []models.Task) StoryStats {
	stats := StoryStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusInProgress:
			stats.InProgress++
		default:
			stats.Pending++
		}
	}
	return stats
}

// percentage rounds half-up and never divides by zero.
func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
