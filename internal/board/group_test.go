package board

import (
	"reflect"
	"testing"

	"github.com/shrimptools/taskviewer/models"
)

func task(id, name, story string, status models.TaskStatus) models.Task {
	return models.Task{ID: id, Name: name, Story: story, Status: status}
}

func TestGroup_SentinelKey(t *testing.T) {
	tasks := []models.Task{
		task("1", "a", "", models.StatusPending),
		task("2", "b", "Auth", models.StatusPending),
		{ID: "3", Name: "c"}, // no story field at all
	}

	groups := Group(tasks)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Plain lexicographic order: "Auth" < "No Story".
	if groups[0].Key != "Auth" || groups[1].Key != NoStoryKey {
		t.Errorf("unexpected group order: %q, %q", groups[0].Key, groups[1].Key)
	}

	noStory := groups[1]
	if len(noStory.Tasks) != 2 {
		t.Fatalf("expected empty-story and missing-story tasks in the same group, got %d tasks", len(noStory.Tasks))
	}
	if noStory.Tasks[0].ID != "1" || noStory.Tasks[1].ID != "3" {
		t.Errorf("insertion order not preserved: %s, %s", noStory.Tasks[0].ID, noStory.Tasks[1].ID)
	}
}

func TestGroup_StatsInvariant(t *testing.T) {
	tasks := []models.Task{
		task("1", "a", "S", models.StatusPending),
		task("2", "b", "S", models.StatusCompleted),
		task("3", "c", "S", models.StatusInProgress),
		task("4", "d", "S", models.StatusCompleted),
		{ID: "5", Name: "e", Story: "S", Status: "weird"}, // unknown status counts as pending
	}

	groups := Group(tasks)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]

	if g.Stats.Completed+g.Stats.InProgress+g.Stats.Pending != g.Stats.Total {
		t.Errorf("stats do not sum to total: %+v", g.Stats)
	}
	if g.Stats.Total != len(g.Tasks) {
		t.Errorf("total %d != task count %d", g.Stats.Total, len(g.Tasks))
	}
	if g.Stats.Completed != 2 || g.Stats.InProgress != 1 || g.Stats.Pending != 2 {
		t.Errorf("unexpected counts: %+v", g.Stats)
	}
	if g.CompletionPercentage != 40 {
		t.Errorf("expected 40%%, got %d%%", g.CompletionPercentage)
	}
}

func TestGroup_Idempotent(t *testing.T) {
	tasks := []models.Task{
		task("1", "a", "Beta", models.StatusCompleted),
		task("2", "b", "", models.StatusPending),
		task("3", "c", "Alpha", models.StatusInProgress),
		task("4", "d", "Beta", models.StatusPending),
	}

	first := Group(tasks)

	// Flatten and regroup; the result must be identical.
	var flat []models.Task
	for _, g := range first {
		flat = append(flat, g.Tasks...)
	}
	second := Group(flat)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("grouping not stable under re-aggregation:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestGroup_Empty(t *testing.T) {
	if groups := Group(nil); len(groups) != 0 {
		t.Errorf("expected no groups for nil input, got %d", len(groups))
	}
}

func TestGroup_RoundsHalfUp(t *testing.T) {
	// 1 of 3 completed = 33.33 -> 33; 2 of 3 = 66.67 -> 67.
	tasks := []models.Task{
		task("1", "a", "S", models.StatusCompleted),
		task("2", "b", "S", models.StatusPending),
		task("3", "c", "S", models.StatusPending),
	}
	if got := Group(tasks)[0].CompletionPercentage; got != 33 {
		t.Errorf("expected 33, got %d", got)
	}

	tasks[1].Status = models.StatusCompleted
	if got := Group(tasks)[0].CompletionPercentage; got != 67 {
		t.Errorf("expected 67, got %d", got)
	}
}

func TestGroup_StoryDescription(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Name: "a", Story: "S"},
		{ID: "2", Name: "b", Story: "S", StoryDescription: "the S story"},
	}
	if got := Group(tasks)[0].Description; got != "the S story" {
		t.Errorf("expected first non-empty story description, got %q", got)
	}
}
