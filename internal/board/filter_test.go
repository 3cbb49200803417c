package board

import (
	"reflect"
	"testing"

	"github.com/shrimptools/taskviewer/models"
)

func TestFilter_NeutralIsIdentity(t *testing.T) {
	tasks := []models.Task{
		task("1", "Add login", "Auth", models.StatusPending),
		task("2", "Fix header", "", models.StatusCompleted),
		{ID: "3"}, // nameless, statusless, storyless
	}

	got := Filter(tasks, NewFilterState())
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("neutral filter changed the list: %+v", got)
	}

	// Zero-value state normalizes to neutral too.
	got = Filter(tasks, FilterState{})
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("zero-value filter changed the list: %+v", got)
	}
}

func TestFilter_Text(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Name: "Add LOGIN page"},
		{ID: "2", Name: "Fix header", Description: "broken login link"},
		{ID: "3", Name: "Unrelated"},
		{ID: "4"}, // missing name must not panic, just not match
	}

	got := Filter(tasks, FilterState{Text: "login", Status: FilterAll, Story: FilterAll})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("case-insensitive name/description match failed: %+v", got)
	}
}

func TestFilter_Status(t *testing.T) {
	tasks := []models.Task{
		task("1", "a", "", models.StatusPending),
		task("2", "b", "", models.StatusCompleted),
		{ID: "3", Name: "c"}, // missing status
	}

	got := Filter(tasks, FilterState{Status: "completed", Story: FilterAll})
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("status filter failed: %+v", got)
	}

	// "all" passes tasks with missing status as well.
	got = Filter(tasks, FilterState{Status: FilterAll, Story: FilterAll})
	if len(got) != 3 {
		t.Errorf("all-status filter should pass everything, got %d", len(got))
	}
}

func TestFilter_StoryUsesDerivedKey(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Name: "a", Story: ""},
		{ID: "2", Name: "b", Story: "Auth"},
		{ID: "3", Name: "c"},
	}

	got := Filter(tasks, FilterState{Status: FilterAll, Story: NoStoryKey})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("story filter on derived key failed: %+v", got)
	}
}

func TestFilter_Compose(t *testing.T) {
	tasks := []models.Task{
		task("1", "Add login", "Auth", models.StatusPending),
		task("2", "Add login tests", "Auth", models.StatusCompleted),
		task("3", "Add login docs", "Docs", models.StatusPending),
	}

	got := Filter(tasks, FilterState{Text: "login", Status: "pending", Story: "Auth"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("AND composition failed: %+v", got)
	}
}

func TestGroupFiltered_CountsReflectFilter(t *testing.T) {
	tasks := []models.Task{
		task("1", "a", "S", models.StatusPending),
		task("2", "b", "S", models.StatusCompleted),
		task("3", "c", "S", models.StatusCompleted),
	}

	groups := GroupFiltered(tasks, FilterState{Status: "completed", Story: FilterAll})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Stats.Total != 2 || groups[0].CompletionPercentage != 100 {
		t.Errorf("counts should reflect the filtered subset: %+v", groups[0])
	}
}

func TestVisibleKeys(t *testing.T) {
	tasks := []models.Task{
		task("1", "a", "Zeta", models.StatusPending),
		task("2", "b", "Alpha", models.StatusCompleted),
	}

	keys := VisibleKeys(tasks, FilterState{Status: "pending", Story: FilterAll})
	if len(keys) != 1 || keys[0] != "Zeta" {
		t.Errorf("visible keys must honor the active filter: %v", keys)
	}
}
