package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/shrimptools/taskviewer/models"
)

func TestProject_EmptyCollections(t *testing.T) {
	stats := Project(nil, nil, nil, nil)

	if stats.TotalEpics != 0 || stats.ActiveStories != 0 || stats.PendingTasks != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("empty task list must yield 0%% completion, got %d", stats.CompletionRate)
	}
	if stats.AverageScore != ScoreNoData {
		t.Errorf("expected no-data sentinel, got %d", stats.AverageScore)
	}
	if len(stats.RecentActivity) != 0 {
		t.Errorf("expected empty activity feed, got %d entries", len(stats.RecentActivity))
	}
}

func TestProject_MixedStatuses(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Status: models.StatusPending},
		{ID: "2", Status: models.StatusCompleted},
		{ID: "3", Status: models.StatusInProgress},
		{ID: "4", Status: models.StatusCompleted},
	}

	stats := Project(nil, nil, tasks, nil)
	if stats.PendingTasks != 1 {
		t.Errorf("expected 1 pending task, got %d", stats.PendingTasks)
	}
	if stats.CompletionRate != 50 {
		t.Errorf("expected 50%% completion, got %d", stats.CompletionRate)
	}
}

func TestProject_MissingStoryStatusCountsAsActive(t *testing.T) {
	stories := []models.Story{
		{ID: "s1", Status: models.StatusCompleted},
		{ID: "s2", Status: models.StatusInProgress},
		{ID: "s3"}, // no status: counts as active, on purpose
	}

	stats := Project(nil, stories, nil, nil)
	if stats.ActiveStories != 2 {
		t.Errorf("expected 2 active stories (missing status is active), got %d", stats.ActiveStories)
	}
}

func TestProject_ActivityOrderingAndCap(t *testing.T) {
	verifications := make(map[string]models.VerificationRecord)
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("story-%d", i)
		verifications[id] = models.VerificationRecord{
			StoryID:   id,
			Score:     float64(50 + i),
			Timestamp: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		}
	}

	stats := Project(nil, nil, nil, verifications)
	if len(stats.RecentActivity) != maxRecentActivity {
		t.Fatalf("expected %d activity entries, got %d", maxRecentActivity, len(stats.RecentActivity))
	}
	for i := 1; i < len(stats.RecentActivity); i++ {
		prev, _ := time.Parse(time.RFC3339, stats.RecentActivity[i-1].Timestamp)
		cur, _ := time.Parse(time.RFC3339, stats.RecentActivity[i].Timestamp)
		if cur.After(prev) {
			t.Errorf("activity not sorted newest-first at index %d", i)
		}
	}
	if stats.RecentActivity[0].StoryID != "story-9" {
		t.Errorf("expected newest record first, got %s", stats.RecentActivity[0].StoryID)
	}
}

func TestProject_InvalidTimestampsSortOldest(t *testing.T) {
	verifications := map[string]models.VerificationRecord{
		"bad":  {StoryID: "bad", Score: 10, Timestamp: "not-a-date"},
		"good": {StoryID: "good", Score: 90, Timestamp: "2025-08-24T10:00:00Z"},
		"also": {StoryID: "also", Score: 50, Timestamp: ""},
	}

	stats := Project(nil, nil, nil, verifications)
	if len(stats.RecentActivity) != 3 {
		t.Fatalf("invalid timestamps must not drop records: got %d", len(stats.RecentActivity))
	}
	if stats.RecentActivity[0].StoryID != "good" {
		t.Errorf("parseable timestamp should sort first, got %s", stats.RecentActivity[0].StoryID)
	}
	// The two unparseable ones sort after, by story ID, deterministically.
	if stats.RecentActivity[1].StoryID != "also" || stats.RecentActivity[2].StoryID != "bad" {
		t.Errorf("unexpected tail order: %s, %s", stats.RecentActivity[1].StoryID, stats.RecentActivity[2].StoryID)
	}
}

func TestProject_AverageScore(t *testing.T) {
	verifications := map[string]models.VerificationRecord{
		"a": {StoryID: "a", Score: 80, Timestamp: "2025-08-24T10:00:00Z"},
		"b": {StoryID: "b", Score: 85, Timestamp: "2025-08-24T11:00:00Z"},
	}

	stats := Project(nil, nil, nil, verifications)
	if stats.AverageScore != 83 { // 82.5 rounds half-up
		t.Errorf("expected 83, got %d", stats.AverageScore)
	}
}

func TestProject_TotalEpics(t *testing.T) {
	epics := []models.Epic{{ID: "e1"}, {ID: "e2", Title: "Second"}}
	if got := Project(epics, nil, nil, nil).TotalEpics; got != 2 {
		t.Errorf("expected 2 epics, got %d", got)
	}
}
