package board

import (
	"math"
	"sort"
	"time"

	"github.com/shrimptools/taskviewer/models"
)

// ScoreNoData is the averageScore sentinel when there are no verification
// records. The UI renders it as "no data"; it is deliberately not 0, which
// would read as a real (terrible) score.
const ScoreNoData = -1

// maxRecentActivity caps the dashboard activity feed.
const maxRecentActivity = 5

// ActivityItem is one entry in the recent-verification feed.
type ActivityItem struct {
	StoryID   string  `json:"storyId"`
	Score     float64 `json:"score"`
	Timestamp string  `json:"timestamp"`
}

// DashboardStats are the top-level rollups for the overview tab. They are
// computed straight from the source collections, independent of the story
// grouping used by the accordion view.
type DashboardStats struct {
	TotalEpics     int            `json:"totalEpics"`
	ActiveStories  int            `json:"activeStories"`
	PendingTasks   int            `json:"pendingTasks"`
	TotalTasks     int            `json:"totalTasks"`
	CompletedTasks int            `json:"completedTasks"`
	CompletionRate int            `json:"completionRate"`
	RecentActivity []ActivityItem `json:"recentActivity"`
	AverageScore   int            `json:"averageScore"`
}

// Project computes the dashboard rollups. Empty collections produce
// zero-valued aggregates and the no-data score sentinel; nothing here can
// fail or divide by zero.
//
// A story with a missing status counts as active. That mirrors the dashboard
// this replaces; downstream numbers depend on it, so it stays even though it
// looks like an oversight.
func Project(epics []models.Epic, stories []models.Story, tasks []models.Task, verifications map[string]models.VerificationRecord) DashboardStats {
	stats := DashboardStats{
		TotalEpics:     len(epics),
		TotalTasks:     len(tasks),
		RecentActivity: []ActivityItem{},
		AverageScore:   ScoreNoData,
	}

	for _, s := range stories {
		if s.Status != models.StatusCompleted {
			stats.ActiveStories++
		}
	}

	for _, t := range tasks {
		switch t.Status {
		case models.StatusPending:
			stats.PendingTasks++
		case models.StatusCompleted:
			stats.CompletedTasks++
		}
	}
	stats.CompletionRate = percentage(stats.CompletedTasks, stats.TotalTasks)

	if len(verifications) > 0 {
		stats.RecentActivity = recentActivity(verifications)
		stats.AverageScore = averageScore(verifications)
	}

	return stats
}

// recentActivity sorts all verification records newest first and keeps the
// top entries. Records whose timestamp does not parse sort as oldest, with
// story ID as a stable tiebreak, so a bad timestamp can never break the sort.
func recentActivity(verifications map[string]models.VerificationRecord) []ActivityItem {
	items := make([]ActivityItem, 0, len(verifications))
	for _, v := range verifications {
		items = append(items, ActivityItem{StoryID: v.StoryID, Score: v.Score, Timestamp: v.Timestamp})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, iOK := parseStamp(items[i].Timestamp)
		tj, jOK := parseStamp(items[j].Timestamp)
		switch {
		case iOK && jOK:
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return items[i].StoryID < items[j].StoryID
		case iOK:
			return true
		case jOK:
			return false
		default:
			return items[i].StoryID < items[j].StoryID
		}
	})

	if len(items) > maxRecentActivity {
		items = items[:maxRecentActivity]
	}
	return items
}

func parseStamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}

func averageScore(verifications map[string]models.VerificationRecord) int {
	var sum float64
	for _, v := range verifications {
		sum += v.Score
	}
	return int(math.Round(sum / float64(len(verifications))))
}
