package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shrimptools/taskviewer/internal/board"
	"github.com/shrimptools/taskviewer/store"
)

var (
	tasksFilterText   string
	tasksFilterStatus string
	tasksFilterStory  string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks <profile-id>",
	Short: "List a profile's tasks grouped by story",
	Long: `Print a quick terminal view of one profile's tasks, grouped by story
with per-group completion stats. Honors the same filters as the dashboard.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		p, err := registry.Get(args[0])
		if err != nil {
			return err
		}

		ts, err := store.NewFileTaskStore(p.TaskPath)
		if err != nil {
			return err
		}
		tf, err := ts.Load()
		if err != nil && !errors.Is(err, store.ErrNotCreated) {
			return err
		}

		state := board.FilterState{
			Text:   tasksFilterText,
			Status: tasksFilterStatus,
			Story:  tasksFilterStory,
		}
		groups := board.GroupFiltered(tf.Tasks, state)
		if len(groups) == 0 {
			fmt.Println("No tasks.")
			return nil
		}

		for _, g := range groups {
			fmt.Printf("%s  (%d/%d done, %d%%)\n", g.Key, g.Stats.Completed, g.Stats.Total, g.CompletionPercentage)
			for _, t := range g.Tasks {
				fmt.Printf("  [%-11s] %s  %s\n", t.Status, t.ID, t.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)

	tasksCmd.Flags().StringVar(&tasksFilterText, "filter", "", "substring match on name and description")
	tasksCmd.Flags().StringVar(&tasksFilterStatus, "status", "", "filter by status (pending, in_progress, completed)")
	tasksCmd.Flags().StringVar(&tasksFilterStory, "story", "", "filter by story key")
}
