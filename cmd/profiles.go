package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/shrimptools/taskviewer/internal/profile"
)

// ErrNoProfiles is returned when an interactive selection is attempted but no
// profiles are registered.
var ErrNoProfiles = errors.New("no profiles registered, add one with 'taskviewer profiles add'")

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage project profiles",
	Long:  `List, add, rename and remove the project profiles the dashboard serves.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		profiles, err := registry.List()
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles registered.")
			return nil
		}
		for _, p := range profiles {
			fmt.Printf("%-40s  %-20s  %s\n", p.ID, p.Name, p.TaskPath)
		}
		return nil
	},
}

var profileRoot string

var profilesAddCmd = &cobra.Command{
	Use:   "add <name> <task-file>",
	Short: "Register a task file as a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}

		taskPath, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		root := profileRoot
		if root != "" {
			if root, err = filepath.Abs(root); err != nil {
				return err
			}
		}

		p, err := registry.Add(args[0], taskPath, root)
		if err != nil {
			return err
		}
		fmt.Printf("Added profile %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var profilesRenameCmd = &cobra.Command{
	Use:   "rename [id] <new-name>",
	Short: "Rename a profile",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}

		var id, newName string
		if len(args) == 2 {
			id, newName = args[0], args[1]
		} else {
			newName = args[0]
			p, err := selectProfileInteractive(registry, "Rename which profile")
			if err != nil {
				return err
			}
			id = p.ID
		}

		p, err := registry.Rename(id, newName)
		if err != nil {
			return err
		}
		fmt.Printf("Renamed to %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var profilesRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a profile (the task file itself is untouched)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}

		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			p, err := selectProfileInteractive(registry, "Remove which profile")
			if err != nil {
				return err
			}
			id = p.ID
		}

		if err := registry.Remove(id); err != nil {
			return err
		}
		fmt.Printf("Removed profile %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd, profilesAddCmd, profilesRenameCmd, profilesRemoveCmd)

	profilesAddCmd.Flags().StringVar(&profileRoot, "project-root", "", "project root directory (for project-scoped agent definitions)")
}

// selectProfileInteractive prompts the user to pick one registered profile.
func selectProfileInteractive(registry *profile.Registry, label string) (profile.Profile, error) {
	profiles, err := registry.List()
	if err != nil {
		return profile.Profile{}, err
	}
	if len(profiles) == 0 {
		return profile.Profile{}, ErrNoProfiles
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Name | cyan }} ({{ .TaskPath }})`,
		Inactive: `  {{ .Name | faint }} ({{ .TaskPath }})`,
		Selected: `{{ "✔" | green }} {{ .Name | faint }}`,
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     profiles,
		Templates: templates,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return profile.Profile{}, err
	}
	return profiles[i], nil
}
