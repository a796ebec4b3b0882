package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/report"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p"},
	Short:   "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a project",
	Long: `Create a project. Colors are hex codes like #FF8800; projects without one get a neutral grey.

Examples:
  tick project add Work
  tick project add "Side project" --color "#FF8800"`,
	Args: cobra.MinimumNArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		color, _ := cmd.Flags().GetString("color")
		project, err := a.store.CreateProject(cmd.Context(), a.user, db.CreateProjectRequest{
			Name:  strings.Join(args, " "),
			Color: color,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✅ Project created (ID: %d): %s %s\n", project.ID, project.Name, project.Color)
		return nil
	}),
}

var projectListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List projects",
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		archived, _ := cmd.Flags().GetBool("archived")
		projects, err := a.store.ListProjects(cmd.Context(), a.user, !archived)
		if err != nil {
			return err
		}

		if len(projects) == 0 {
			if archived {
				fmt.Println("No archived projects.")
			} else {
				fmt.Println("No projects found. Use 'tick project add NAME' to create your first project.")
			}
			return nil
		}

		fmt.Printf("%-4s %-30s %-8s %s\n", "ID", "NAME", "COLOR", "EDITED")
		fmt.Println(strings.Repeat("-", 60))
		for _, p := range projects {
			fmt.Printf("%-4d %-30s %-8s %s\n", p.ID, truncate(p.Name, 30), p.Color, humanize.Time(p.LastEdited))
		}
		return nil
	}),
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show a project's tasks and total time",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}

		detail, err := report.New(a.store).ProjectDetail(cmd.Context(), a.user, id)
		if err != nil {
			return err
		}

		status := "active"
		if !detail.Project.Active {
			status = "archived"
		}
		fmt.Printf("📁 %s (%s, %s)\n", detail.Project.Name, detail.Project.Color, status)
		fmt.Printf("Total time: %s\n", detail.Spent)

		fmt.Printf("\nPending tasks (%d)\n", len(detail.PendingTasks))
		for _, t := range detail.PendingTasks {
			fmt.Printf("  #%-4d %s\n", t.ID, t.Name)
		}
		fmt.Printf("\nDone tasks (%d)\n", len(detail.DoneTasks))
		for _, t := range detail.DoneTasks {
			fmt.Printf("  #%-4d %s\n", t.ID, t.Name)
		}
		return nil
	}),
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive [project-id]",
	Short: "Archive a project",
	Long:  "Archive a project. Its tasks stay, but no new tasks can be added to it until it is restored.",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return setProjectActive(cmd, args, a, false)
	}),
}

var projectUnarchiveCmd = &cobra.Command{
	Use:     "unarchive [project-id]",
	Aliases: []string{"restore"},
	Short:   "Restore an archived project",
	Args:    cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return setProjectActive(cmd, args, a, true)
	}),
}

var projectDeleteCmd = &cobra.Command{
	Use:     "rm [project-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a project with all its tasks and sessions",
	Args:    cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}

		project, err := a.store.GetProject(cmd.Context(), a.user, id)
		if err != nil {
			return err
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Printf("⚠️  Deleting project %s removes all of its tasks and their tracked time.\n", project.Name)
			fmt.Printf("Run 'tick project rm %d --yes' to confirm.\n", project.ID)
			return nil
		}

		if err := a.store.DeleteProject(cmd.Context(), a.user, id); err != nil {
			return err
		}
		fmt.Printf("🗑️  Project deleted: %s\n", project.Name)
		return nil
	}),
}

func setProjectActive(cmd *cobra.Command, args []string, a *app, active bool) error {
	id, err := parseID(args[0], "project")
	if err != nil {
		return err
	}

	project, err := a.store.SetProjectActive(cmd.Context(), a.user, id, active)
	if err != nil {
		return err
	}

	if active {
		fmt.Printf("📂 Project restored: %s\n", project.Name)
	} else {
		fmt.Printf("📦 Project archived: %s\n", project.Name)
	}
	return nil
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func init() {
	projectAddCmd.Flags().String("color", "", "Hex color code, e.g. #FF8800")
	projectListCmd.Flags().BoolP("archived", "a", false, "List archived projects instead")
	projectDeleteCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectArchiveCmd)
	projectCmd.AddCommand(projectUnarchiveCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}
