package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
	"github.com/balkashynov/tick/internal/parser"
	"github.com/balkashynov/tick/internal/report"
	"github.com/balkashynov/tick/internal/tui"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [task line]",
	Short: "Add a new task",
	Long: `Add a new task using natural syntax:
  @project - Project the task belongs to (required)
  +done    - Create the task already completed

Projects are matched by name, ignoring case; spaces in a name may be written as dashes.

Without arguments an interactive form opens.

Examples:
  tick task add
  tick task add "Write report @work"
  tick task add "Renew passport @side-project +done"`,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if len(args) == 0 {
			return tui.RunForm(tui.NewTaskForm(cmd.Context(), a.store, a.user, nil))
		}

		parsed := parser.ParseTask(strings.Join(args, " "))
		if !parsed.Valid() {
			return fmt.Errorf("%s", strings.Join(parsed.Errors, "; "))
		}

		project, err := findProject(cmd.Context(), a, parsed.Project)
		if err != nil {
			return err
		}

		task, err := a.store.CreateTask(cmd.Context(), a.user, db.CreateTaskRequest{
			ProjectID: project.ID,
			Name:      parsed.Name,
			IsDone:    parsed.Done,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✅ Task created (ID: %d): %s\n", task.ID, task.Name)
		fmt.Printf("   Project: %s\n", project.Name)
		if task.IsDone {
			fmt.Println("   Status: done")
		}
		return nil
	}),
}

var taskListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Long:    "List pending tasks, most recently edited first. Use --done for completed tasks or --today for tasks finished today.",
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		done, _ := cmd.Flags().GetBool("done")
		today, _ := cmd.Flags().GetBool("today")

		var (
			tasks []models.Task
			err   error
		)
		if today {
			tasks, err = a.store.TasksByUserAndDoneDateWithin(ctx, a.user, calendar.Today(timeNow(), a.user.Location()), 0)
		} else {
			tasks, err = a.store.TasksByUserAndIsActive(ctx, a.user, done)
		}
		if err != nil {
			return err
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found. Use 'tick task add \"Name @project\"' to create your first task.")
			return nil
		}

		fmt.Printf("%-4s %-6s %-40s %-15s %s\n", "ID", "STATUS", "NAME", "PROJECT", "EDITED")
		fmt.Println(strings.Repeat("-", 80))
		for _, task := range tasks {
			status := "todo"
			if task.IsDone {
				status = "done"
			}
			fmt.Printf("%-4d %-6s %-40s %-15s %s\n",
				task.ID,
				status,
				truncate(task.Name, 38),
				truncate(task.Project.Name, 13),
				humanize.Time(task.LastEdited))
		}
		return nil
	}),
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a task and its sessions",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0], "task")
		if err != nil {
			return err
		}

		detail, err := report.New(a.store).TaskDetail(cmd.Context(), a.user, id)
		if err != nil {
			return err
		}

		status := "todo"
		if detail.Task.IsDone {
			status = "done"
		}
		fmt.Printf("📌 #%d %s (%s, %s)\n", detail.Task.ID, detail.Task.Name, detail.Task.Project.Name, status)
		fmt.Printf("Total time: %s over %d sessions\n", detail.Spent, detail.SessionCount)
		if len(detail.Sessions) == 0 {
			return nil
		}

		loc := a.user.Location()
		fmt.Printf("\n%-6s %-18s %-10s %s\n", "ID", "STARTED", "ENDED", "LENGTH")
		fmt.Println(strings.Repeat("-", 50))
		for _, s := range detail.Sessions {
			started, ended := "-", "running"
			if s.StartTime != nil {
				started = s.StartTime.In(loc).Format("Jan 02 15:04")
			}
			if s.EndTime != nil {
				ended = s.EndTime.In(loc).Format("15:04")
			}
			fmt.Printf("%-6d %-18s %-10s %s\n", s.ID, started, ended, durationText(s))
		}
		return nil
	}),
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Rename a task or move it to another project",
	Long: `Rename a task or move it to another project.
Without flags an interactive form opens.

Examples:
  tick task edit 12
  tick task edit 12 --name "Write quarterly report"
  tick task edit 12 --project side-project`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0], "task")
		if err != nil {
			return err
		}

		var req db.UpdateTaskRequest
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		if cmd.Flags().Changed("project") {
			name, _ := cmd.Flags().GetString("project")
			project, err := findProject(cmd.Context(), a, strings.TrimPrefix(name, "@"))
			if err != nil {
				return err
			}
			req.ProjectID = &project.ID
		}
		if req.Name == nil && req.ProjectID == nil {
			task, err := a.store.GetTask(cmd.Context(), a.user, id)
			if err != nil {
				return err
			}
			return tui.RunForm(tui.NewTaskForm(cmd.Context(), a.store, a.user, task))
		}

		task, err := a.store.UpdateTask(cmd.Context(), a.user, id, req)
		if err != nil {
			return err
		}
		fmt.Printf("✏️  Task updated (ID: %d): %s\n", task.ID, task.Name)
		return nil
	}),
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return setTaskDone(cmd, args, a, true)
	}),
}

var taskUndoneCmd = &cobra.Command{
	Use:   "undone [task-id]",
	Short: "Mark a task as pending again",
	Args:  cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return setTaskDone(cmd, args, a, false)
	}),
}

var taskDeleteCmd = &cobra.Command{
	Use:     "rm [task-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a task with all its sessions",
	Args:    cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0], "task")
		if err != nil {
			return err
		}

		task, err := a.store.GetTask(cmd.Context(), a.user, id)
		if err != nil {
			return err
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Printf("⚠️  Deleting task %s removes all of its tracked time.\n", task.Name)
			fmt.Printf("Run 'tick task rm %d --yes' to confirm.\n", task.ID)
			return nil
		}

		if err := a.store.DeleteTask(cmd.Context(), a.user, id); err != nil {
			return err
		}
		fmt.Printf("🗑️  Task deleted: %s\n", task.Name)
		return nil
	}),
}

func setTaskDone(cmd *cobra.Command, args []string, a *app, done bool) error {
	id, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	task, err := a.store.SetTaskDone(cmd.Context(), a.user, id, done)
	if err != nil {
		return err
	}

	if done {
		fmt.Printf("✅ Task marked as done: %s\n", task.Name)
	} else {
		fmt.Printf("↩️  Task marked as pending: %s\n", task.Name)
	}
	return nil
}

// findProject looks up one of the user's active projects by name
func findProject(ctx context.Context, a *app, name string) (*models.Project, error) {
	projects, err := a.store.ListProjects(ctx, a.user, true)
	if err != nil {
		return nil, err
	}

	project, ok := parser.MatchProject(projects, name)
	if !ok {
		return nil, fmt.Errorf("no active project named @%s, create it with 'tick project add %s'", name, name)
	}
	return project, nil
}

func init() {
	taskListCmd.Flags().BoolP("done", "d", false, "List completed tasks")
	taskListCmd.Flags().Bool("today", false, "List tasks completed today")
	taskEditCmd.Flags().StringP("name", "n", "", "New task name")
	taskEditCmd.Flags().StringP("project", "p", "", "Move to this project")
	taskDeleteCmd.Flags().BoolP("yes", "y", false, "Confirm deletion")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskUndoneCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}
