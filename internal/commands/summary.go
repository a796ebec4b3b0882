package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
	"github.com/balkashynov/tick/internal/parser"
	"github.com/balkashynov/tick/internal/report"
	"github.com/balkashynov/tick/internal/summary"
)

var timeNow = time.Now

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"today"},
	Short:   "Show today's summary",
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		dash, err := report.New(a.store, report.WithClock(timeNow)).Dashboard(cmd.Context(), a.user)
		if err != nil {
			return err
		}

		printActiveLine(dash.ActiveSession)
		fmt.Printf("📅 %s\n", dash.Date.Format(report.DailyLabelLayout))
		fmt.Printf("Tracked today: %s, %d tasks completed\n", dash.Spent, dash.CompletedTasks)

		if len(dash.PendingTasks) > 0 {
			fmt.Println("\nRecent tasks")
			for _, t := range dash.PendingTasks {
				fmt.Printf("  #%-4d %-40s %s\n", t.ID, truncate(t.Name, 38), t.Project.Name)
			}
		}
		if len(dash.Projects) > 0 {
			fmt.Println("\nRecent projects")
			for _, p := range dash.Projects {
				fmt.Printf("  #%-4d %s\n", p.ID, p.Name)
			}
		}
		return nil
	}),
}

var dailyCmd = &cobra.Command{
	Use:   "daily [day]",
	Short: "Show the time tracked on a day",
	Long: `Show the time tracked on a day, per project and per session. Defaults to today.

Examples:
  tick daily
  tick daily yesterday
  tick daily 3          # three days ago
  tick daily 12/10/2026`,
	Args: cobra.MaximumNArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		today := calendar.Today(timeNow(), a.user.Location())
		day := today
		if len(args) == 1 {
			var err error
			if day, err = parser.ParseDay(args[0], today); err != nil {
				return err
			}
		}

		daily, err := report.New(a.store, report.WithClock(timeNow)).DailyFor(cmd.Context(), a.user, day)
		if err != nil {
			return err
		}

		printActiveLine(daily.ActiveSession)
		fmt.Printf("📅 %s\n", parser.FormatDay(daily.Date, today))
		fmt.Printf("Tracked: %s, %d tasks completed\n", daily.Spent, daily.CompletedTasks)
		if len(daily.Sessions) == 0 {
			fmt.Println("\nNo time tracked on this day.")
			return nil
		}

		printProjects(daily.Projects)

		loc := a.user.Location()
		fmt.Printf("\n%-6s %-8s %-36s %-15s %s\n", "ID", "START", "TASK", "PROJECT", "LENGTH")
		fmt.Println(strings.Repeat("-", 80))
		for _, s := range daily.Sessions {
			started := "-"
			if s.StartTime != nil {
				started = s.StartTime.In(loc).Format("15:04")
			}
			fmt.Printf("%-6d %-8s %-36s %-15s %s\n",
				s.ID,
				started,
				truncate(s.Task.Name, 34),
				truncate(s.Task.Project.Name, 13),
				durationText(s))
		}
		return nil
	}),
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly [weeks-ago]",
	Short: "Show a seven day timesheet",
	Long: `Show the seven days ending today, or ending weeks-ago weeks before today,
as a timesheet of hours per project and day.

Examples:
  tick weekly
  tick weekly 1         # the seven days before that`,
	Args: cobra.MaximumNArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		weeksAgo := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid weeks ago '%s'", args[0])
			}
			weeksAgo = n
		}

		ctx := cmd.Context()
		weekly, err := report.New(a.store, report.WithClock(timeNow)).Weekly(ctx, a.user, weeksAgo)
		if err != nil {
			return err
		}
		sessions, err := a.store.SessionsByUserAndDateRange(ctx, a.user, weekly.Start, 6, db.OrderAscending)
		if err != nil {
			return err
		}

		printActiveLine(weekly.ActiveSession)
		fmt.Printf("📅 %s\n", weekly.Label)
		fmt.Printf("Tracked: %s, %d tasks completed\n\n", weekly.Spent, weekly.CompletedTasks)

		rows := buildTimesheet(sessions, weekly.Start, a.user.Location())
		if len(rows) == 0 {
			fmt.Println("No time tracked this week.")
			return nil
		}
		printTimesheet(rows, weekly.Days)
		printProjects(weekly.Projects)
		return nil
	}),
}

// timesheetRow is one project's seconds for each day of a week.
type timesheetRow struct {
	Project models.Project
	Days    [7]int64
	Total   int64
}

// buildTimesheet spreads sessions over the seven days starting at start,
// one row per project in order of first appearance
func buildTimesheet(sessions []models.Session, start calendar.Date, loc *time.Location) []timesheetRow {
	var rows []timesheetRow
	for _, group := range summary.GroupByProject(sessions) {
		row := timesheetRow{Project: group.Project}
		for day, daySessions := range summary.GroupByDate(group.Sessions, loc) {
			offset := start.DaysUntil(day)
			if offset < 0 || offset >= len(row.Days) {
				continue
			}
			row.Days[offset] += summary.TotalSeconds(daySessions)
		}
		for _, seconds := range row.Days {
			row.Total += seconds
		}
		rows = append(rows, row)
	}
	return rows
}

// printTimesheet renders rows as a fixed-width project by day table
func printTimesheet(rows []timesheetRow, days []summary.DaySummary) {
	const (
		dayColumnWidth   = 9
		totalColumnWidth = 10
	)

	nameWidth := len("Project")
	for _, row := range rows {
		if n := len([]rune(row.Project.Name)); n > nameWidth {
			nameWidth = n
		}
	}
	if nameWidth > 24 {
		nameWidth = 24
	}

	separator := func() {
		fmt.Print(strings.Repeat("-", nameWidth))
		for range days {
			fmt.Print("  " + strings.Repeat("-", dayColumnWidth-2))
		}
		fmt.Println("  " + strings.Repeat("-", totalColumnWidth-2))
	}

	fmt.Printf("%-*s", nameWidth, "Project")
	for _, day := range days {
		fmt.Printf("  %*s", dayColumnWidth-2, day.Date.Format("Mon 02"))
	}
	fmt.Printf("  %*s\n", totalColumnWidth-2, "Total")
	separator()

	for _, row := range rows {
		fmt.Printf("%-*s", nameWidth, truncate(row.Project.Name, nameWidth))
		for _, seconds := range row.Days[:len(days)] {
			fmt.Printf("  %*s", dayColumnWidth-2, cellText(seconds))
		}
		fmt.Printf("  %*s\n", totalColumnWidth-2, summary.Breakdown(row.Total))
	}
	separator()

	var grandTotal int64
	fmt.Printf("%-*s", nameWidth, "Total")
	for _, day := range days {
		fmt.Printf("  %*s", dayColumnWidth-2, cellText(day.TotalSeconds))
		grandTotal += day.TotalSeconds
	}
	fmt.Printf("  %*s\n", totalColumnWidth-2, summary.Breakdown(grandTotal))
}

func printProjects(projects []summary.ProjectSummary) {
	fmt.Printf("\n%-30s %-10s %s\n", "PROJECT", "TIME", "SHARE")
	fmt.Println(strings.Repeat("-", 50))
	for _, p := range projects {
		fmt.Printf("%-30s %-10s %3d%%\n", truncate(p.Project.Name, 30), p.Spent, p.Percentage)
	}
}

func printActiveLine(session *models.Session) {
	if session == nil {
		return
	}
	fmt.Printf("⏱️  Tracking #%d %s (%s)\n\n", session.TaskID, session.Task.Name, durationText(*session))
}

// durationText shows a session's length, or the time so far while it runs
func durationText(s models.Session) string {
	if s.IsActive() {
		return summary.Breakdown(int64(s.Elapsed(timeNow())/time.Second)).String() + " so far"
	}
	return summary.Breakdown(s.DurationSeconds()).String()
}

func cellText(seconds int64) string {
	if seconds == 0 {
		return "-"
	}
	return summary.Breakdown(seconds).String()
}
