package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
	"github.com/balkashynov/tick/internal/summary"
	"github.com/balkashynov/tick/internal/tui"
)

var startCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start tracking time on a task",
	Long: `Start tracking time on a task. Opens interactive timer by default, use --no-ui for simple start.

Only one session can run at a time; stop it before starting another.

Examples:
  tick start 42         # Start timer with interactive UI
  tick start 42 --no-ui # Start timer without UI`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		taskID, err := parseID(args[0], "task")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		session, err := a.store.CreateNewSession(ctx, a.user, taskID)
		if err != nil {
			var active *db.ActiveSessionError
			if errors.As(err, &active) {
				printActive("Already tracking", active.Session)
				fmt.Println("Use 'tick stop' to end it first.")
				return nil
			}
			return err
		}

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			fmt.Printf("⏱️  Started tracking time for task #%d: %s\n", session.TaskID, session.Task.Name)
			fmt.Printf("Started at: %s\n", session.StartTime.Local().Format("15:04:05"))
			return nil
		}

		return tui.RunTimerTUI(*session, func() (*models.Session, error) {
			return a.store.EndCurrentSession(ctx, a.user)
		})
	}),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop tracking time",
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		session, err := a.store.EndCurrentSession(cmd.Context(), a.user)
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("No active time tracking session")
			return nil
		}

		spent := summary.Breakdown(session.DurationSeconds())
		fmt.Printf("⏹️  Stopped tracking time for task #%d: %s\n", session.TaskID, session.Task.Name)
		fmt.Printf("Session duration: %s\n", spent)

		if notify, _ := cmd.Flags().GetBool("notify"); notify {
			msg := fmt.Sprintf("%s: %s on %s", session.Task.Project.Name, spent, session.Task.Name)
			if err := beeep.Notify("tick: session stopped", msg, ""); err != nil {
				a.logger.Warn().
					Err(err).
					Msg("failed to send desktop notification")
			}
		}
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current time tracking status",
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		session, err := a.store.GetActiveSession(cmd.Context(), a.user)
		if err != nil {
			return err
		}

		if session == nil {
			fmt.Println("No active time tracking session")
			return nil
		}

		printActive("Currently tracking", *session)
		return nil
	}),
}

var reviewCmd = &cobra.Command{
	Use:   "review [session-id]",
	Short: "Correct a session after the fact",
	Long: `Rewrite a session's length, and optionally rename its task or mark it done.
The session then ends --minutes after it started; a running session is stopped.
Without --minutes an interactive form opens.

Examples:
  tick review 7
  tick review 7 --minutes 45
  tick review 7 --minutes 30 --name "Write the report" --done`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		sessionID, err := parseID(args[0], "session")
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("minutes") {
			session, err := a.store.GetSession(cmd.Context(), a.user, sessionID)
			if err != nil {
				return err
			}
			return tui.RunForm(tui.NewReviewForm(cmd.Context(), a.store, a.user, *session))
		}

		minutes, _ := cmd.Flags().GetInt("minutes")
		name, _ := cmd.Flags().GetString("name")
		in := db.ReviewInput{
			TaskName:        name,
			DurationMinutes: minutes,
		}
		if cmd.Flags().Changed("done") {
			done, _ := cmd.Flags().GetBool("done")
			in.MarkDone = &done
		}

		session, err := a.store.ReviewSession(cmd.Context(), a.user, sessionID, in)
		if err != nil {
			return err
		}

		fmt.Printf("📝 Reviewed session #%d on task #%d: %s\n", session.ID, session.TaskID, session.Task.Name)
		fmt.Printf("Session duration: %s\n", summary.Breakdown(session.DurationSeconds()))
		if session.Task.IsDone {
			fmt.Println("Task is done ✅")
		}
		return nil
	}),
}

func printActive(prefix string, session models.Session) {
	fmt.Printf("⏱️  %s: task #%d: %s (%s)\n", prefix, session.TaskID, session.Task.Name, session.Task.Project.Name)
	if session.StartTime == nil {
		return
	}
	fmt.Printf("Started at: %s (%s)\n", session.StartTime.Local().Format("15:04:05"), humanize.Time(*session.StartTime))
	fmt.Printf("Elapsed time: %s\n", summary.Breakdown(int64(session.Elapsed(timeNow())/time.Second)))
}

func init() {
	startCmd.Flags().Bool("no-ui", false, "Start timer without interactive UI")
	stopCmd.Flags().Bool("notify", false, "Send a desktop notification with the session length")

	reviewCmd.Flags().IntP("minutes", "m", 0, "Session length in minutes")
	reviewCmd.Flags().StringP("name", "n", "", "Rename the session's task")
	reviewCmd.Flags().Bool("done", false, "Mark the task done (--done=false marks it pending)")
}
