package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show comprehensive help for tick",
	Long:  `Display detailed help for all tick commands and flags, or the usage of a single command.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if target, _, err := rootCmd.Find(args); err == nil && target != rootCmd {
				target.Help()
				return
			}
		}
		showCustomHelp()
	},
}

func showCustomHelp() {
	fmt.Print(`
████████╗██╗ ██████╗██╗  ██╗
╚══██╔══╝██║██╔════╝██║ ██╔╝
   ██║   ██║██║     █████╔╝
   ██║   ██║██║     ██╔═██╗
   ██║   ██║╚██████╗██║  ██╗
   ╚═╝   ╚═╝ ╚═════╝╚═╝  ╚═╝

tick - Personal Time Tracker

COMMANDS:

  project add <name>      Create a project
    --color               Hex color code, e.g. #FF8800
  project ls              List active projects
    -a, --archived        List archived projects instead
  project show <id>       Show a project's tasks and total time
  project archive <id>    Archive a project
  project unarchive <id>  Restore an archived project
  project rm <id>         Delete a project, its tasks and sessions
    -y, --yes             Confirm deletion

  task add [line]         Create a task with smart parsing
                          (opens a form without a line)
    Smart syntax:
      @project      Project the task belongs to (required)
      +done         Create the task already completed

    Example:
      tick task add "Write report @work"

  task ls                 List pending tasks
    -d, --done            List completed tasks
    --today               List tasks completed today
  task show <id>          Show a task and its sessions
  task edit <id>          Rename or move a task
                          (opens a form without flags)
    -n, --name            New name
    -p, --project         Move to this project
  task done <id>          Mark task as completed
  task undone <id>        Mark task as pending
  task rm <id>            Delete a task and its sessions
    -y, --yes             Confirm deletion

  start <task-id>         Start tracking time on a task
    --no-ui               Start without interactive timer
  stop                    Stop current time tracking session
    --notify              Send a desktop notification
  status                  Show current tracking status
  review <session-id>     Correct a session after the fact
    -m, --minutes         Session length in minutes
                          (opens a form when omitted)
    -n, --name            Rename the session's task
    --done                Mark the task done

  dashboard               Today's time, completed and recent tasks
  daily [day]             Time per project and session for a day
                          (today, yesterday, 3, 3d, dd/mm/yyyy, yyyy-mm-dd)
  weekly [weeks-ago]      Seven day timesheet per project

  serve                   Run the HTTP API
  token                   Issue an API token for the configured user
  version                 Show version information
  help                    Show this help

GLOBAL FLAGS:

  -c, --config            Path to a YAML config file

Configuration is read from the config file and TICK_* environment variables
(a .env file in the working directory is loaded too). The CLI acts as the
user named by TICK_USER, created on first use.

`)
}
