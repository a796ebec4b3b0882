package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tick/internal/api"
	"github.com/balkashynov/tick/internal/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until interrupted. Requests authenticate with a bearer token,
see 'tick token'. Listens on TICK_HTTP_HOST:TICK_HTTP_PORT.`,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		tokens, err := api.NewTokens(a.cfg.Auth)
		if err != nil {
			return err
		}

		handler := api.New(a.store, report.New(a.store), tokens)
		router := api.NewRouter(handler, a.logger, a.cfg.Env)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return api.Serve(ctx, a.cfg.HTTP, router, a.logger)
	}),
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the configured user",
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		tokens, err := api.NewTokens(a.cfg.Auth)
		if err != nil {
			return err
		}

		token, expiresAt, err := tokens.Issue(a.user.ID)
		if err != nil {
			return err
		}

		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "Token for %s expires %s (%s)\n",
			a.user.Email, humanize.Time(expiresAt), expiresAt.Local().Format("Jan 02 2006 15:04"))
		return nil
	}),
}
