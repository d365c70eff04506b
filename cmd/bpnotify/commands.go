package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/models"
	"github.com/imyashkale/bigpanda-notifier/internal/services"
	"github.com/spf13/cobra"
)

var changeCmd = &cobra.Command{
	Use:       "change started|completed",
	Short:     "Report a build start or completion as a BigPanda change",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"started", "completed"},
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := loadEvent(eventFile, os.Getenv)
		if err != nil {
			return err
		}

		now := time.Now()
		if args[0] == "started" {
			markStarted(event, startMillis, now)
		} else if err := markCompleted(event, startMillis, result, os.Getenv, now); err != nil {
			return err
		}

		settings := config.SettingsFromEnv()
		env := newBuildEnvironment(envFile)
		notifier := newNotifier()

		var outcome services.Outcome
		if args[0] == "started" {
			outcome = notifier.OnStarted(cmd.Context(), settings, event.ToDomain(), env)
		} else {
			outcome = notifier.OnCompleted(cmd.Context(), settings, event.ToDomain(), env)
		}

		printConsole(cmd.OutOrStdout(), outcome.Console)
		return nil
	},
}

var deployCmd = &cobra.Command{
	Use:       "deploy start|end",
	Short:     "Report a deployment stage to BigPanda",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"start", "end"},
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := loadEvent(eventFile, os.Getenv)
		if err != nil {
			return err
		}

		now := time.Now()
		if args[0] == "start" {
			markStarted(event, startMillis, now)
		} else {
			if err := markCompleted(event, startMillis, result, os.Getenv, now); err != nil {
				return err
			}
			if event.Result == models.ResultNone {
				return errors.New("build result unknown: pass --result or set BUILD_RESULT")
			}
		}

		settings := config.SettingsFromEnv()
		notifier := newNotifier()

		var outcome services.Outcome
		if args[0] == "start" {
			outcome = notifier.PreBuild(cmd.Context(), settings, event.ToDomain())
		} else {
			outcome = notifier.PostBuild(cmd.Context(), settings, event.ToDomain())
		}

		printConsole(cmd.OutOrStdout(), outcome.Console)
		if outcome.FailBuild {
			return fmt.Errorf("deployment notification failed: %w", outcome.Err)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the BigPanda settings in the environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.SettingsFromEnv()
		invalid, missing := settings.Check()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "changes enabled: %t\n", settings.ChangesEnabled())
		fmt.Fprintf(out, "deployments enabled: %t\n", settings.DeploymentsEnabled())
		printFieldErrors(out, "missing", missing)
		printFieldErrors(out, "invalid", invalid)

		if len(invalid) > 0 {
			return fmt.Errorf("%d invalid setting(s)", len(invalid))
		}
		return nil
	},
}

func printConsole(w io.Writer, lines []models.ConsoleLine) {
	for _, line := range lines {
		fmt.Fprintln(w, line.Message)
	}
}

func printFieldErrors(w io.Writer, kind string, errs config.FieldErrors) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "%s %s: %s\n", kind, field, errs[field])
	}
}
