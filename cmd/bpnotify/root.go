package main

import (
	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
	"github.com/imyashkale/bigpanda-notifier/internal/services"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	eventFile   string
	envFile     string
	verbose     bool
	result      string
	startMillis int64
)

var rootCmd = &cobra.Command{
	Use:   "bpnotify",
	Short: "Send build events to BigPanda",
	Long: `bpnotify reports build lifecycle events to BigPanda.

Settings come from BIGPANDA_* environment variables (or a .env file in the
working directory). The build itself is described by --event and by the
Jenkins environment (JOB_NAME, BUILD_NUMBER, BUILD_URL, JENKINS_URL, ...).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logger.InitText(cmd.ErrOrStderr(), verbose)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&eventFile, "event", "", "JSON file describing the build")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "extra build environment in KEY=VALUE form")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().StringVar(&result, "result", "", "build result (SUCCESS, UNSTABLE, FAILURE, NOT_BUILT, ABORTED); defaults to $BUILD_RESULT")
	rootCmd.PersistentFlags().Int64Var(&startMillis, "start-millis", 0, "build start time in epoch millis, e.g. currentBuild.startTimeInMillis")

	rootCmd.AddCommand(changeCmd, deployCmd, checkCmd)
}

func newNotifier() *services.Notifier {
	return services.NewNotifier(services.NewBigPandaClient(config.ProxyFromEnv()))
}
