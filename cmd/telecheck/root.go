package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"telecheck-go/internal/logger"
)

var version = "dev"

// newLogger loads .env before building the logger so LOG_LEVEL and
// ENVIRONMENT from the file apply.
func newLogger() *logger.Logger {
	_ = godotenv.Load()
	return logger.New().With("service", "telecheck")
}

func newRootCommand() *cobra.Command {
	log := newLogger()

	cmd := &cobra.Command{
		Use:   "telecheck",
		Short: "Evaluate recorded sales calls",
		Long: `telecheck transcribes a recorded sales call, evaluates it with a fixed
sequence of LLM checks (self introduction, approach, call length, customer
reaction, manner) and aggregates the verdicts into one JSON result.`,
		Version:      version,
		SilenceUsage: true,
	}

	debug := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debug {
			log.Logger.SetLevel(logrus.DebugLevel)
		}
	}

	cmd.AddCommand(newServeCommand(log))
	cmd.AddCommand(newEvaluateCommand(log))
	cmd.AddCommand(newPromptsCommand())
	return cmd
}
