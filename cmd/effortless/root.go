package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "effortless",
	Short: "Deploy declared handlers to AWS and keep them converged",
	Long: `effortless reconciles a declared handler set against live AWS
resources: it creates what is missing, updates only what drifted, and
sweeps what is no longer declared. Re-running a deploy with nothing
changed performs no writes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Pipe-friendly: human output on stderr, stdout stays clean.
	pterm.SetDefaultOutput(os.Stderr)
	pterm.Success.Writer = os.Stderr
	pterm.Info.Writer = os.Stderr
	pterm.Error.Writer = os.Stderr
	pterm.Warning.Writer = os.Stderr

	// .env is optional; real credentials usually come from the ambient
	// AWS config chain.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringP("project", "p", "", "project name")
	rootCmd.PersistentFlags().StringP("stage", "s", "dev", "deployment stage")
	rootCmd.PersistentFlags().StringP("region", "r", envOr("AWS_REGION", "us-east-1"), "AWS region")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
