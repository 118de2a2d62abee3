package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/effortless-run/effortless/internal/deploy"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete every resource deployed for a project and stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		stage, _ := cmd.Flags().GetString("stage")
		region, _ := cmd.Flags().GetString("region")
		yes, _ := cmd.Flags().GetBool("yes")

		if project == "" {
			return fmt.Errorf("--project is required")
		}
		if !yes {
			return fmt.Errorf("destroy deletes all resources for %s/%s; re-run with --yes to confirm", project, stage)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		clients, accountID, err := deploy.NewClients(ctx, region)
		if err != nil {
			return err
		}
		pterm.Warning.Printf("destroying %s/%s in %s (account %s)\n", project, stage, region, accountID)

		engine := deploy.NewEngine(clients, region, ptermReporter{})
		if err := engine.Destroy(ctx, project, stage); err != nil {
			return err
		}
		pterm.Success.Println("destroy complete")
		return nil
	},
}

func init() {
	destroyCmd.Flags().Bool("yes", false, "confirm deletion")
	rootCmd.AddCommand(destroyCmd)
}
