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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the live resources deployed for a project and stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		stage, _ := cmd.Flags().GetString("stage")
		region, _ := cmd.Flags().GetString("region")

		if project == "" {
			return fmt.Errorf("--project is required")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		clients, _, err := deploy.NewClients(ctx, region)
		if err != nil {
			return err
		}

		engine := deploy.NewEngine(clients, region, deploy.NopReporter{})
		inv, err := engine.Status(ctx, project, stage)
		if err != nil {
			return err
		}

		records := inv.Records()
		if len(records) == 0 {
			pterm.Info.Printf("nothing deployed for %s/%s\n", project, stage)
			return nil
		}

		data := pterm.TableData{{"HANDLER", "TYPE", "ARN"}}
		for _, rec := range records {
			handler := rec.Handler()
			if handler == "" {
				handler = "(shared)"
			}
			data = append(data, []string{handler, rec.Type, rec.ARN})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
