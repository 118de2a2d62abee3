package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/effortless-run/effortless/internal/deploy"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Converge all declared handlers",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		stage, _ := cmd.Flags().GetString("stage")
		region, _ := cmd.Flags().GetString("region")
		manifestPath, _ := cmd.Flags().GetString("manifest")
		artifactPath, _ := cmd.Flags().GetString("artifact")
		layerPath, _ := cmd.Flags().GetString("layer")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		manifest, err := LoadManifest(manifestPath, project, stage)
		if err != nil {
			return err
		}

		artifact, err := deploy.LoadArtifact(artifactPath)
		if err != nil {
			return err
		}
		var layerArtifact *deploy.Artifact
		if layerPath != "" {
			if layerArtifact, err = deploy.LoadArtifact(layerPath); err != nil {
				return err
			}
		}

		clients, accountID, err := deploy.NewClients(ctx, region)
		if err != nil {
			return err
		}

		pterm.Info.Printf("deploying %s/%s to %s (account %s)\n",
			manifest.Project, manifest.Stage, region, accountID)

		engine := deploy.NewEngine(clients, region, ptermReporter{})
		engine.SetConcurrency(concurrency)

		result, err := engine.Deploy(ctx, deploy.DeployRequest{
			Project:       manifest.Project,
			Stage:         manifest.Stage,
			Region:        region,
			AccountID:     accountID,
			Handlers:      manifest.Handlers,
			Artifact:      artifact,
			LayerArtifact: layerArtifact,
		})
		if result != nil && result.APIURL != "" {
			pterm.Success.Printf("API: %s\n", result.APIURL)
		}
		if err != nil {
			return err
		}
		pterm.Success.Printf("%d handler(s) converged\n", len(result.Handlers))
		return nil
	},
}

func init() {
	deployCmd.Flags().StringP("manifest", "m", "effortless.yaml", "handler manifest file")
	deployCmd.Flags().StringP("artifact", "a", "dist/handlers.zip", "code artifact zip")
	deployCmd.Flags().String("layer", "", "dependency layer zip (optional)")
	deployCmd.Flags().Int("concurrency", deploy.DefaultConcurrency, "max concurrent handler pipelines")
	rootCmd.AddCommand(deployCmd)
}
