package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nixdorfer/dialogue/internal/config"
	"github.com/nixdorfer/dialogue/internal/update"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer release",
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	appConfig, err := config.Load("")
	if err != nil {
		return err
	}

	check, err := update.NewClient(appConfig.UpdateManifestURL).Check(cmd.Context(), Version)
	if err != nil {
		return err
	}

	if !check.HasUpdate {
		fmt.Printf("dialogue %s is up to date\n", check.CurrentVersion)
		return nil
	}

	fmt.Printf("dialogue %s is available (running %s)\n", check.LatestVersion, check.CurrentVersion)
	for _, note := range check.Notes {
		fmt.Printf("  - %s\n", note)
	}
	if check.DownloadURL != "" {
		fmt.Printf("download: %s\n", check.DownloadURL)
	}
	return nil
}
