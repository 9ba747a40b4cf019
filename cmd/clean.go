package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/survey-xml-converter/pkg/utils"
)

var cleanOlderThan time.Duration

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated and uploaded files past the retention period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxAge := cleanOlderThan
		if maxAge <= 0 {
			maxAge = appConfig.Server.DownloadRetention
		}

		total := 0
		for _, dir := range []string{appConfig.DownloadDir, appConfig.UploadDir} {
			removed, err := utils.CleanOldFiles(dir, maxAge)
			if err != nil {
				return err
			}
			appLog.Debug("Removed %d file(s) from %s", removed, dir)
			total += removed
		}

		fmt.Printf("Removed %d file(s) older than %s\n", total, maxAge)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().DurationVar(&cleanOlderThan, "older-than", 0, "Maximum file age (default is the configured retention)")
}
