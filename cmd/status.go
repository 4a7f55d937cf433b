package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [VIDEO_PATH]",
	Short: "Show analysis status records for a video",
	Long:  `List all analysis runs for a video, most recently started first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoPath := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		statuses, err := store.GetAnalysisStatusByVideo(ctx, videoPath)
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			fmt.Printf("No analysis runs recorded for %s\n", videoPath)
			return nil
		}

		for _, st := range statuses {
			started := time.UnixMilli(st.StartedAt).Format(time.RFC3339)
			fmt.Printf("%s  %-7s %-10s %5.1f%%  started %s", st.AnalysisID, st.Type, st.Status, st.Progress, started)
			if st.CompletedAt != nil {
				fmt.Printf("  completed %s", time.UnixMilli(*st.CompletedAt).Format(time.RFC3339))
			}
			fmt.Println()
			if st.Error != nil {
				fmt.Printf("    error: %s\n", *st.Error)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
