package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipseek/clipseek/internal/matcher"
	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/service/search"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find [VIDEO_PATH] [QUERY]",
	Short: "Find segments matching a query in an analyzed video",
	Long: `Search the cached speech and visual analysis of a video for a free-text
query and print ranked time ranges.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoPath := args[0]
		query := args[1]

		searchType, _ := cmd.Flags().GetString("type")
		maxResults, _ := cmd.Flags().GetInt("max-results")
		minDuration, _ := cmd.Flags().GetFloat64("min-duration")
		expandBy, _ := cmd.Flags().GetFloat64("expand")
		caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")
		format, _ := cmd.Flags().GetString("format")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		segments, err := search.NewService(store).Find(ctx, videoPath, query, matcher.Options{
			SearchType:    searchType,
			MaxResults:    maxResults,
			MinDuration:   minDuration,
			ExpandBy:      expandBy,
			CaseSensitive: caseSensitive,
		})
		if err != nil {
			return err
		}

		if format == "json" {
			return printSegmentsJSON(segments)
		}
		printSegmentsText(query, segments)
		return nil
	},
}

func printSegmentsJSON(segments []model.FoundSegment) error {
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printSegmentsText(query string, segments []model.FoundSegment) {
	if len(segments) == 0 {
		fmt.Printf("No segments matched %q\n", query)
		return
	}

	fmt.Printf("Found %d segment(s) for %q:\n\n", len(segments), query)
	for i, seg := range segments {
		fmt.Printf("%d. %s  %s – %s (%.1fs, confidence %.2f)\n",
			i+1, seg.MatchType, formatTimestamp(seg.Start), formatTimestamp(seg.End), seg.Duration, seg.Confidence)
		fmt.Printf("   %s\n", seg.MatchedContent)
		if seg.Context != "" {
			fmt.Printf("   context: %s\n", seg.Context)
		}
	}
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	return fmt.Sprintf("%02d:%02d:%04.1f", h, m, seconds-float64(h*3600+m*60))
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringP("type", "t", "both", "Search type: speech, visual, or both")
	findCmd.Flags().Int("max-results", 10, "Maximum number of segments to return")
	findCmd.Flags().Float64("min-duration", 1, "Minimum segment duration in seconds")
	findCmd.Flags().Float64("expand", 0.5, "Seconds added on each side of a match")
	findCmd.Flags().Bool("case-sensitive", false, "Match case exactly")
	findCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}
