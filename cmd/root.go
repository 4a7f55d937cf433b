package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipseek",
	Short: "Find moments in videos by speech or visual content",
	Long: `clipseek analyzes videos with Whisper (speech) and a vision model
(per-frame descriptions), caches the results in PostgreSQL, and resolves
free-text queries into ranked time ranges ready for timeline insertion.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Local .env may carry DATABASE_URL or the vision API key; missing file is fine
	cobra.OnInitialize(func() {
		_ = godotenv.Load()
	})
}
