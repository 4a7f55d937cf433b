package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipseek/clipseek/internal/service/speech"
	"github.com/clipseek/clipseek/internal/service/visual"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run speech or visual analysis on a video",
	Long:  `Analyze a video file and cache the results for later segment searches.`,
}

// analyzeSpeechCmd transcribes a video with Whisper
var analyzeSpeechCmd = &cobra.Command{
	Use:   "speech [VIDEO_PATH]",
	Short: "Transcribe a video's audio with Whisper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoPath := args[0]
		modelSize, _ := cmd.Flags().GetString("model")
		language, _ := cmd.Flags().GetString("language")
		force, _ := cmd.Flags().GetBool("force")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		store, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := newSpeechAnalyzer(store).Analyze(ctx, videoPath, speech.AnalyzeOptions{
			ModelSize:      modelSize,
			Language:       language,
			ForceReanalyze: force,
		})
		if err != nil {
			return fmt.Errorf("speech analysis failed: %w", err)
		}

		fmt.Printf("Speech analysis complete\n")
		fmt.Printf("Analysis ID: %s\n", result.AnalysisID)
		fmt.Printf("Language: %s\n", result.Language)
		fmt.Printf("Duration: %.1fs\n", result.Duration)
		fmt.Printf("Segments: %d, words: %d\n", len(result.Segments), len(result.Words))

		return nil
	},
}

// analyzeVisualCmd samples frames and describes them with the vision engine
var analyzeVisualCmd = &cobra.Command{
	Use:   "visual [VIDEO_PATH]",
	Short: "Describe sampled video frames with the vision engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoPath := args[0]
		fps, _ := cmd.Flags().GetFloat64("fps")
		startTime, _ := cmd.Flags().GetFloat64("start")
		endTime, _ := cmd.Flags().GetFloat64("end")
		prompt, _ := cmd.Flags().GetString("prompt")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		force, _ := cmd.Flags().GetBool("force")

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
		defer cancel()

		store, cfg, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := newVisualAnalyzer(store, cfg).Analyze(ctx, videoPath, visual.AnalyzeOptions{
			FPS:            fps,
			StartTime:      startTime,
			EndTime:        endTime,
			Prompt:         prompt,
			BatchSize:      batchSize,
			ForceReanalyze: force,
		})
		if err != nil {
			return fmt.Errorf("visual analysis failed: %w", err)
		}

		fmt.Printf("Visual analysis complete\n")
		fmt.Printf("Analysis ID: %s\n", result.AnalysisID)
		fmt.Printf("Frames analyzed: %d at %.2f fps\n", result.FramesAnalyzed, result.FPS)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeSpeechCmd)
	analyzeCmd.AddCommand(analyzeVisualCmd)

	analyzeSpeechCmd.Flags().StringP("model", "m", "base", "Whisper model (tiny, base, small, medium, large)")
	analyzeSpeechCmd.Flags().StringP("language", "l", "auto", "Language code for transcription (e.g. 'en', 'ja', 'auto')")
	analyzeSpeechCmd.Flags().BoolP("force", "f", false, "Re-analyze even when a cached result exists")

	analyzeVisualCmd.Flags().Float64("fps", 1, "Frame sampling rate")
	analyzeVisualCmd.Flags().Float64("start", 0, "Analysis start time in seconds")
	analyzeVisualCmd.Flags().Float64("end", 0, "Analysis end time in seconds (0 = full duration)")
	analyzeVisualCmd.Flags().String("prompt", "", "Custom instruction for the vision engine")
	analyzeVisualCmd.Flags().Int("batch-size", 5, "Concurrent vision requests per batch")
	analyzeVisualCmd.Flags().BoolP("force", "f", false, "Re-analyze even when a cached result exists")
}
