package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/clipseek/clipseek/internal/config"
	"github.com/clipseek/clipseek/internal/matcher"
	"github.com/clipseek/clipseek/internal/repository"
	"github.com/clipseek/clipseek/internal/service/search"
	"github.com/clipseek/clipseek/internal/service/speech"
	"github.com/clipseek/clipseek/internal/service/visual"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clipseek tools over MCP on stdio",
	Long: `Expose analysis and segment search as Model Context Protocol tools so an
AI assistant can locate moments in videos and splice them into a timeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, cfg, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		s := server.NewMCPServer("clipseek", "1.0.0", server.WithToolCapabilities(false))
		registerTools(s, store, cfg)

		return server.ServeStdio(s)
	},
}

func registerTools(s *server.MCPServer, store *repository.Store, cfg *config.Config) {
	s.AddTool(mcp.NewTool("find_segments",
		mcp.WithDescription("Find time ranges in an analyzed video matching a free-text query"),
		mcp.WithString("video_path", mcp.Required(), mcp.Description("Path of the analyzed video file")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for in speech or visual content")),
		mcp.WithString("search_type", mcp.Description("speech, visual, or both (default both)")),
		mcp.WithNumber("max_results", mcp.Description("Maximum segments to return (default 10)")),
		mcp.WithNumber("min_duration", mcp.Description("Minimum segment duration in seconds (default 1)")),
		mcp.WithNumber("expand_by", mcp.Description("Seconds added on each side of a match (default 0.5)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		videoPath, err := request.RequireString("video_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		segments, err := search.NewService(store).Find(ctx, videoPath, query, matcher.Options{
			SearchType:  request.GetString("search_type", matcher.SearchBoth),
			MaxResults:  request.GetInt("max_results", 10),
			MinDuration: request.GetFloat("min_duration", 1),
			ExpandBy:    request.GetFloat("expand_by", 0.5),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(segments)
	})

	s.AddTool(mcp.NewTool("analyze_speech",
		mcp.WithDescription("Transcribe a video's audio with Whisper and cache the transcript"),
		mcp.WithString("video_path", mcp.Required(), mcp.Description("Path of the video file")),
		mcp.WithString("model_size", mcp.Description("Whisper model: tiny, base, small, medium, large")),
		mcp.WithString("language", mcp.Description("Language code or 'auto'")),
		mcp.WithBoolean("force_reanalyze", mcp.Description("Re-run even when a cached transcript exists")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		videoPath, err := request.RequireString("video_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := newSpeechAnalyzer(store).Analyze(ctx, videoPath, speech.AnalyzeOptions{
			ModelSize:      request.GetString("model_size", cfg.Whisper.Model),
			Language:       request.GetString("language", "auto"),
			ForceReanalyze: request.GetBool("force_reanalyze", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Speech analysis %s complete: %d segments, %d words, language %s",
			result.AnalysisID, len(result.Segments), len(result.Words), result.Language)), nil
	})

	s.AddTool(mcp.NewTool("analyze_visual",
		mcp.WithDescription("Describe sampled video frames with the vision engine and cache the result"),
		mcp.WithString("video_path", mcp.Required(), mcp.Description("Path of the video file")),
		mcp.WithNumber("fps", mcp.Description("Frame sampling rate (default 1)")),
		mcp.WithNumber("start_time", mcp.Description("Analysis start in seconds")),
		mcp.WithNumber("end_time", mcp.Description("Analysis end in seconds (default: full duration)")),
		mcp.WithBoolean("force_reanalyze", mcp.Description("Re-run even when a cached result exists")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		videoPath, err := request.RequireString("video_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := newVisualAnalyzer(store, cfg).Analyze(ctx, videoPath, visual.AnalyzeOptions{
			FPS:            request.GetFloat("fps", 1),
			StartTime:      request.GetFloat("start_time", 0),
			EndTime:        request.GetFloat("end_time", 0),
			ForceReanalyze: request.GetBool("force_reanalyze", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Visual analysis %s complete: %d frames at %.2f fps",
			result.AnalysisID, result.FramesAnalyzed, result.FPS)), nil
	})

	s.AddTool(mcp.NewTool("get_analysis_status",
		mcp.WithDescription("List analysis runs for a video, most recently started first"),
		mcp.WithString("video_path", mcp.Required(), mcp.Description("Path of the video file")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		videoPath, err := request.RequireString("video_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		statuses, err := store.GetAnalysisStatusByVideo(ctx, videoPath)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(statuses)
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
