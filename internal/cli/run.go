package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ddudnik/clipsight/internal/config"
	"github.com/ddudnik/clipsight/internal/pipeline"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <input.mp4>",
		Short: "Analyze one local video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			videoID, _ := cmd.Flags().GetString("video-id")
			force, _ := cmd.Flags().GetBool("force")

			absIn, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := videoContext(app)
			defer cancel()
			return pipeline.AnalyzeVideo(ctx, app, videoID, absIn, force)
		},
	}
	cmd.Flags().String("video-id", "", "Stable video identifier (defaults to a hash of the input path)")
	cmd.Flags().Bool("force", false, "Re-analyze even if a generation exists")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <jobs.yaml>",
		Short: "Analyze a job list over the worker pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			jobs, err := pipeline.LoadJobs(args[0])
			if err != nil {
				return err
			}

			// No overall deadline here: each video carries its own.
			summary, err := pipeline.RunBatch(context.Background(), app, jobs, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "batch: %d succeeded, %d skipped, %d failed (of %d)\n",
				summary.Succeeded, summary.Skipped, summary.Failed, summary.Total())
			if summary.Failed > 0 {
				return fmt.Errorf("%d videos failed", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Re-analyze videos that already carry a generation")
	return cmd
}

func learnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn <labels.yaml>",
		Short: "Fold labeled, analyzed videos into the pattern library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return pipeline.RunLearn(context.Background(), app, args[0])
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	app, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	// Secrets and service endpoints come from the environment, never YAML.
	if v := os.Getenv("TRANSCRIBE_BASE_URL"); v != "" {
		app.Transcription.BaseURL = v
	}
	app.Transcription.APIKey = os.Getenv("TRANSCRIBE_API_KEY")
	if v := os.Getenv("VISION_BASE_URL"); v != "" {
		app.Vision.BaseURL = v
	}
	app.Vision.APIKey = os.Getenv("VISION_API_KEY")

	if err := pipeline.Validate(app); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return app, nil
}

func videoContext(app *config.Config) (context.Context, context.CancelFunc) {
	timeout := time.Duration(app.VideoTimeoutS * float64(time.Second))
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return context.WithTimeout(context.Background(), timeout)
}
