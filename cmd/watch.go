package cmd

import (
	"context"

	"github.com/maastricht-university/lesson-assessor/media"
	"github.com/maastricht-university/lesson-assessor/orchestrator"
	"github.com/maastricht-university/lesson-assessor/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <inbox_dir>",
	Short: "Assess every video dropped into <inbox_dir>/<teacher_id>/",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		ctx := c.Context()
		llm, closeLLM, err := orchestrator.NewCompleter(ctx, conf, log)
		defer closeLLM()
		if err != nil {
			return err
		}
		p := orchestrator.NewPipeline(conf, orchestrator.Deps{
			Media:       media.New(conf.Media.FFmpeg),
			Transcriber: orchestrator.NewTranscriber(conf, log),
			LLM:         llm,
			Log:         log,
			Progress:    c.OutOrStdout(),
		})
		w := watch.New(args[0], conf.Watch.Debounce, conf.Watch.Extensions,
			func(ctx context.Context, video, teacherID string) error {
				_, err := p.Run(ctx, video, teacherID)
				return err
			}, log)
		return w.Run(ctx)
	},
}
