package cmd

import (
	"github.com/maastricht-university/lesson-assessor/media"
	"github.com/maastricht-university/lesson-assessor/orchestrator"
	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <video_path> <teacher_id>",
	Short: "Only write the labeled transcript",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		p := orchestrator.NewPipeline(conf, orchestrator.Deps{
			Media:       media.New(conf.Media.FFmpeg),
			Transcriber: orchestrator.NewTranscriber(conf, log),
			Log:         log,
			Progress:    c.OutOrStdout(),
		})
		path, err := p.Transcribe(c.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		log.WithField("path", path).Info("transcription complete")
		return nil
	},
}
