package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/maastricht-university/lesson-assessor/config"
	"github.com/maastricht-university/lesson-assessor/logging"
	"github.com/maastricht-university/lesson-assessor/media"
	"github.com/maastricht-university/lesson-assessor/orchestrator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	outputs    string

	conf *cfg.Root
	log  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lesson-assessor <video_path> <teacher_id>",
	Short: "Transcribe a recorded lesson and write a scored teaching assessment",
	Long: `lesson-assessor extracts the audio of a lesson video, transcribes it with speaker
diarization, labels teacher and student turns, and asks an LLM to assess the lesson.
The transcript, report.md and analysis.yaml are written to <outputs>/<teacher_id>/.`,
	Args:              cobra.ExactArgs(2),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
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
		res, err := p.Run(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"run_id": res.RunID,
			"dir":    p.OutputDir(args[0], args[1]),
			"total":  res.Scores.Total(),
		}).Info("assessment complete")
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default config/$CONFIG_ENV/config.yaml or ./config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&outputs, "outputs", "", "outputs root (default: outputs/ next to the input)")

	rootCmd.AddCommand(transcribeCmd, analyzeCmd, watchCmd)
}

func setup(c *cobra.Command, _ []string) error {
	var err error
	conf, err = cfg.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		conf.Pipeline.LogLvl = logLevel
	}
	if outputs != "" {
		conf.Paths.Outputs = outputs
	}
	log = logging.New(conf.Pipeline.LogLvl, conf.Pipeline.LogFormat)
	log.WithFields(logrus.Fields{
		"name":    conf.Pipeline.Name,
		"version": conf.Pipeline.Version,
	}).Debug("configuration loaded")
	return nil
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
