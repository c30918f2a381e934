package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maastricht-university/lesson-assessor/orchestrator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	analyzeTeacher string
	analyzeOut     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript_path>",
	Short: "Assess an existing transcript and write report.md and analysis.yaml",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
		dir := analyzeOut
		if dir == "" {
			dir = filepath.Dir(args[0])
		}

		ctx := c.Context()
		llm, closeLLM, err := orchestrator.NewCompleter(ctx, conf, log)
		defer closeLLM()
		if err != nil {
			return err
		}
		p := orchestrator.NewPipeline(conf, orchestrator.Deps{LLM: llm, Log: log, Progress: c.OutOrStdout()})
		res, err := p.Analyze(ctx, string(text), analyzeTeacher)
		if err != nil {
			return err
		}
		paths := orchestrator.Layout(dir)
		if err := p.Write(paths, res); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"run_id": res.RunID, "report": paths.Report}).Info("analysis complete")
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTeacher, "teacher-id", "", "teacher id shown in the report")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "output directory (default: the transcript's directory)")
}
