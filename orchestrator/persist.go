package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maastricht-university/lesson-assessor/analysis"
	cfg "github.com/maastricht-university/lesson-assessor/config"
	"gopkg.in/yaml.v3"
)

const (
	TranscriptFile = "transcript.txt"
	ReportFile     = "report.md"
	BundleFile     = "analysis.yaml"
)

var ErrInvalidTeacherID = errors.New("teacher id must be a single path element")

// Paths is the on-disk layout of one teacher's outputs.
type Paths struct {
	Dir        string
	Transcript string
	Report     string
	Bundle     string
}

func Layout(dir string) Paths {
	return Paths{
		Dir:        dir,
		Transcript: filepath.Join(dir, TranscriptFile),
		Report:     filepath.Join(dir, ReportFile),
		Bundle:     filepath.Join(dir, BundleFile),
	}
}

// PersistBundle is the machine-readable companion of report.md.
type PersistBundle struct {
	RunID        string                     `yaml:"run_id"`
	TeacherID    string                     `yaml:"teacher_id,omitempty"`
	GeneratedAt  time.Time                  `yaml:"generated_at"`
	Turns        int                        `yaml:"turns"`
	Total        int                        `yaml:"total"`
	Scores       analysis.ScoreSet          `yaml:"scores"`
	Metrics      *analysis.Metrics          `yaml:"metrics"`
	Strengths    []string                   `yaml:"strengths"`
	Improvements []analysis.Improvement     `yaml:"improvements"`
	Notes        analysis.Notes             `yaml:"notes,omitempty"`
	Chunks       []analysis.ChunkAssessment `yaml:"chunks"`
	Config       *cfg.Root                  `yaml:"config,omitempty"`
}

func checkTeacherID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidTeacherID, id)
	}
	return nil
}

func mkTeacherDir(outputsRoot, teacherID string) (Paths, error) {
	dir := filepath.Join(outputsRoot, teacherID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, err
	}
	return Layout(dir), nil
}

func writeYAML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// persist writes report.md and analysis.yaml into paths.Dir.
func persist(paths Paths, res *Result, conf *cfg.Root) error {
	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(paths.Report, []byte(res.Report), 0o644); err != nil {
		return err
	}
	bundle := PersistBundle{
		RunID:        res.RunID,
		TeacherID:    res.TeacherID,
		GeneratedAt:  res.Generated,
		Turns:        len(res.Conversation),
		Total:        res.Scores.Total(),
		Scores:       res.Scores,
		Metrics:      res.Metrics,
		Strengths:    res.Merged.Strengths,
		Improvements: res.Merged.Improvements,
		Notes:        res.Notes,
		Chunks:       res.Chunks,
		Config:       conf,
	}
	return writeYAML(paths.Bundle, bundle)
}
