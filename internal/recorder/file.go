package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
)

// SummaryFile is the name of the run summary written by FileRecorder.
const SummaryFile = "optimization_summary.json"

// TimestampFormat is the layout of the timestamp line in result files.
const TimestampFormat = "20060102_150405"

var separator = strings.Repeat("=", 80)

// FileRecorder writes each iteration to a pair of files in Dir:
//
//	iteration_<k>_prompts.json  the role set used in iteration k
//	iteration_<k>_result.txt    score, judge feedback and the artifact
//
// and the run summary to optimization_summary.json.
type FileRecorder struct {
	Dir string
}

var _ Recorder = (*FileRecorder)(nil)

// NewFileRecorder creates a FileRecorder writing into dir.
func NewFileRecorder(dir string) *FileRecorder {
	return &FileRecorder{Dir: dir}
}

// PromptsPath returns the path of the prompts file for iteration k.
func (f *FileRecorder) PromptsPath(k int) string {
	return filepath.Join(f.Dir, fmt.Sprintf("iteration_%d_prompts.json", k))
}

// ResultPath returns the path of the result file for iteration k.
func (f *FileRecorder) ResultPath(k int) string {
	return filepath.Join(f.Dir, fmt.Sprintf("iteration_%d_result.txt", k))
}

// SummaryPath returns the path of the summary file.
func (f *FileRecorder) SummaryPath() string {
	return filepath.Join(f.Dir, SummaryFile)
}

// RecordIteration writes the prompts and result files of rec.
func (f *FileRecorder) RecordIteration(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	prompts, err := roles.MarshalIndent(rec.Prompts)
	if err != nil {
		return fmt.Errorf("failed to encode prompts for iteration %d: %w", rec.Iteration, err)
	}
	if err := os.WriteFile(f.PromptsPath(rec.Iteration), prompts, 0644); err != nil {
		return fmt.Errorf("failed to write prompts for iteration %d: %w", rec.Iteration, err)
	}

	if err := os.WriteFile(f.ResultPath(rec.Iteration), formatResult(rec), 0644); err != nil {
		return fmt.Errorf("failed to write result for iteration %d: %w", rec.Iteration, err)
	}

	log.Debug("recorded iteration", "iteration", rec.Iteration, "dir", f.Dir)
	return nil
}

// RecordSummary writes optimization_summary.json.
func (f *FileRecorder) RecordSummary(ctx context.Context, report summary.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(f.SummaryPath(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func formatResult(rec Record) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Iteration: %d\n", rec.Iteration)
	fmt.Fprintf(&b, "Timestamp: %s\n", rec.Timestamp.Format(TimestampFormat))
	fmt.Fprintf(&b, "Score: %.1f/100\n", rec.Score)
	fmt.Fprintf(&b, "\n%s\n", rec.Feedback)
	fmt.Fprintf(&b, "\n%s\n", separator)
	b.WriteString("AI Scientist Output:\n")
	fmt.Fprintf(&b, "%s\n\n", separator)
	b.WriteString(rec.Artifact)
	return b.Bytes()
}

// SaveBest writes the best role set to path. The file can be passed back
// as a starting point with roles.Load.
func SaveBest(path string, set roles.Set) error {
	if set.IsZero() {
		return fmt.Errorf("no best prompts to save")
	}
	if err := roles.Save(path, set); err != nil {
		return fmt.Errorf("failed to save best prompts: %w", err)
	}
	log.Info("saved best prompts", "path", path)
	return nil
}
