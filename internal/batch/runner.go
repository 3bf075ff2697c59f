package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/circular29/internal/convert"
)

// Options tune a Runner.
type Options struct {
	Workers     int
	Reports     bool
	MaxFileSize int64
	// Now is the clock used for report timestamps; nil means time.Now.
	Now func() time.Time
}

// Runner converts workbooks with a shared Converter. It is safe for
// concurrent use.
type Runner struct {
	conv   *convert.Converter
	logger *zap.Logger
	opts   Options
}

// NewRunner creates a Runner. Workers below one are raised to one.
func NewRunner(conv *convert.Converter, logger *zap.Logger, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{conv: conv, logger: logger, opts: opts}
}

func (r *Runner) now() time.Time {
	return r.opts.Now()
}

// ListWorkbooks returns the .xlsx and .xls files directly inside dir, sorted
// by name. Office lock files ("~$...") are skipped.
func ListWorkbooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") || !convert.IsExcelName(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Summary aggregates a batch run.
type Summary struct {
	InputDirectory  string    `json:"input_directory"`
	OutputDirectory string    `json:"output_directory"`
	Results         []Result  `json:"results"`
	Successful      int       `json:"successful"`
	Failed          int       `json:"failed"`
	SuccessRate     float64   `json:"success_rate"`
	SummaryPath     string    `json:"summary_path,omitempty"`
	Started         time.Time `json:"started"`
	Finished        time.Time `json:"finished"`
}

// FailedFiles lists the names of failed conversions in result order.
func (s *Summary) FailedFiles() []string {
	var out []string
	for _, res := range s.Results {
		if !res.Success {
			out = append(out, res.File)
		}
	}
	return out
}

// Run converts every workbook in inputDir into outputDir (inputDir when
// empty) as "{base}_Circular29.xlsx". Invalid workbooks are recorded as
// failed. Cancelling ctx stops new conversions from starting; the partial
// summary is returned together with the context error.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	if outputDir == "" {
		outputDir = inputDir
	}
	files, err := ListWorkbooks(inputDir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		InputDirectory:  inputDir,
		OutputDirectory: outputDir,
		Started:         r.now(),
	}
	r.logger.Info("starting batch conversion",
		zap.String("input_directory", inputDir),
		zap.String("output_directory", outputDir),
		zap.Int("files", len(files)),
		zap.Int("workers", r.opts.Workers))

	reportDir := ""
	if r.opts.Reports {
		reportDir = filepath.Join(outputDir, ReportsDirName)
		if err := os.MkdirAll(reportDir, 0o755); err != nil {
			return nil, fmt.Errorf("create reports directory: %w", err)
		}
	}

	var mu sync.Mutex
	results := make(map[string]Result, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)
	for i, file := range files {
		if egCtx.Err() != nil {
			break
		}
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		job := Job{
			Input:        file,
			OutputDir:    outputDir,
			OutputName:   base + OutputSuffix,
			RequireValid: true,
			ReportDir:    reportDir,
		}
		r.logger.Debug("scheduling workbook",
			zap.Int("index", i+1),
			zap.Int("total", len(files)),
			zap.String("file", job.Input))

		eg.Go(func() error {
			res := r.Do(egCtx, job)
			mu.Lock()
			results[job.Input] = res
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	for _, file := range files {
		if res, ok := results[file]; ok {
			summary.Results = append(summary.Results, res)
			if res.Success {
				summary.Successful++
			} else {
				summary.Failed++
			}
		}
	}
	if n := len(summary.Results); n > 0 {
		summary.SuccessRate = float64(summary.Successful) / float64(n) * 100
	}
	summary.Finished = r.now()

	if reportDir != "" {
		path := filepath.Join(reportDir, SummaryFileName)
		if err := writeText(path, SummaryText(summary)); err != nil {
			r.logger.Warn("could not write batch summary", zap.String("path", path), zap.Error(err))
		} else {
			summary.SummaryPath = path
		}
	}

	r.logger.Info("batch conversion finished",
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Float64("success_rate", summary.SuccessRate))
	return summary, ctx.Err()
}

// SummaryText renders the batch summary report.
func SummaryText(s *Summary) string {
	var b strings.Builder
	b.WriteString("BATCH CONVERSION SUMMARY\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "INPUT DIRECTORY: %s\n", s.InputDirectory)
	fmt.Fprintf(&b, "OUTPUT DIRECTORY: %s\n", s.OutputDirectory)
	fmt.Fprintf(&b, "CONVERSION DATE: %s\n\n", s.Finished.Format("2006-01-02 15:04:05"))

	b.WriteString("RESULTS:\n")
	fmt.Fprintf(&b, "   - Total files processed: %d\n", len(s.Results))
	fmt.Fprintf(&b, "   - Successful conversions: %d\n", s.Successful)
	fmt.Fprintf(&b, "   - Failed conversions: %d\n", s.Failed)
	fmt.Fprintf(&b, "   - Success rate: %.1f%%\n\n", s.SuccessRate)

	b.WriteString("DETAILED RESULTS:\n")
	for _, res := range s.Results {
		status := "SUCCESS"
		if !res.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "   - %s: %s\n", res.File, status)
	}

	if failed := s.FailedFiles(); len(failed) > 0 {
		b.WriteString("\nFAILED FILES:\n")
		for _, name := range failed {
			fmt.Fprintf(&b, "   - %s\n", name)
		}
	}
	return b.String()
}
