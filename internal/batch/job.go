// Package batch converts Form 3 workbooks on disk, one at a time or a whole
// directory in parallel.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/convert"
	cerrors "github.com/a3tai/circular29/internal/errors"
	"github.com/a3tai/circular29/internal/layout"
	"github.com/a3tai/circular29/internal/workbook"
)

const (
	// OutputSuffix is appended to the input base name in batch mode.
	OutputSuffix = "_Circular29.xlsx"
	// ReportSuffix is appended to the input base name for report files.
	ReportSuffix = "_conversion_report.txt"
	// ReportsDirName holds per-file reports and the batch summary.
	ReportsDirName = "conversion_reports"
	// SummaryFileName is the batch summary written into ReportsDirName.
	SummaryFileName = "batch_conversion_summary.txt"
)

// Job describes one workbook conversion.
type Job struct {
	Input     string
	OutputDir string
	// OutputName overrides the generated "Circular 29 - ..." file name.
	OutputName string
	// RequireValid skips conversion of workbooks that fail validation.
	RequireValid bool
	// ReportDir, when set, receives a plain-text conversion report.
	ReportDir string
}

// Result is the outcome of one Job.
type Result struct {
	File       string              `json:"file"`
	Input      string              `json:"input"`
	Output     string              `json:"output,omitempty"`
	ReportPath string              `json:"report_path,omitempty"`
	Success    bool                `json:"success"`
	Units      int                 `json:"units"`
	Validation *convert.Validation `json:"validation,omitempty"`
	Summary    *convert.Summary    `json:"summary,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
	Error      string              `json:"error,omitempty"`
	Duration   time.Duration       `json:"duration"`
	Err        error               `json:"-"`
}

func (res *Result) fail(err error) Result {
	res.Success = false
	res.Err = err
	res.Error = err.Error()
	return *res
}

// Do runs a single job: open, optionally validate, convert with recovery,
// render and write. Failures are reported in the Result, never panicked.
func (r *Runner) Do(ctx context.Context, job Job) Result {
	started := r.now()
	res := r.do(ctx, job)
	res.Duration = r.now().Sub(started)
	return res
}

func (r *Runner) do(ctx context.Context, job Job) Result {
	res := Result{File: filepath.Base(job.Input), Input: job.Input}
	log := r.logger.With(zap.String("file", res.File))

	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}

	if r.opts.MaxFileSize > 0 {
		info, err := os.Stat(job.Input)
		if err != nil {
			return res.fail(cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).WithFile(job.Input))
		}
		if info.Size() > r.opts.MaxFileSize {
			return res.fail(cerrors.Newf(cerrors.ErrorTypeInvalidInput,
				"file too large: %d bytes (max: %d bytes)", info.Size(), r.opts.MaxFileSize).WithFile(job.Input))
		}
	}

	book, err := workbook.Open(job.Input)
	if err != nil {
		log.Error("could not open workbook", zap.Error(err))
		return res.fail(err)
	}
	defer book.Close()

	v := r.conv.Validate(book, job.Input)
	res.Validation = &v
	if job.RequireValid && !v.OverallValid {
		log.Warn("file validation failed", zap.Strings("failed_checks", v.Failed()))
		return res.fail(cerrors.New(cerrors.ErrorTypeInvalidInput, "file validation failed").
			WithContext(strings.Join(v.Failed(), ", ")).WithFile(job.Input))
	}

	state, err := r.conv.Convert(book, res.File)
	if err != nil {
		log.Error("conversion failed", zap.Error(err))
		return res.fail(err)
	}
	summary := convert.Summarize(state)
	res.Summary = &summary
	res.Units = summary.TotalUnits
	_, res.Warnings = state.Issues.Messages()

	name := job.OutputName
	if name == "" {
		name = layout.OutputFilename(state.Meta)
	}
	outDir := job.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(job.Input)
	}
	res.Output = filepath.Join(outDir, name)

	if err := workbook.Write(r.conv.Render(state), res.Output); err != nil {
		log.Error("could not write output", zap.String("output", res.Output), zap.Error(err))
		return res.fail(err)
	}
	res.Success = true
	log.Info("converted workbook", zap.String("output", res.Output), zap.Int("units", res.Units))

	if job.ReportDir != "" {
		base := strings.TrimSuffix(res.File, filepath.Ext(res.File))
		path := filepath.Join(job.ReportDir, base+ReportSuffix)
		report := convert.Report(state, job.Input, res.Output, r.now())
		if err := writeText(path, report); err != nil {
			log.Warn("could not write conversion report", zap.String("report", path), zap.Error(err))
		} else {
			res.ReportPath = path
		}
	}
	return res
}

func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
