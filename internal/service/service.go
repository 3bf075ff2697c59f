// Package service exposes workbook conversion to the tool server with
// path confinement and size limits.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/batch"
	"github.com/a3tai/circular29/internal/convert"
	"github.com/a3tai/circular29/internal/layout"
	"github.com/a3tai/circular29/internal/rules"
	"github.com/a3tai/circular29/internal/security"
	"github.com/a3tai/circular29/internal/workbook"
)

// DefaultPreview is the number of records per section returned by Inspect.
const DefaultPreview = 5

// Options configure a Service.
type Options struct {
	InputDirectory  string
	OutputDirectory string // defaults to InputDirectory
	MaxFileSize     int64
	Workers         int
	Reports         bool
}

// Service handles workbook operations by orchestrating the converter, the
// batch runner and path validation
type Service struct {
	opts          Options
	conv          *convert.Converter
	runner        *batch.Runner
	pathValidator *security.PathValidator
	logger        *zap.Logger
}

// NewService creates a new Service. Paths are confined to the input and
// output directories.
func NewService(conv *convert.Converter, logger *zap.Logger, opts Options) (*Service, error) {
	if conv == nil {
		return nil, fmt.Errorf("converter cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OutputDirectory == "" {
		opts.OutputDirectory = opts.InputDirectory
	}

	pathValidator, err := security.NewPathValidator(opts.InputDirectory, opts.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		opts: opts,
		conv: conv,
		runner: batch.NewRunner(conv, logger.Named("batch"), batch.Options{
			Workers:     opts.Workers,
			Reports:     opts.Reports,
			MaxFileSize: opts.MaxFileSize,
		}),
		pathValidator: pathValidator,
		logger:        logger,
	}, nil
}

// GetMaxFileSize returns the configured size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.opts.MaxFileSize
}

func (s *Service) resolveFile(path string) (string, error) {
	abs, _, err := s.pathValidator.ResolveFile(path, s.opts.MaxFileSize)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return abs, nil
}

func (s *Service) resolveDirectory(dir, fallback string) (string, error) {
	if dir == "" {
		dir = fallback
	}
	abs, err := s.pathValidator.ResolveDirectory(dir)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return abs, nil
}

// Convert converts one workbook and writes the Circular 29 output
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	input, err := s.resolveFile(req.Path)
	if err != nil {
		return nil, err
	}
	outDir, err := s.resolveDirectory(req.OutputDir, s.opts.OutputDirectory)
	if err != nil {
		return nil, err
	}

	res := s.runner.Do(ctx, batch.Job{Input: input, OutputDir: outDir})
	if !res.Success {
		return nil, fmt.Errorf("conversion failed: %w", res.Err)
	}

	result := &ConvertResult{Path: input, Output: res.Output, Warnings: res.Warnings}
	if res.Summary != nil {
		result.Summary = *res.Summary
	}
	return result, nil
}

// Inspect extracts a workbook without writing output
func (s *Service) Inspect(ctx context.Context, req InspectRequest) (*InspectResult, error) {
	input, err := s.resolveFile(req.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := workbook.Open(input)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	result := &InspectResult{
		Path:       input,
		Validation: s.conv.Validate(book, input),
	}

	state, err := s.conv.Convert(book, filepath.Base(input))
	if err != nil {
		return nil, err
	}
	result.Summary = convert.Summarize(state)
	result.OutputName = layout.OutputFilename(state.Meta)
	result.Errors, result.Warnings = state.Issues.Messages()

	limit := req.Preview
	if limit <= 0 {
		limit = DefaultPreview
	}
	for _, label := range rules.ExtractionOrder {
		section := state.Section(label)
		preview := section.Records
		if len(preview) > limit {
			preview = preview[:limit]
		}
		result.Sections = append(result.Sections, SectionPreview{
			Section:        label,
			Units:          len(section.Records),
			BuildingColumn: section.BuildingColumn,
			Records:        preview,
		})
	}
	return result, nil
}

// Validate checks whether a file looks like a Form 3 workbook. An unreadable
// workbook yields an invalid result, not an error.
func (s *Service) Validate(req ValidateRequest) (*ValidateResult, error) {
	input, err := s.resolveFile(req.Path)
	if err != nil {
		return nil, err
	}

	result := &ValidateResult{Path: input}
	if !convert.IsExcelName(input) {
		result.Message = "not an Excel workbook (.xlsx or .xls)"
		return result, nil
	}

	book, err := workbook.Open(input)
	if err != nil {
		result.Validation = s.conv.Validate(nil, input)
		result.Message = err.Error()
		return result, nil
	}
	defer book.Close()

	result.Validation = s.conv.Validate(book, input)
	result.Valid = result.Validation.OverallValid
	if !result.Valid {
		result.Message = "failed checks: " + strings.Join(result.Validation.Failed(), ", ")
	}
	return result, nil
}

// Batch converts every workbook in a directory
func (s *Service) Batch(ctx context.Context, req BatchRequest) (*batch.Summary, error) {
	dir, err := s.resolveDirectory(req.Directory, s.opts.InputDirectory)
	if err != nil {
		return nil, err
	}
	outDir, err := s.resolveDirectory(req.OutputDir, s.opts.OutputDirectory)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, dir, outDir)
}

// List returns the workbooks in a directory, optionally filtered by a
// case-insensitive name query
func (s *Service) List(req ListRequest) (*ListResult, error) {
	dir, err := s.resolveDirectory(req.Directory, s.opts.InputDirectory)
	if err != nil {
		return nil, err
	}

	paths, err := batch.ListWorkbooks(dir)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	result := &ListResult{Directory: dir, SearchQuery: query, Files: []FileInfo{}}
	for _, path := range paths {
		name := filepath.Base(path)
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		result.Files = append(result.Files, FileInfo{
			Path:         path,
			Name:         name,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format(time.RFC3339),
		})
	}
	result.TotalCount = len(result.Files)
	return result, nil
}
