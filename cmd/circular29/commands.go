package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/batch"
	"github.com/a3tai/circular29/internal/convert"
	"github.com/a3tai/circular29/internal/layout"
	"github.com/a3tai/circular29/internal/mcp"
	"github.com/a3tai/circular29/internal/service"
	"github.com/a3tai/circular29/internal/workbook"
)

func (a *app) runner() *batch.Runner {
	return batch.NewRunner(a.conv, a.logger.Named("batch"), batch.Options{
		Workers:     a.cfg.Workers,
		Reports:     a.cfg.Reports,
		MaxFileSize: a.cfg.MaxFileSize,
	})
}

func (a *app) convertCmd() *cobra.Command {
	var (
		name   string
		report bool
	)
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert one Form 3 workbook",
		Long: `Convert one Form 3 workbook and write the Circular 29 spreadsheet to the
output directory. The file is named "Circular 29 - <project> as on <Month Year>.xlsx"
unless --name is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			job := batch.Job{
				Input:      input,
				OutputDir:  a.cfg.OutputDirectory,
				OutputName: name,
			}
			if report {
				job.ReportDir = filepath.Join(a.cfg.OutputDirectory, batch.ReportsDirName)
			}

			res := a.runner().Do(cmd.Context(), job)
			out := cmd.OutOrStdout()
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if !res.Success {
				return fmt.Errorf("convert %s: %w", res.File, res.Err)
			}

			fmt.Fprintf(out, "Converted %s -> %s (%d units)\n", res.File, res.Output, res.Units)
			if res.ReportPath != "" {
				fmt.Fprintf(out, "Report: %s\n", res.ReportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Output file name (default: derived from project and date)")
	cmd.Flags().BoolVar(&report, "report", false, "Also write a plain-text conversion report")
	return cmd
}

type inspectOutput struct {
	Path       string             `json:"path"`
	OutputName string             `json:"output_name"`
	Validation convert.Validation `json:"validation"`
	Summary    convert.Summary    `json:"summary"`
	Errors     []string           `json:"errors,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

func (a *app) inspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show what would be extracted from a workbook without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			book, err := workbook.Open(input)
			if err != nil {
				return err
			}
			defer book.Close()

			state, err := a.conv.Convert(book, filepath.Base(input))
			if err != nil {
				return err
			}

			result := inspectOutput{
				Path:       input,
				OutputName: layout.OutputFilename(state.Meta),
				Validation: a.conv.Validate(book, input),
				Summary:    convert.Summarize(state),
			}
			result.Errors, result.Warnings = state.Issues.Messages()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprint(out, convert.Report(state, input, result.OutputName, time.Now()))
			printIssues(out, "ERRORS", result.Errors)
			printIssues(out, "WARNINGS", result.Warnings)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printIssues(w io.Writer, title string, issues []string) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, issue := range issues {
		fmt.Fprintf(w, "   - %s\n", issue)
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check whether a file looks like a Form 3 workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			var v convert.Validation
			book, err := workbook.Open(input)
			if err != nil {
				a.logger.Warn("cannot open workbook", zap.String("file", input), zap.Error(err))
				v = a.conv.Validate(nil, input)
			} else {
				defer book.Close()
				v = a.conv.Validate(book, input)
			}

			out := cmd.OutOrStdout()
			checks := []struct {
				name string
				ok   bool
			}{
				{"Excel file", v.IsExcel},
				{"Table A sheet", v.HasTableA},
				{"Table B sheet", v.HasTableB},
				{"Table C sheet", v.HasTableC},
				{"Project information", v.HasProjectInfo},
				{"As-on date", v.HasDateInfo},
				{"Unit data", v.HasUnitData},
			}
			for _, c := range checks {
				status := "FAIL"
				if c.ok {
					status = "PASS"
				}
				fmt.Fprintf(out, "%-20s %s\n", c.name, status)
			}

			if !v.OverallValid {
				return fmt.Errorf("%s is not a valid Form 3 workbook (failed: %s)",
					filepath.Base(input), strings.Join(v.Failed(), ", "))
			}
			fmt.Fprintf(out, "\n%s is a valid Form 3 workbook\n", filepath.Base(input))
			return nil
		},
	}
}

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [directory]",
		Short: "Convert every Form 3 workbook in a directory",
		Long: `Convert every .xlsx and .xls workbook directly inside the directory (the
input directory by default). Invalid workbooks are recorded as failed. Each
output is written as "<name>_Circular29.xlsx".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.InputDirectory
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				dir = abs
			}

			summary, err := a.runner().Run(cmd.Context(), dir, a.cfg.OutputDirectory)
			if summary != nil {
				fmt.Fprint(cmd.OutOrStdout(), batch.SummaryText(summary))
			}
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tool server over stdio or HTTP/SSE (--mode)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service.NewService(a.conv, a.logger.Named("service"), service.Options{
				InputDirectory:  a.cfg.InputDirectory,
				OutputDirectory: a.cfg.OutputDirectory,
				MaxFileSize:     a.cfg.MaxFileSize,
				Workers:         a.cfg.Workers,
				Reports:         a.cfg.Reports,
			})
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(a.cfg, svc, a.logger.Named("mcp"))
			if err != nil {
				return fmt.Errorf("failed to create tool server: %w", err)
			}

			if err := server.Run(cmd.Context()); err != nil {
				a.logger.Error("server error", zap.Error(err))
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
}
