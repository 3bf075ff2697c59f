package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/batch"
	"github.com/a3tai/circular29/internal/config"
	"github.com/a3tai/circular29/internal/descriptions"
	"github.com/a3tai/circular29/internal/service"
)

// Server represents the tool server instance
type Server struct {
	config    *config.Config
	service   *service.Service
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewServer creates a new tool server instance
func NewServer(cfg *config.Config, svc *service.Service, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		service:   svc,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available tools
func (s *Server) registerTools() {
	pathOption := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the Form 3 workbook, absolute or relative to the input directory"),
	)

	convertTool := mcp.NewTool(
		"form3_convert",
		mcp.WithDescription(descriptions.GetToolDescription("form3_convert")),
		pathOption,
		mcp.WithString("output_dir",
			mcp.Description("Directory for the Circular 29 file (uses the output directory if empty)"),
		),
	)
	s.mcpServer.AddTool(convertTool, s.handleConvert)

	inspectTool := mcp.NewTool(
		"form3_inspect",
		mcp.WithDescription(descriptions.GetToolDescription("form3_inspect")),
		pathOption,
		mcp.WithNumber("preview",
			mcp.Description("Number of units shown per section (default 5)"),
		),
		mcp.WithString("format",
			mcp.Description("Response format: 'text' (default) or 'json'"),
		),
	)
	s.mcpServer.AddTool(inspectTool, s.handleInspect)

	validateTool := mcp.NewTool(
		"form3_validate",
		mcp.WithDescription(descriptions.GetToolDescription("form3_validate")),
		pathOption,
	)
	s.mcpServer.AddTool(validateTool, s.handleValidate)

	batchTool := mcp.NewTool(
		"form3_batch",
		mcp.WithDescription(descriptions.GetToolDescription("form3_batch")),
		mcp.WithString("directory",
			mcp.Description("Directory to convert (uses the input directory if empty)"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory for the converted files (uses the output directory if empty)"),
		),
		mcp.WithString("format",
			mcp.Description("Response format: 'text' (default) or 'json'"),
		),
	)
	s.mcpServer.AddTool(batchTool, s.handleBatch)

	listTool := mcp.NewTool(
		"form3_list",
		mcp.WithDescription(descriptions.GetToolDescription("form3_list")),
		mcp.WithString("directory",
			mcp.Description("Directory path to list (uses the input directory if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive file name filter"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleList)

	serverInfoTool := mcp.NewTool(
		"form3_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("form3_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

func stringArg(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(request mcp.CallToolRequest, key string) int {
	switch v := request.GetArguments()[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func wantsJSON(request mcp.CallToolRequest) bool {
	return strings.EqualFold(stringArg(request, "format"), "json")
}

// Handler functions
func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := service.ConvertRequest{Path: path, OutputDir: stringArg(request, "output_dir")}
	result, err := s.service.Convert(ctx, req)
	if err != nil {
		s.logger.Warn("convert failed", zap.String("path", path), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatConvertResult(result)), nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := service.InspectRequest{Path: path, Preview: intArg(request, "preview")}
	result, err := s.service.Inspect(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if wantsJSON(request) {
		return mcp.NewToolResultText(jsonText(result)), nil
	}
	return mcp.NewToolResultText(s.formatInspectResult(result)), nil
}

func (s *Server) handleValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Validate(service.ValidateRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Workbook %s looks like a Form 3 certificate", result.Path)
	} else {
		responseText = fmt.Sprintf("Form 3 validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := service.BatchRequest{
		Directory: stringArg(request, "directory"),
		OutputDir: stringArg(request, "output_dir"),
	}

	summary, err := s.service.Batch(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if wantsJSON(request) {
		return mcp.NewToolResultText(jsonText(summary)), nil
	}
	return mcp.NewToolResultText(s.formatBatchSummary(summary)), nil
}

func (s *Server) handleList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := service.ListRequest{
		Directory: stringArg(request, "directory"),
		Query:     stringArg(request, "query"),
	}

	result, err := s.service.List(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No workbooks found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatListResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.ServerInfo(s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Formatting methods
func (s *Server) formatConvertResult(result *service.ConvertResult) string {
	text := fmt.Sprintf("Successfully converted: %s\n", result.Path)
	text += fmt.Sprintf("Output: %s\n", result.Output)
	text += formatSummary(result.Summary.ProjectName, result.Summary.RegistrationNumber, result.Summary.AsOnDate)
	text += fmt.Sprintf("Total units: %d\n", result.Summary.TotalUnits)
	for _, sc := range result.Summary.Sections {
		text += fmt.Sprintf("  %s: %d\n", sc.Section, sc.Units)
	}
	if result.Summary.TotalUnits == 0 {
		text += "\n⚠️  WARNING: No units were found; the output contains headers only.\n"
	}
	text += formatWarnings(result.Warnings)
	return text
}

func formatSummary(name, regNo, asOn string) string {
	orDash := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	return fmt.Sprintf("Project: %s\nRegistration: %s\nAs on: %s\n", orDash(name), orDash(regNo), orDash(asOn))
}

func formatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	text := fmt.Sprintf("\nWarnings (%d):\n", len(warnings))
	for _, w := range warnings {
		text += fmt.Sprintf("  - %s\n", w)
	}
	return text
}

func (s *Server) formatInspectResult(result *service.InspectResult) string {
	text := fmt.Sprintf("Form 3 inspection for: %s\n", result.Path)
	text += fmt.Sprintf("Valid: %t\n", result.Validation.OverallValid)
	text += formatSummary(result.Summary.ProjectName, result.Summary.RegistrationNumber, result.Summary.AsOnDate)
	text += fmt.Sprintf("Output name: %s\n", result.OutputName)
	text += fmt.Sprintf("Total units: %d\n", result.Summary.TotalUnits)

	text += "\nSections:\n"
	for _, sec := range result.Sections {
		text += fmt.Sprintf("• %s: %d unit(s)", sec.Section, sec.Units)
		if sec.Units > 0 && !sec.BuildingColumn {
			text += " (no building column)"
		}
		text += "\n"
		for _, rec := range sec.Records {
			text += fmt.Sprintf("    %d. building %q flat %q carpet %q\n", rec.Sequence, rec.Building, rec.Flat, rec.CarpetArea)
		}
		if shown := len(sec.Records); shown < sec.Units {
			text += fmt.Sprintf("    ... and %d more\n", sec.Units-shown)
		}
	}

	if len(result.Errors) > 0 {
		text += fmt.Sprintf("\nErrors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			text += fmt.Sprintf("  - %s\n", e)
		}
	}
	text += formatWarnings(result.Warnings)
	return text
}

func (s *Server) formatBatchSummary(summary *batch.Summary) string {
	text := batch.SummaryText(summary)
	if summary.SummaryPath != "" {
		text += fmt.Sprintf("\nSummary written to: %s\n", summary.SummaryPath)
	}
	return text
}

func (s *Server) formatListResult(result *service.ListResult) string {
	text := fmt.Sprintf("Found %d workbook(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatServerInfoResult(result *service.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Input Directory: %s\n", result.InputDirectory)
	text += fmt.Sprintf("📁 Output Directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("📖 Vocabulary Version: %s\n\n", result.VocabularyVersion)

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d workbooks found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No workbooks found in input directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	if len(result.SupportedFormats) > 0 {
		text += "\n📄 Supported Formats: " + strings.Join(result.SupportedFormats, ", ") + "\n"
	}

	text += "\n" + result.UsageGuidance

	return text
}

// jsonText renders v as indented JSON.
func jsonText(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(data)
}

// Run starts the tool server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server over standard I/O
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Info("starting tool server in stdio mode",
		zap.String("input_directory", s.config.InputDirectory),
		zap.String("output_directory", s.config.OutputDirectory))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves over HTTP with server-sent events until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	s.logger.Info("starting tool server in server mode",
		zap.String("address", addr),
		zap.String("input_directory", s.config.InputDirectory))

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve sse: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down tool server")
		if err := sse.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}
