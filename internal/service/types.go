package service

import (
	"github.com/a3tai/circular29/internal/convert"
	"github.com/a3tai/circular29/internal/inventory"
	"github.com/a3tai/circular29/internal/rules"
)

// FileInfo represents information about a workbook on disk
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// ConvertRequest asks for one workbook to be converted
type ConvertRequest struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir,omitempty"`
}

// InspectRequest asks for an extraction preview of one workbook
type InspectRequest struct {
	Path string `json:"path"`
	// Preview caps the records returned per section; 0 means DefaultPreview.
	Preview int `json:"preview,omitempty"`
}

// ValidateRequest asks for a structural check of one workbook
type ValidateRequest struct {
	Path string `json:"path"`
}

// BatchRequest asks for every workbook in a directory to be converted
type BatchRequest struct {
	Directory string `json:"directory,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
}

// ListRequest asks for the workbooks in a directory
type ListRequest struct {
	Directory string `json:"directory,omitempty"`
	Query     string `json:"query,omitempty"`
}

// Response Types

// ConvertResult is the outcome of a conversion
type ConvertResult struct {
	Path     string          `json:"path"`
	Output   string          `json:"output"`
	Summary  convert.Summary `json:"summary"`
	Warnings []string        `json:"warnings,omitempty"`
}

// SectionPreview holds the first records of a section
type SectionPreview struct {
	Section        rules.SectionLabel     `json:"section"`
	Units          int                    `json:"units"`
	BuildingColumn bool                   `json:"building_column"`
	Records        []inventory.UnitRecord `json:"records"`
}

// InspectResult describes what a conversion would produce
type InspectResult struct {
	Path       string             `json:"path"`
	OutputName string             `json:"output_name"`
	Validation convert.Validation `json:"validation"`
	Summary    convert.Summary    `json:"summary"`
	Sections   []SectionPreview   `json:"sections"`
	Warnings   []string           `json:"warnings,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
}

// ValidateResult is the outcome of a validation
type ValidateResult struct {
	Path       string             `json:"path"`
	Valid      bool               `json:"valid"`
	Validation convert.Validation `json:"validation"`
	Message    string             `json:"message,omitempty"`
}

// ListResult lists workbooks found in a directory
type ListResult struct {
	Directory   string     `json:"directory"`
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	InputDirectory    string     `json:"input_directory"`
	OutputDirectory   string     `json:"output_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	VocabularyVersion string     `json:"vocabulary_version"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
	SupportedFormats  []string   `json:"supported_formats"`
}
