package service

import (
	"fmt"

	"github.com/a3tai/circular29/internal/descriptions"
)

// maxListedFiles caps the directory listing in ServerInfo.
const maxListedFiles = 100

// ServerInfo describes the server, its tools and the input directory
func (s *Service) ServerInfo(serverName, version string) (*ServerInfoResult, error) {
	listing, err := s.List(ListRequest{})
	if err != nil {
		listing = &ListResult{}
	}
	files := listing.Files
	if len(files) > maxListedFiles {
		files = files[:maxListedFiles]
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		InputDirectory:    s.opts.InputDirectory,
		OutputDirectory:   s.opts.OutputDirectory,
		MaxFileSize:       s.opts.MaxFileSize,
		VocabularyVersion: s.conv.Extractor().Vocabulary().Version,
		AvailableTools:    availableTools(),
		DirectoryContents: files,
		UsageGuidance:     s.usageGuidance(),
		SupportedFormats:  []string{".xlsx", ".xls"},
	}, nil
}

func availableTools() []ToolInfo {
	pathParam := "path (required): workbook path, absolute or relative to the input directory"
	return []ToolInfo{
		{
			Name:        "form3_convert",
			Description: descriptions.GetToolDescription("form3_convert"),
			Usage:       "Convert one Form 3 workbook and write the Circular 29 spreadsheet.",
			Parameters:  pathParam + "; output_dir (optional): destination directory",
		},
		{
			Name:        "form3_inspect",
			Description: descriptions.GetToolDescription("form3_inspect"),
			Usage:       "Preview extracted metadata, unit counts and warnings without writing.",
			Parameters:  pathParam + "; preview (optional): records shown per section",
		},
		{
			Name:        "form3_validate",
			Description: descriptions.GetToolDescription("form3_validate"),
			Usage:       "Check a workbook for the Form 3 sheets and content markers.",
			Parameters:  pathParam,
		},
		{
			Name:        "form3_batch",
			Description: descriptions.GetToolDescription("form3_batch"),
			Usage:       "Convert every workbook in a directory in parallel.",
			Parameters:  "directory (optional): defaults to the input directory; output_dir (optional)",
		},
		{
			Name:        "form3_list",
			Description: descriptions.GetToolDescription("form3_list"),
			Usage:       "List candidate workbooks.",
			Parameters:  "directory (optional): defaults to the input directory; query (optional): name filter",
		},
		{
			Name:        "form3_server_info",
			Description: descriptions.GetToolDescription("form3_server_info"),
			Usage:       "Show configuration, tools and directory contents.",
			Parameters:  "none",
		},
	}
}

func (s *Service) usageGuidance() string {
	maxFileSizeMB := s.opts.MaxFileSize / (1024 * 1024)

	return fmt.Sprintf(`Form 3 to Circular 29 Usage Guide:

1. DISCOVER: use 'form3_list' to find workbooks in the input directory.
2. CHECK: use 'form3_validate' to confirm the Table A/B/C sheets are present.
3. PREVIEW: use 'form3_inspect' to see metadata, unit counts and warnings.
4. CONVERT: use 'form3_convert' for one file or 'form3_batch' for a folder.

IMPORTANT NOTES:
- Paths must stay inside the input or output directory
- The server accepts workbooks up to %dMB
- Sections that cannot be located produce warnings and render no rows
- Missing metadata is recovered from other sheets and then from the file name`, maxFileSizeMB)
}
