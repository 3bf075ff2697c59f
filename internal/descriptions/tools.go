package descriptions

import "sort"

// Long-form tool descriptions shown to tool-server clients.

const (
	Form3ConvertDescription = `Convert a Form 3 workbook into a Circular 29 spreadsheet.

**When to use:** A Form 3 certificate workbook (Table A, Table B, Table C sheets) needs to be re-issued in the Circular 29 layout.

**What it does:** Reads the project name and registration number from Table A, the as-on date from Table B and every unit section (sold, unsold, landowner, tenant, rehab, CIDCO, PAP) from Table C. When a sheet or section is missing it scans every other sheet, then falls back to the file name for metadata. The output is written as "Circular 29 - <project> as on <Month Year>.xlsx".

**Examples:**
• Convert one file: "Convert Sunrise_Heights_P51800012345.xlsx"
• Choose the destination: "Convert form3.xlsx into /reports/circular29"

**Common workflows:**
1. form3_validate → form3_convert → review the unit counts in the response
2. form3_inspect to preview extraction → form3_convert once the counts look right

**Best practices:** Check the warnings in the response; a section reported as not found renders no rows.`

	Form3InspectDescription = `Preview what would be extracted from a Form 3 workbook without writing anything.

**When to use:** Before converting, or when a conversion produced fewer units than expected.

**What it does:** Runs the full extraction, including recovery and the file-name fallback, and reports project metadata, per-section unit counts, the first units of each section, whether a building column was found, and every warning raised along the way.

**Examples:**
• "Inspect form3.xlsx and tell me which sections are empty"
• "Why does the converted sheet have no tenant rows?"

**Best practices:** Use the warnings to find the sheet and section that failed; the same workbook always yields the same result.`

	Form3ValidateDescription = `Quickly check whether a file looks like a Form 3 workbook.

**When to use:** Before converting files of unknown origin, or to triage a folder.

**What it does:** Checks the extension (.xlsx/.xls), the presence of the Table A, Table B and Table C sheets, the certificate sentence on Table A, an "as on" mention on Table B and a section keyword on Table C. A file is valid when it is an Excel file with at least one table sheet and at least one content signal.

**Best practices:** Batch conversion skips files that fail this check.`

	Form3BatchDescription = `Convert every Form 3 workbook in a directory.

**When to use:** A folder of certificates must be converted in one go.

**What it does:** Lists .xlsx/.xls files (not recursive), validates each, converts the valid ones in parallel and writes "<name>_Circular29.xlsx" next to the configured output. Per-file reports and a batch summary go to a "conversion_reports" folder when reports are enabled.

**Best practices:** Read the failed-file list in the summary; each failure carries the reason.`

	Form3ListDescription = `List Form 3 candidate workbooks in a directory.

**When to use:** To discover which files are available before converting.

**What it does:** Returns .xlsx/.xls files directly inside the directory with size and modification time, optionally filtered by a case-insensitive name query.`

	Form3ServerInfoDescription = `Get server information, available tools and directory contents.

**When to use:** At the start of a session to learn the configured directories, limits and tools.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"form3_convert":     Form3ConvertDescription,
	"form3_inspect":     Form3InspectDescription,
	"form3_validate":    Form3ValidateDescription,
	"form3_batch":       Form3BatchDescription,
	"form3_list":        Form3ListDescription,
	"form3_server_info": Form3ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns every tool name, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
