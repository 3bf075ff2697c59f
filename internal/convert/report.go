package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/a3tai/circular29/internal/inventory"
	"github.com/a3tai/circular29/internal/rules"
)

const notFound = "Not found"

// SectionCount is the number of units read from one section.
type SectionCount struct {
	Section rules.SectionLabel `json:"section"`
	Units   int                `json:"units"`
}

// Summary describes a collected state for display and JSON output.
type Summary struct {
	ConversionID       string         `json:"conversion_id"`
	ProjectName        string         `json:"project_name"`
	RegistrationNumber string         `json:"registration_number"`
	AsOnDate           string         `json:"as_on_date"`
	Sections           []SectionCount `json:"sections"`
	TotalUnits         int            `json:"total_units"`
	BuildingColumn     bool           `json:"building_column"`
	MissingSections    []string       `json:"missing_sections,omitempty"`
	Errors             int            `json:"errors"`
	Warnings           int            `json:"warnings"`
	Success            bool           `json:"success"`
}

// Summarize condenses state into a Summary. Sections are listed in
// extraction order.
func Summarize(state *inventory.State) Summary {
	s := Summary{
		ConversionID:       state.ID,
		ProjectName:        state.Meta.Name,
		RegistrationNumber: state.Meta.RegistrationNumber,
		AsOnDate:           state.Meta.AsOnDate,
		TotalUnits:         state.TotalUnits(),
		BuildingColumn:     state.BuildingColumn,
		MissingSections:    labels(state.MissingSections()),
	}
	counts := state.Counts()
	for _, label := range rules.ExtractionOrder {
		s.Sections = append(s.Sections, SectionCount{Section: label, Units: counts[label]})
	}
	s.Errors, s.Warnings = state.Issues.Count()
	s.Success = s.TotalUnits > 0
	return s
}

func orNotFound(s string) string {
	if s == "" {
		return notFound
	}
	return s
}

// Report renders the per-document conversion report.
func Report(state *inventory.State, input, output string, at time.Time) string {
	s := Summarize(state)

	var b strings.Builder
	b.WriteString("FORM 3 TO CIRCULAR 29 CONVERSION REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "INPUT FILE: %s\n", input)
	fmt.Fprintf(&b, "OUTPUT FILE: %s\n", output)
	fmt.Fprintf(&b, "CONVERSION DATE: %s\n\n", at.Format("2006-01-02 15:04:05"))

	b.WriteString("PROJECT INFORMATION:\n")
	fmt.Fprintf(&b, "   - Project Name: %s\n", orNotFound(s.ProjectName))
	fmt.Fprintf(&b, "   - Registration Number: %s\n", orNotFound(s.RegistrationNumber))
	fmt.Fprintf(&b, "   - As-on Date: %s\n\n", orNotFound(s.AsOnDate))

	b.WriteString("UNIT SUMMARY:\n")
	for _, sc := range s.Sections {
		fmt.Fprintf(&b, "   - %s: %d units\n", strings.ToUpper(string(sc.Section)), sc.Units)
	}
	fmt.Fprintf(&b, "   - TOTAL UNITS: %d\n\n", s.TotalUnits)

	if state.Issues != nil {
		fmt.Fprintf(&b, "ISSUES: %s\n\n", state.Issues.Summary())
	}

	if s.Success {
		b.WriteString("CONVERSION STATUS: SUCCESS\n")
	} else {
		b.WriteString("CONVERSION STATUS: NO UNITS FOUND\n")
	}
	return b.String()
}
