// Package inventory defines the records and per-document state collected
// while converting a Form 3 workbook.
package inventory

import (
	"github.com/google/uuid"

	cerrors "github.com/a3tai/circular29/internal/errors"
	"github.com/a3tai/circular29/internal/rules"
)

// UnitRecord is one unit row read from an inventory section.
type UnitRecord struct {
	Sequence         int                `json:"sequence"`
	Building         string             `json:"building"`
	Flat             string             `json:"flat"`
	CarpetArea       string             `json:"carpet_area"`
	Section          rules.SectionLabel `json:"section"`
	RegistrationDate string             `json:"registration_date"`
}

// ProjectMetadata identifies the project a certificate was issued for.
type ProjectMetadata struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	AsOnDate           string `json:"as_on_date"`
}

// Complete reports whether every metadata field is set.
func (m ProjectMetadata) Complete() bool {
	return m.Name != "" && m.RegistrationNumber != "" && m.AsOnDate != ""
}

// Fill copies each field of other into m where m's field is empty and
// returns how many fields were filled.
func (m *ProjectMetadata) Fill(other ProjectMetadata) int {
	filled := 0
	if m.Name == "" && other.Name != "" {
		m.Name = other.Name
		filled++
	}
	if m.RegistrationNumber == "" && other.RegistrationNumber != "" {
		m.RegistrationNumber = other.RegistrationNumber
		filled++
	}
	if m.AsOnDate == "" && other.AsOnDate != "" {
		m.AsOnDate = other.AsOnDate
		filled++
	}
	return filled
}

// SectionResult holds the records of one section and whether its table had
// a building column.
type SectionResult struct {
	Records        []UnitRecord `json:"records"`
	BuildingColumn bool         `json:"building_column"`
}

// State accumulates everything extracted from one document. BuildingColumn
// is the document-wide flag and is only final once collection has finished.
type State struct {
	ID             string                                `json:"id"`
	Source         string                                `json:"source,omitempty"`
	Meta           ProjectMetadata                       `json:"meta"`
	Sections       map[rules.SectionLabel]*SectionResult `json:"sections"`
	BuildingColumn bool                                  `json:"building_column"`
	Issues         *cerrors.Collection                   `json:"-"`
}

// NewState creates an empty State with a fresh conversion ID and an empty
// result for every section.
func NewState(source string) *State {
	s := &State{
		ID:       uuid.New().String(),
		Source:   source,
		Sections: make(map[rules.SectionLabel]*SectionResult, len(rules.ExtractionOrder)),
		Issues:   cerrors.NewCollection(source),
	}
	for _, label := range rules.ExtractionOrder {
		s.Sections[label] = &SectionResult{}
	}
	return s
}

// Section returns the result for label, creating it if necessary.
func (s *State) Section(label rules.SectionLabel) *SectionResult {
	r, ok := s.Sections[label]
	if !ok || r == nil {
		r = &SectionResult{}
		s.Sections[label] = r
	}
	return r
}

// SetSection stores a section result and folds its building flag into the
// document flag.
func (s *State) SetSection(label rules.SectionLabel, r SectionResult) {
	stored := r
	s.Sections[label] = &stored
	s.BuildingColumn = s.BuildingColumn || r.BuildingColumn
}

// Records returns the records of label.
func (s *State) Records(label rules.SectionLabel) []UnitRecord {
	return s.Section(label).Records
}

// TotalUnits counts records across every section.
func (s *State) TotalUnits() int {
	total := 0
	for _, r := range s.Sections {
		if r != nil {
			total += len(r.Records)
		}
	}
	return total
}

// Counts returns the record count per section.
func (s *State) Counts() map[rules.SectionLabel]int {
	counts := make(map[rules.SectionLabel]int, len(rules.ExtractionOrder))
	for _, label := range rules.ExtractionOrder {
		counts[label] = len(s.Records(label))
	}
	return counts
}

// MissingSections lists sections with no records, in extraction order.
func (s *State) MissingSections() []rules.SectionLabel {
	var missing []rules.SectionLabel
	for _, label := range rules.ExtractionOrder {
		if len(s.Records(label)) == 0 {
			missing = append(missing, label)
		}
	}
	return missing
}

// Complete reports whether metadata is complete and every section has records.
func (s *State) Complete() bool {
	return s.Meta.Complete() && len(s.MissingSections()) == 0
}
