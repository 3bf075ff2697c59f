// Package rules holds the vocabulary the extractors match against: section
// synonyms, header tokens, column-mapping rules and metadata patterns.
package rules

import "strings"

// SectionLabel identifies a unit category in a Form 3 workbook.
type SectionLabel string

const (
	SectionSold      SectionLabel = "sold"
	SectionUnsold    SectionLabel = "unsold"
	SectionTenant    SectionLabel = "tenant"
	SectionLandowner SectionLabel = "landowner"
	SectionRehab     SectionLabel = "rehab"
	SectionCIDCO     SectionLabel = "cidco"
	SectionPAP       SectionLabel = "pap"
)

// ExtractionOrder is the order sections are scanned in.
var ExtractionOrder = []SectionLabel{
	SectionSold, SectionUnsold, SectionTenant, SectionLandowner,
	SectionRehab, SectionCIDCO, SectionPAP,
}

// RenderOrder is the order sections appear in the output table.
var RenderOrder = []SectionLabel{
	SectionSold, SectionUnsold, SectionLandowner, SectionTenant,
	SectionRehab, SectionCIDCO, SectionPAP,
}

// ParseSectionLabel converts a string to a known SectionLabel.
func ParseSectionLabel(s string) (SectionLabel, bool) {
	l := SectionLabel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ExtractionOrder {
		if l == known {
			return l, true
		}
	}
	return "", false
}

// FieldKind identifies a logical column of the unit table.
type FieldKind string

const (
	FieldSrNo       FieldKind = "sr_no"
	FieldBuildingNo FieldKind = "building_no"
	FieldFlatNo     FieldKind = "flat_no"
	FieldCarpetArea FieldKind = "carpet_area"
	FieldUnitType   FieldKind = "unit_type"
)

// FieldRule maps a header cell to a field. A cell matches when, for at least
// one entry of AnyOf, it contains every keyword of that entry, and it
// contains none of the Exclude keywords.
type FieldRule struct {
	Field   FieldKind  `yaml:"field"`
	AnyOf   [][]string `yaml:"any_of"`
	Exclude []string   `yaml:"exclude,omitempty"`
}

// Matches reports whether the normalized header text satisfies the rule.
func (r FieldRule) Matches(text string) bool {
	for _, ex := range r.Exclude {
		if strings.Contains(text, ex) {
			return false
		}
	}
	for _, group := range r.AnyOf {
		if len(group) == 0 {
			continue
		}
		all := true
		for _, kw := range group {
			if !strings.Contains(text, kw) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// HeaderRule describes how the header row is recognised.
type HeaderRule struct {
	Tokens    []string `yaml:"tokens"`
	Lookback  int      `yaml:"lookback"`
	Threshold int      `yaml:"threshold"`
}

// Fallbacks are the positional columns used when a field is not mapped.
type Fallbacks struct {
	Serial   int `yaml:"serial"`
	Building int `yaml:"building"`
	Flat     int `yaml:"flat"`
	Carpet   int `yaml:"carpet"`
}

// MetadataRule holds the triggers and patterns for project metadata.
type MetadataRule struct {
	IdentityTrigger string   `yaml:"identity_trigger"`
	NamePattern     string   `yaml:"name_pattern"`
	RegNoPattern    string   `yaml:"reg_no_pattern"`
	AsOnKeywords    []string `yaml:"as_on_keywords"`
	AsOnPattern     string   `yaml:"as_on_pattern"`
}

// FilenameRule holds the patterns used to recover metadata from a filename.
type FilenameRule struct {
	RegNoPattern string `yaml:"reg_no_pattern"`
	DatePattern  string `yaml:"date_pattern"`
	Separators   string `yaml:"separators"`
}

// SheetPatterns name the sheets the primary pass reads.
type SheetPatterns struct {
	Project   string `yaml:"project"`
	AsOn      string `yaml:"as_on"`
	Inventory string `yaml:"inventory"`
}

// Vocabulary is the complete set of matching rules used by a conversion.
type Vocabulary struct {
	Version  string                          `yaml:"version"`
	Sections map[SectionLabel][]string       `yaml:"sections"`
	Header   HeaderRule                      `yaml:"header"`
	Fields   []FieldRule                     `yaml:"fields"`
	Fallback Fallbacks                       `yaml:"fallback"`
	Metadata MetadataRule                    `yaml:"metadata"`
	Filename FilenameRule                    `yaml:"filename"`
	Sheets   SheetPatterns                   `yaml:"sheets"`
	Status   map[SectionLabel]StatusTemplate `yaml:"status,omitempty"`
}

// StatusTemplate controls how a section is shown in the output table.
type StatusTemplate struct {
	Upper            bool   `yaml:"upper"`
	RegistrationDate string `yaml:"registration_date"`
}

// Synonyms returns the lowercase synonyms for a section.
func (v *Vocabulary) Synonyms(label SectionLabel) []string {
	return v.Sections[label]
}
