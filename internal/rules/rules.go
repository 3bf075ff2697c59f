package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in vocabulary for Form 3 workbooks.
func Default() *Vocabulary {
	return &Vocabulary{
		Version: "1.0",
		Sections: map[SectionLabel][]string{
			SectionSold:      {"sold", "booked"},
			SectionUnsold:    {"unsold", "available"},
			SectionTenant:    {"tenant", "rented"},
			SectionLandowner: {"landowner", "land owner", "owner"},
			SectionRehab:     {"existing", "members", "member"},
			SectionCIDCO:     {"cidco", "nmmc"},
			SectionPAP:       {"pap"},
		},
		Header: HeaderRule{
			Tokens:    []string{"sr", "flat", "carpet", "unit", "building", "wing"},
			Lookback:  3,
			Threshold: 2,
		},
		// Order matters: each header cell goes to the first rule whose field
		// is still unmapped.
		Fields: []FieldRule{
			{
				Field: FieldSrNo,
				AnyOf: [][]string{{"sr", "no"}},
			},
			{
				Field: FieldFlatNo,
				AnyOf: [][]string{{"flat", "no"}, {"shop", "no"}},
			},
			{
				Field: FieldCarpetArea,
				AnyOf: [][]string{{"carpet", "area"}},
			},
			{
				Field:   FieldUnitType,
				AnyOf:   [][]string{{"unit", "type"}},
				Exclude: []string{"apartment"},
			},
			{
				Field: FieldBuildingNo,
				AnyOf: [][]string{{"building", "no"}, {"wing"}},
			},
		},
		Fallback: Fallbacks{
			Serial:   0,
			Building: 1,
			Flat:     2,
			Carpet:   3,
		},
		Metadata: MetadataRule{
			IdentityTrigger: "certificate is being issued for the project",
			NamePattern:     `(?i)for the project\s+(.+?)\s+having`,
			RegNoPattern:    `(?i)having maharera registration number\s+([A-Z0-9]+)\s+being developed`,
			AsOnKeywords:    []string{"table b", "as on"},
			AsOnPattern:     `(?i)\(as on\s+(.+?)\)`,
		},
		Filename: FilenameRule{
			RegNoPattern: `([A-Z]\d+)`,
			DatePattern:  `(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			Separators:   `[_-]+`,
		},
		Sheets: SheetPatterns{
			Project:   "table a",
			AsOn:      "table b",
			Inventory: "table c",
		},
		Status: map[SectionLabel]StatusTemplate{
			SectionSold:      {RegistrationDate: ""},
			SectionUnsold:    {RegistrationDate: "NA"},
			SectionLandowner: {RegistrationDate: "NA"},
			SectionTenant:    {RegistrationDate: "NA"},
			SectionRehab:     {RegistrationDate: "NA"},
			SectionCIDCO:     {Upper: true, RegistrationDate: "NA"},
			SectionPAP:       {Upper: true, RegistrationDate: "NA"},
		},
	}
}

// Load reads a YAML vocabulary file and overlays it on the defaults. Keys
// absent from the file keep their default values.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML vocabulary data over the defaults and validates it.
func Parse(data []byte) (*Vocabulary, error) {
	v := Default()
	if err := yaml.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	v.normalize()
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// normalize lowercases every keyword and section key so matching against
// normalized cell text stays case-insensitive.
func (v *Vocabulary) normalize() {
	// Keys needing normalization came from an override file and win over
	// the default entry they collide with.
	sections := make(map[SectionLabel][]string, len(v.Sections))
	var overrides []SectionLabel
	for label, syns := range v.Sections {
		key := SectionLabel(strings.ToLower(strings.TrimSpace(string(label))))
		if key != label {
			overrides = append(overrides, label)
			continue
		}
		sections[key] = lowerAll(syns)
	}
	for _, label := range overrides {
		key := SectionLabel(strings.ToLower(strings.TrimSpace(string(label))))
		sections[key] = lowerAll(v.Sections[label])
	}
	v.Sections = sections
	v.Header.Tokens = lowerAll(v.Header.Tokens)
	for i := range v.Fields {
		for j := range v.Fields[i].AnyOf {
			v.Fields[i].AnyOf[j] = lowerAll(v.Fields[i].AnyOf[j])
		}
		v.Fields[i].Exclude = lowerAll(v.Fields[i].Exclude)
	}
	v.Metadata.IdentityTrigger = strings.ToLower(v.Metadata.IdentityTrigger)
	v.Metadata.AsOnKeywords = lowerAll(v.Metadata.AsOnKeywords)
}

// Validate checks that the vocabulary is usable.
func (v *Vocabulary) Validate() error {
	for label := range v.Sections {
		if _, ok := ParseSectionLabel(string(label)); !ok {
			return fmt.Errorf("unknown section %q", label)
		}
	}
	for _, label := range ExtractionOrder {
		if len(v.Sections[label]) == 0 {
			return fmt.Errorf("section %q has no synonyms", label)
		}
	}
	if len(v.Header.Tokens) == 0 {
		return fmt.Errorf("header tokens cannot be empty")
	}
	if v.Header.Threshold <= 0 {
		return fmt.Errorf("header threshold must be positive")
	}
	if v.Header.Lookback < 0 {
		return fmt.Errorf("header lookback cannot be negative")
	}
	seen := make(map[FieldKind]bool)
	for _, f := range v.Fields {
		if seen[f.Field] {
			return fmt.Errorf("duplicate field rule %q", f.Field)
		}
		seen[f.Field] = true
	}
	// Extraction patterns read their value from the first capture group.
	captures := map[string]string{
		"metadata.name_pattern":   v.Metadata.NamePattern,
		"metadata.reg_no_pattern": v.Metadata.RegNoPattern,
		"metadata.as_on_pattern":  v.Metadata.AsOnPattern,
		"filename.reg_no_pattern": v.Filename.RegNoPattern,
		"filename.date_pattern":   v.Filename.DatePattern,
	}
	for name, p := range captures {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("invalid %s: pattern needs a capture group", name)
		}
	}
	if _, err := regexp.Compile(v.Filename.Separators); err != nil {
		return fmt.Errorf("invalid filename.separators: %w", err)
	}
	return nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
