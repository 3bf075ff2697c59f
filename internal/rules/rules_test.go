package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabularyIsValid(t *testing.T) {
	v := Default()
	require.NoError(t, v.Validate())

	assert.Equal(t, []string{"sold", "booked"}, v.Synonyms(SectionSold))
	assert.Equal(t, 3, v.Header.Lookback)
	assert.Equal(t, 2, v.Header.Threshold)
	assert.Len(t, v.Fields, 5)
	assert.Equal(t, FieldSrNo, v.Fields[0].Field)
	assert.Equal(t, FieldBuildingNo, v.Fields[4].Field)
}

func TestSectionOrders(t *testing.T) {
	assert.ElementsMatch(t, ExtractionOrder, RenderOrder)
	assert.Equal(t, SectionLandowner, RenderOrder[2])
	assert.Equal(t, SectionTenant, ExtractionOrder[2])
}

func TestParseSectionLabel(t *testing.T) {
	l, ok := ParseSectionLabel(" CIDCO ")
	require.True(t, ok)
	assert.Equal(t, SectionCIDCO, l)

	_, ok = ParseSectionLabel("garage")
	assert.False(t, ok)
}

func TestFieldRuleMatches(t *testing.T) {
	v := Default()
	rule := func(f FieldKind) FieldRule {
		for _, r := range v.Fields {
			if r.Field == f {
				return r
			}
		}
		t.Fatalf("no rule for %s", f)
		return FieldRule{}
	}

	tests := []struct {
		name  string
		field FieldKind
		text  string
		want  bool
	}{
		{"serial", FieldSrNo, "sr. no.", true},
		{"serial missing no", FieldSrNo, "sr", false},
		{"flat", FieldFlatNo, "flat no", true},
		{"shop", FieldFlatNo, "shop no.", true},
		{"carpet", FieldCarpetArea, "carpet area (sq.mtrs)", true},
		{"unit type", FieldUnitType, "unit type", true},
		{"apartment excluded", FieldUnitType, "apartment unit type", false},
		{"building", FieldBuildingNo, "building no", true},
		{"wing alone", FieldBuildingNo, "wing", true},
		{"building without no", FieldBuildingNo, "building", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule(tt.field).Matches(tt.text))
		})
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	data := []byte(`
header:
  tokens: [SR, Flat, Tower]
  lookback: 4
  threshold: 2
sections:
  rehab: [Existing, Society Member]
`)
	v, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"sr", "flat", "tower"}, v.Header.Tokens)
	assert.Equal(t, 4, v.Header.Lookback)
	assert.Equal(t, []string{"existing", "society member"}, v.Synonyms(SectionRehab))
	assert.Equal(t, []string{"sold", "booked"}, v.Synonyms(SectionSold))
	assert.Equal(t, "table c", v.Sheets.Inventory)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "header: [unclosed"},
		{"zero threshold", "header:\n  threshold: 0\n"},
		{"bad regex", "metadata:\n  as_on_pattern: \"(unclosed\"\n"},
		{"empty section", "sections:\n  pap: []\n"},
		{"unknown section", "sections:\n  garage: [parking]\n"},
		{"filename pattern without group", "filename:\n  reg_no_pattern: '[A-Z]\\d+'\n"},
		{"date pattern without group", "filename:\n  date_pattern: '\\d{2}-\\d{2}-\\d{4}'\n"},
		{"metadata pattern without group", "metadata:\n  name_pattern: 'for the project'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseNormalizesSectionKeys(t *testing.T) {
	v, err := Parse([]byte("sections:\n  Sold: [Allotted]\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"allotted"}, v.Sections[SectionSold])
	_, stale := v.Sections["Sold"]
	assert.False(t, stale)
}

func TestParseAcceptsOptionalGroup(t *testing.T) {
	v, err := Parse([]byte("filename:\n  reg_no_pattern: '(Q\\d+)?P\\d+'\n"))
	require.NoError(t, err)
	assert.Equal(t, `(Q\d+)?P\d+`, v.Filename.RegNoPattern)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"2.0\"\n"), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2.0", v.Version)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
