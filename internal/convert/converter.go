// Package convert runs the Form 3 extraction pipeline over a workbook: a
// primary pass over the named tables, a recovery fold over every sheet, and a
// filename fallback for metadata that is still missing.
package convert

import (
	"go.uber.org/zap"

	cerrors "github.com/a3tai/circular29/internal/errors"
	"github.com/a3tai/circular29/internal/extract"
	"github.com/a3tai/circular29/internal/grid"
	"github.com/a3tai/circular29/internal/inventory"
	"github.com/a3tai/circular29/internal/layout"
	"github.com/a3tai/circular29/internal/rules"
)

// Converter turns Form 3 workbooks into collected State and rendered documents.
type Converter struct {
	vocab     *rules.Vocabulary
	extractor *extract.Extractor
	renderer  *layout.Renderer
	logger    *zap.Logger
}

// New creates a Converter. A nil vocabulary selects rules.Default() and a nil
// logger discards output.
func New(vocab *rules.Vocabulary, logger *zap.Logger) (*Converter, error) {
	if vocab == nil {
		vocab = rules.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ex, err := extract.New(vocab, logger.Named("extract"))
	if err != nil {
		return nil, err
	}

	return &Converter{
		vocab:     vocab,
		extractor: ex,
		renderer:  layout.NewRenderer(vocab, logger.Named("layout")),
		logger:    logger,
	}, nil
}

// Extractor returns the underlying extractor.
func (c *Converter) Extractor() *extract.Extractor {
	return c.extractor
}

// Process runs the primary pass: project identity from the Table A sheet,
// the as-on date from Table B and every section from Table C. Missing
// sheets and sections are recorded as warnings on the State. Only a sheet
// that cannot be read is returned as an error.
func (c *Converter) Process(src grid.Workbook) (*inventory.State, error) {
	state := inventory.NewState("")
	return state, c.process(src, state)
}

func (c *Converter) process(src grid.Workbook, state *inventory.State) error {
	log := c.logger.With(zap.String("conversion_id", state.ID))
	names := src.SheetNames()
	log.Info("processing workbook", zap.Strings("sheets", names))

	sheets := c.vocab.Sheets

	g, err := c.namedSheet(src, names, sheets.Project, state)
	if err != nil {
		return err
	}
	if g != nil {
		c.guarded(state, g.Name, func() {
			name, regNo, found := c.extractor.ProjectIdentity(g)
			if !found {
				state.Issues.Add(cerrors.New(cerrors.ErrorTypeNotFound, "project identity not found").WithSheet(g.Name))
			}
			state.Meta.Fill(inventory.ProjectMetadata{Name: name, RegistrationNumber: regNo})
		})
	}

	g, err = c.namedSheet(src, names, sheets.AsOn, state)
	if err != nil {
		return err
	}
	if g != nil {
		c.guarded(state, g.Name, func() {
			date := c.extractor.AsOnDate(g)
			if date == "" {
				state.Issues.Add(cerrors.New(cerrors.ErrorTypeNotFound, "as-on date not found").WithSheet(g.Name))
			}
			state.Meta.Fill(inventory.ProjectMetadata{AsOnDate: date})
		})
	}

	g, err = c.namedSheet(src, names, sheets.Inventory, state)
	if err != nil {
		return err
	}
	if g != nil {
		c.guarded(state, g.Name, func() {
			for _, label := range rules.ExtractionOrder {
				result, miss := c.extractor.ExtractSection(g, label)
				if miss != nil {
					state.Issues.Add(miss)
				}
				state.SetSection(label, result)
			}
		})
	}

	for label, n := range state.Counts() {
		log.Debug("section count", zap.String("section", string(label)), zap.Int("units", n))
	}
	return nil
}

// namedSheet loads the first sheet whose name contains pattern. A missing
// sheet is a warning and yields nil without error.
func (c *Converter) namedSheet(src grid.Workbook, names []string, pattern string, state *inventory.State) (*grid.Grid, error) {
	name, ok := grid.MatchSheet(names, pattern)
	if !ok {
		c.logger.Warn("sheet not found",
			zap.String("conversion_id", state.ID),
			zap.String("pattern", pattern))
		state.Issues.Add(cerrors.New(cerrors.ErrorTypeNotFound, "sheet not found").WithContext(pattern))
		return nil, nil
	}

	g, err := src.Sheet(name)
	if err != nil {
		return nil, cerrors.AsSourceFailure(err, "read sheet "+name)
	}
	return g, nil
}

// guarded runs fn and turns a panic into a ParseFailure on state.
func (c *Converter) guarded(state *inventory.State, sheet string, fn func()) {
	err := cerrors.Guard(func() error {
		fn()
		return nil
	})
	if err == nil {
		return
	}
	c.logger.Error("extraction failed",
		zap.String("conversion_id", state.ID),
		zap.String("sheet", sheet),
		zap.Error(err))
	if ce, ok := err.(*cerrors.ConversionError); ok {
		state.Issues.Add(ce.WithSheet(sheet))
	}
}

// ScanSheet extracts everything one sheet offers into a fresh State. It
// reads identity, as-on date and every section from the same grid.
func (c *Converter) ScanSheet(g *grid.Grid) *inventory.State {
	s := inventory.NewState("")
	name, regNo, _ := c.extractor.ProjectIdentity(g)
	s.Meta = inventory.ProjectMetadata{
		Name:               name,
		RegistrationNumber: regNo,
		AsOnDate:           c.extractor.AsOnDate(g),
	}
	for _, label := range rules.ExtractionOrder {
		result, _ := c.extractor.ExtractSection(g, label)
		s.SetSection(label, result)
	}
	return s
}

// Recover folds every sheet, in workbook order, into state. Sheets that fail
// to load or panic during extraction are logged and skipped. It reports
// whether anything previously missing was filled.
func (c *Converter) Recover(src grid.Workbook, state *inventory.State) (*inventory.State, bool) {
	log := c.logger.With(zap.String("conversion_id", state.ID))
	log.Info("attempting recovery across all sheets",
		zap.Strings("missing_sections", labels(state.MissingSections())),
		zap.Bool("metadata_complete", state.Meta.Complete()))

	filled := false
	for _, name := range src.SheetNames() {
		g, err := src.Sheet(name)
		if err != nil {
			log.Warn("could not read sheet during recovery", zap.String("sheet", name), zap.Error(err))
			state.Issues.Add(cerrors.WrapError(cerrors.ErrorTypeParseFailure, err).WithSheet(name))
			continue
		}

		log.Debug("scanning sheet",
			zap.String("sheet", name),
			zap.Int("rows", g.RowCount()),
			zap.Int("cols", g.ColCount()))

		var scanned *inventory.State
		err = cerrors.Guard(func() error {
			scanned = c.ScanSheet(g)
			return nil
		})
		if err != nil {
			log.Warn("could not process sheet during recovery", zap.String("sheet", name), zap.Error(err))
			continue
		}

		if inventory.Merge(state, scanned) {
			log.Info("recovered data from sheet", zap.String("sheet", name))
			filled = true
		}
	}

	if filled {
		log.Info("recovery filled missing data")
	} else {
		log.Warn("recovery found nothing new")
	}
	return state, filled
}

// ApplyFilename fills still-empty metadata from the file name and returns how
// many fields it set.
func (c *Converter) ApplyFilename(state *inventory.State, filename string) int {
	if filename == "" || state.Meta.Complete() {
		return 0
	}
	hints := c.extractor.FromFilename(filename)
	n := state.Meta.Fill(inventory.ProjectMetadata{
		Name:               hints.Name,
		RegistrationNumber: hints.RegistrationNumber,
		AsOnDate:           hints.AsOnDate,
	})
	if n > 0 {
		c.logger.Info("metadata filled from filename",
			zap.String("conversion_id", state.ID),
			zap.String("filename", filename),
			zap.Int("fields", n))
	}
	return n
}

// Convert runs the full pipeline: primary pass, recovery when the result is
// incomplete, then the filename fallback.
func (c *Converter) Convert(src grid.Workbook, filename string) (*inventory.State, error) {
	state := inventory.NewState(filename)
	if err := c.process(src, state); err != nil {
		return nil, err
	}

	if !state.Complete() {
		c.Recover(src, state)
	}
	c.guarded(state, "", func() { c.ApplyFilename(state, filename) })

	c.logger.Info("conversion collected",
		zap.String("conversion_id", state.ID),
		zap.String("project", state.Meta.Name),
		zap.String("registration_number", state.Meta.RegistrationNumber),
		zap.String("as_on_date", state.Meta.AsOnDate),
		zap.Int("units", state.TotalUnits()),
		zap.Bool("building_column", state.BuildingColumn))
	return state, nil
}

// Render lays out a collected state.
func (c *Converter) Render(state *inventory.State) *layout.Document {
	return c.renderer.Render(state)
}

func labels(in []rules.SectionLabel) []string {
	out := make([]string, len(in))
	for i, l := range in {
		out[i] = string(l)
	}
	return out
}
