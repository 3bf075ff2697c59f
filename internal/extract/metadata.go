package extract

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/grid"
)

// ProjectIdentity reads the project name and registration number from the
// first cell containing the certificate sentence. Either value may be empty
// when its pattern does not match that cell; later cells are not consulted.
func (e *Extractor) ProjectIdentity(g *grid.Grid) (name, regNo string, found bool) {
	pos, ok := grid.Find(g, grid.ContainsAny(e.vocab.Metadata.IdentityTrigger))
	if !ok {
		e.logger.Warn("project identity sentence not found", zap.String("sheet", sheetName(g)))
		return "", "", false
	}

	text := g.Cell(pos.Row, pos.Col).Value()
	if m := e.namePattern.FindStringSubmatch(text); len(m) > 1 {
		name = strings.TrimSpace(m[1])
	}
	if m := e.regNoPattern.FindStringSubmatch(text); len(m) > 1 {
		regNo = strings.TrimSpace(m[1])
	}

	e.logger.Info("project identity extracted",
		zap.String("sheet", sheetName(g)),
		zap.Int("row", pos.Row),
		zap.String("name", name),
		zap.String("registration_number", regNo))
	return name, regNo, true
}

// AsOnDate returns the date text from the first cell that mentions every
// as-on keyword and matches the as-on pattern.
func (e *Extractor) AsOnDate(g *grid.Grid) string {
	for _, pos := range grid.FindAll(g, grid.ContainsAll(e.vocab.Metadata.AsOnKeywords...)) {
		text := g.Cell(pos.Row, pos.Col).Value()
		m := e.asOnPattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		date := strings.TrimSpace(m[1])
		e.logger.Info("as-on date extracted",
			zap.String("sheet", sheetName(g)),
			zap.Int("row", pos.Row),
			zap.String("date", date))
		return date
	}

	e.logger.Warn("as-on date not found", zap.String("sheet", sheetName(g)))
	return ""
}

// FilenameHints are metadata values recovered from a file name.
type FilenameHints struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	AsOnDate           string `json:"as_on_date"`
}

// FromFilename recovers metadata from a file name. The project name is the
// text before the registration token, else before the date token, else the
// whole base name, with runs of underscores and hyphens turned into spaces.
func (e *Extractor) FromFilename(filename string) FilenameHints {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}

	var hints FilenameHints
	name := base

	regLoc := e.fileRegNo.FindStringSubmatchIndex(base)
	if regLoc != nil {
		hints.RegistrationNumber = firstGroup(base, regLoc)
	}
	dateLoc := e.fileDate.FindStringSubmatchIndex(base)
	if dateLoc != nil {
		hints.AsOnDate = firstGroup(base, dateLoc)
	}

	switch {
	case regLoc != nil:
		name = base[:regLoc[0]]
	case dateLoc != nil:
		name = base[:dateLoc[0]]
	}
	hints.Name = strings.TrimSpace(e.fileSeparators.ReplaceAllString(strings.TrimSpace(name), " "))

	e.logger.Debug("filename hints",
		zap.String("filename", filename),
		zap.String("name", hints.Name),
		zap.String("registration_number", hints.RegistrationNumber),
		zap.String("as_on_date", hints.AsOnDate))
	return hints
}

// firstGroup returns the first capture group of a match, or the whole match
// when the group did not participate.
func firstGroup(s string, loc []int) string {
	if len(loc) >= 4 && loc[2] >= 0 {
		return s[loc[2]:loc[3]]
	}
	return s[loc[0]:loc[1]]
}

func sheetName(g *grid.Grid) string {
	if g == nil {
		return ""
	}
	return g.Name
}
