// Package extract locates unit tables and project metadata inside Form 3
// sheets. Nothing here touches the filesystem; every operation works on a
// grid.Grid and returns empty results rather than errors when data is absent.
package extract

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/rules"
)

// Extractor applies a Vocabulary to sheets.
type Extractor struct {
	vocab  *rules.Vocabulary
	logger *zap.Logger

	namePattern  *regexp.Regexp
	regNoPattern *regexp.Regexp
	asOnPattern  *regexp.Regexp

	fileRegNo      *regexp.Regexp
	fileDate       *regexp.Regexp
	fileSeparators *regexp.Regexp
}

// New creates an Extractor. A nil vocabulary selects rules.Default() and a
// nil logger discards output.
func New(vocab *rules.Vocabulary, logger *zap.Logger) (*Extractor, error) {
	if vocab == nil {
		vocab = rules.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Extractor{vocab: vocab, logger: logger}

	var err error
	compile := func(name, pattern string) *regexp.Regexp {
		if err != nil {
			return nil
		}
		var re *regexp.Regexp
		re, err = regexp.Compile(pattern)
		if err != nil {
			err = fmt.Errorf("invalid %s pattern: %w", name, err)
		}
		return re
	}

	e.namePattern = compile("project name", vocab.Metadata.NamePattern)
	e.regNoPattern = compile("registration number", vocab.Metadata.RegNoPattern)
	e.asOnPattern = compile("as-on date", vocab.Metadata.AsOnPattern)
	e.fileRegNo = compile("filename registration number", vocab.Filename.RegNoPattern)
	e.fileDate = compile("filename date", vocab.Filename.DatePattern)
	e.fileSeparators = compile("filename separator", vocab.Filename.Separators)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// Vocabulary returns the rules in use.
func (e *Extractor) Vocabulary() *rules.Vocabulary {
	return e.vocab
}
