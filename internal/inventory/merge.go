package inventory

import "github.com/a3tai/circular29/internal/rules"

// Merge folds b into a and reports whether anything previously missing in a
// was filled. Metadata is first-writer-wins. A section of a keeps its records
// when it has any; otherwise b's records are adopted. The building flag of
// every section a lacked is ORed into the document flag, whether or not b
// had records for it.
//
// Merge(a, empty) leaves a unchanged.
func Merge(a, b *State) bool {
	if a == nil || b == nil {
		return false
	}

	filled := a.Meta.Fill(b.Meta) > 0

	for _, label := range rules.ExtractionOrder {
		current := a.Section(label)
		if len(current.Records) > 0 {
			continue
		}
		incoming := b.Section(label)
		a.BuildingColumn = a.BuildingColumn || incoming.BuildingColumn
		if len(incoming.Records) > 0 {
			current.Records = incoming.Records
			current.BuildingColumn = incoming.BuildingColumn
			filled = true
		}
	}

	if b.Issues != nil && a.Issues != nil && b.Issues != a.Issues {
		a.Issues.Extend(b.Issues)
	}
	return filled
}
