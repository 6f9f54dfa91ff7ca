package wiktionary

import (
	"slices"

	"github.com/heartmarshall/inflective/internal/domain"
)

// ExtractTypes returns the distinct part-of-speech tags of entries, compared
// exactly and case-sensitively. The result is sorted so that catalog ids are
// assigned in a stable order.
func ExtractTypes(entries []domain.Entry) []string {
	seen := make(map[string]struct{})
	var types []string
	for i := range entries {
		pos := entries[i].PartOfSpeech
		if _, ok := seen[pos]; ok {
			continue
		}
		seen[pos] = struct{}{}
		types = append(types, pos)
	}
	slices.Sort(types)
	return types
}
