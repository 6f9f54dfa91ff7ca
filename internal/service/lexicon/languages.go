package lexicon

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/heartmarshall/inflective/internal/domain"
)

// Install states reported by ListLanguages.
const (
	StatusNotInstalled = "not-installed"
	StatusUpToDate     = "up-to-date"
	StatusOutdated     = "outdated"
)

// LanguageStatus describes one language of the listing.
type LanguageStatus struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Status    string `json:"status"`
}

// Filter selects which languages ListLanguages returns.
type Filter int

const (
	FilterAll Filter = iota
	FilterInstalled
	FilterNotInstalled
)

// ListLanguages merges the installable catalog with the registry, sorted
// by display name in root collation order, so accented names sort with
// their base letter. Registry rows for codes outside the catalog are kept.
func (s *Service) ListLanguages(ctx context.Context, filter Filter) ([]LanguageStatus, error) {
	installed, err := s.registry.ListInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed languages: %w", err)
	}

	byCode := make(map[string]LanguageStatus)
	for _, l := range domain.InstallableLanguages() {
		byCode[l.Code] = LanguageStatus{Code: l.Code, Name: l.Name, Status: StatusNotInstalled}
	}
	for _, rec := range installed {
		status := StatusUpToDate
		if rec.Version.Less(s.build) {
			status = StatusOutdated
		}
		byCode[rec.Code] = LanguageStatus{
			Code:      rec.Code,
			Name:      rec.Name,
			Installed: true,
			Version:   rec.Version.String(),
			Status:    status,
		}
	}

	out := make([]LanguageStatus, 0, len(byCode))
	for _, l := range byCode {
		switch {
		case filter == FilterInstalled && !l.Installed:
			continue
		case filter == FilterNotInstalled && l.Installed:
			continue
		}
		out = append(out, l)
	}

	// A Collator keeps iteration buffers and is not safe for concurrent use.
	names := collate.New(language.Und)
	slices.SortFunc(out, func(a, b LanguageStatus) int {
		return cmp.Or(names.CompareString(a.Name, b.Name), strings.Compare(a.Code, b.Code))
	})
	return out, nil
}
