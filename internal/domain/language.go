package domain

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Language is an installable language of the Kaikki export.
type Language struct {
	Code string // table prefix, e.g. "polish"
	Name string // display name, e.g. "Polish"
	// ExportName is the directory and file suffix used by kaikki.org.
	ExportName string
}

// LanguageRecord is a row of the version registry.
type LanguageRecord struct {
	Code        string
	Name        string
	Version     Version
	InstalledAt time.Time
}

var languageCodeRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// ValidateLanguageCode checks that code is usable as a table name prefix.
func ValidateLanguageCode(code string) error {
	if !languageCodeRe.MatchString(code) {
		return fmt.Errorf("language code %q: %w", code, ErrValidation)
	}
	return nil
}

// installable is built once and never mutated; callers get copies.
var installable = []Language{
	{Code: "czech", Name: "Czech", ExportName: "Czech"},
	{Code: "french", Name: "French", ExportName: "French"},
	{Code: "german", Name: "German", ExportName: "German"},
	{Code: "italian", Name: "Italian", ExportName: "Italian"},
	{Code: "latin", Name: "Latin", ExportName: "Latin"},
	{Code: "polish", Name: "Polish", ExportName: "Polish"},
	{Code: "portuguese", Name: "Portuguese", ExportName: "Portuguese"},
	{Code: "russian", Name: "Russian", ExportName: "Russian"},
	{Code: "spanish", Name: "Spanish", ExportName: "Spanish"},
	{Code: "ukrainian", Name: "Ukrainian", ExportName: "Ukrainian"},
}

// InstallableLanguages returns the static catalog sorted by display name.
func InstallableLanguages() []Language {
	out := slices.Clone(installable)
	slices.SortFunc(out, func(a, b Language) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// LookupLanguage returns the installable language with the given code.
func LookupLanguage(code string) (Language, error) {
	for _, l := range installable {
		if l.Code == code {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("language %q: %w", code, ErrUnknownLanguage)
}

// Version is a major.minor.patch build version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "1.2.3", tolerating a leading "v" and any
// pre-release or build suffix ("1.2.3-rc1" -> 1.2.3).
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(raw, "-+"); i >= 0 {
		raw = raw[:i]
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("version %q: expected major.minor.patch: %w", s, ErrValidation)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("version %q: invalid component %q: %w", s, p, ErrValidation)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 comparing v with other component-wise.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmp.Compare(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmp.Compare(v.Minor, other.Minor)
	default:
		return cmp.Compare(v.Patch, other.Patch)
	}
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }
