package wiktionary

import (
	"testing"

	"github.com/heartmarshall/inflective/internal/domain"
)

func TestExtractTypes_Dedup(t *testing.T) {
	t.Parallel()

	entries := []domain.Entry{
		{Word: "a", PartOfSpeech: "noun"},
		{Word: "b", PartOfSpeech: "noun"},
		{Word: "c", PartOfSpeech: "verb"},
	}

	got := ExtractTypes(entries)
	if len(got) != 2 || got[0] != "noun" || got[1] != "verb" {
		t.Errorf("ExtractTypes = %v, want [noun verb]", got)
	}
}

func TestExtractTypes_CaseSensitive(t *testing.T) {
	t.Parallel()

	entries := []domain.Entry{
		{PartOfSpeech: "noun"},
		{PartOfSpeech: "Noun"},
		{PartOfSpeech: "noun "},
	}

	if got := ExtractTypes(entries); len(got) != 3 {
		t.Errorf("ExtractTypes = %q, want 3 distinct tags", got)
	}
}

func TestExtractTypes_Empty(t *testing.T) {
	t.Parallel()

	if got := ExtractTypes(nil); len(got) != 0 {
		t.Errorf("ExtractTypes(nil) = %v, want empty", got)
	}
}
