package domain

// Grammar-table provenance values a form must carry to be treated as a
// machine-derived inflection.
const (
	FormSourceDeclension  = "Declension"
	FormSourceConjugation = "Conjugation"
)

// Tags appended to every sense of a synthesized stub entry.
const (
	TagFormOf        = "form-of"
	TagAutoGenerated = "auto-generated"
)

// Entry is one word-sense record of a language. Payload holds the complete
// record exactly as it appeared in the export and is decoded on demand only.
type Entry struct {
	Word         string
	PartOfSpeech string
	Payload      []byte
}

// Form is one inflected spelling listed inside an entry's payload.
type Form struct {
	Surface string
	Tags    []string
	Source  string
}

// IsTableDerived reports whether the form comes from a declension or
// conjugation table.
func (f Form) IsTableDerived() bool {
	return f.Source == FormSourceDeclension || f.Source == FormSourceConjugation
}

// StubPayload is the payload written for a synthesized form-of entry.
type StubPayload struct {
	POS    string      `json:"pos"`
	Word   string      `json:"word"`
	Senses []StubSense `json:"senses"`
}

// StubSense is one sense of a synthesized entry, pointing back at the
// headword the inflected spelling belongs to.
type StubSense struct {
	FormOf  []FormOfRef `json:"form_of"`
	Glosses []string    `json:"glosses"`
	Tags    []string    `json:"tags"`
}

// FormOfRef references the headword of a form-of sense.
type FormOfRef struct {
	Word string `json:"word"`
}
