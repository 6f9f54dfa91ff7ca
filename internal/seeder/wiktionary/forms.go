package wiktionary

import (
	"github.com/tidwall/gjson"

	"github.com/heartmarshall/inflective/internal/domain"
)

// Forms decodes the "forms" list of an entry's payload.
//
// A missing or non-array "forms" field yields no forms. Elements that fail
// shape validation are skipped and reported in rejected as *domain.FormError;
// they never fail the entry.
func Forms(e domain.Entry) (forms []domain.Form, rejected []error) {
	list := gjson.GetBytes(e.Payload, fieldForms)
	if !list.IsArray() {
		return nil, nil
	}

	idx := 0
	list.ForEach(func(_, v gjson.Result) bool {
		f, err := decodeForm(v)
		if err != nil {
			rejected = append(rejected, &domain.FormError{Index: idx, Reason: err.Error()})
		} else {
			forms = append(forms, f)
		}
		idx++
		return true
	})

	return forms, rejected
}

// TableForms returns only the forms that come from a declension or
// conjugation table.
func TableForms(e domain.Entry) (forms []domain.Form, rejected []error) {
	all, rejected := Forms(e)
	for _, f := range all {
		if f.IsTableDerived() {
			forms = append(forms, f)
		}
	}
	return forms, rejected
}

type shapeError string

func (s shapeError) Error() string { return string(s) }

func decodeForm(v gjson.Result) (domain.Form, error) {
	if !v.IsObject() {
		return domain.Form{}, shapeError("not an object")
	}

	surface := v.Get(fieldForm)
	if surface.Type != gjson.String || surface.String() == "" {
		return domain.Form{}, shapeError(`"form" is missing or not a non-empty string`)
	}

	f := domain.Form{Surface: surface.String()}

	if tags := v.Get(fieldTags); tags.Exists() {
		if !tags.IsArray() {
			return domain.Form{}, shapeError(`"tags" is not an array`)
		}
		var bad bool
		tags.ForEach(func(_, t gjson.Result) bool {
			if t.Type != gjson.String {
				bad = true
				return false
			}
			f.Tags = append(f.Tags, t.String())
			return true
		})
		if bad {
			return domain.Form{}, shapeError(`"tags" contains a non-string element`)
		}
	}

	if src := v.Get(fieldSource); src.Exists() {
		if src.Type != gjson.String {
			return domain.Form{}, shapeError(`"source" is not a string`)
		}
		f.Source = src.String()
	}

	return f, nil
}
