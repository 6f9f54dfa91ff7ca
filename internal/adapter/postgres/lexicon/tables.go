package lexicon

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/inflective/internal/domain"
)

// tables holds the quoted relation names of one language.
type tables struct {
	code  string
	types string
	words string
	index string
}

func tablesFor(code string) (tables, error) {
	if err := domain.ValidateLanguageCode(code); err != nil {
		return tables{}, err
	}
	return tables{
		code:  code,
		types: pgx.Identifier{code + "_types"}.Sanitize(),
		words: pgx.Identifier{code + "_words"}.Sanitize(),
		index: pgx.Identifier{code + "_words_word_type_idx"}.Sanitize(),
	}, nil
}

func (t tables) ddl() []string {
	return []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.words),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.types),
		fmt.Sprintf(`CREATE TABLE %s (
			id   SERIAL PRIMARY KEY,
			name TEXT   NOT NULL UNIQUE
		)`, t.types),
		fmt.Sprintf(`CREATE TABLE %s (
			id      BIGSERIAL PRIMARY KEY,
			word    TEXT    NOT NULL,
			type_id INTEGER NOT NULL REFERENCES %s (id),
			content TEXT    NOT NULL
		)`, t.words, t.types),
		fmt.Sprintf(`CREATE INDEX %s ON %s (word, type_id)`, t.index, t.words),
	}
}
