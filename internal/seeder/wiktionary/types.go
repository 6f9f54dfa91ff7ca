// Package wiktionary parses Kaikki JSONL dumps into domain entries.
// Pure functions: bytes in, domain structs out. No database dependencies.
//
// Records are validated shallowly: only "word" and "pos" are read at parse
// time. The rest of the record stays in Entry.Payload and is decoded only
// when a caller asks for it (see Forms).
package wiktionary

// maxLineSize is the buffer size for bufio.Scanner (16 MB).
const maxLineSize = 16 << 20

// Stats holds reader statistics for logging.
type Stats struct {
	TotalLines int
	Entries    int
	Bytes      int64
}

// Record field names read by the parser.
const (
	fieldWord   = "word"
	fieldPOS    = "pos"
	fieldForms  = "forms"
	fieldForm   = "form"
	fieldTags   = "tags"
	fieldSource = "source"
)
