package wiktionary

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/heartmarshall/inflective/internal/domain"
)

// ParseRecord turns one line of the export into an Entry.
//
// The line must be a single JSON object with string fields "word" and
// "pos". Anything else fails with a *domain.MalformedRecordError. The
// returned Entry owns a copy of the line.
func ParseRecord(line []byte) (domain.Entry, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return domain.Entry{}, &domain.MalformedRecordError{Reason: "blank line"}
	}
	if !gjson.ValidBytes(trimmed) {
		return domain.Entry{}, &domain.MalformedRecordError{Reason: "not valid JSON"}
	}

	root := gjson.ParseBytes(trimmed)
	if !root.IsObject() {
		return domain.Entry{}, &domain.MalformedRecordError{Reason: "not a JSON object"}
	}

	word, err := requiredString(root, fieldWord)
	if err != nil {
		return domain.Entry{}, err
	}
	pos, err := requiredString(root, fieldPOS)
	if err != nil {
		return domain.Entry{}, err
	}

	return domain.Entry{
		Word:         word,
		PartOfSpeech: pos,
		Payload:      bytes.Clone(trimmed),
	}, nil
}

func requiredString(root gjson.Result, field string) (string, error) {
	v := root.Get(field)
	if !v.Exists() {
		return "", domain.NewMalformedRecordError(field, "is missing")
	}
	if v.Type != gjson.String {
		return "", domain.NewMalformedRecordError(field, "is not a string")
	}
	return v.String(), nil
}

// Scan streams JSONL records from r and calls fn for each parsed entry.
// The first malformed line aborts the scan; its 1-based line number is
// recorded in the returned error.
func Scan(r io.Reader, fn func(domain.Entry) error) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		stats.TotalLines++
		line := scanner.Bytes()
		stats.Bytes += int64(len(line)) + 1

		entry, err := ParseRecord(line)
		if err != nil {
			var mre *domain.MalformedRecordError
			if errors.As(err, &mre) {
				mre.Line = stats.TotalLines
			}
			return stats, err
		}

		if err := fn(entry); err != nil {
			return stats, err
		}
		stats.Entries++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scanner error at line %d: %w", stats.TotalLines+1, err)
	}

	return stats, nil
}

// ReadAll parses every record of r into memory.
func ReadAll(r io.Reader) ([]domain.Entry, Stats, error) {
	var entries []domain.Entry
	stats, err := Scan(r, func(e domain.Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return entries, stats, nil
}

// ParseFile opens a JSONL export and parses it with ReadAll.
func ParseFile(filePath string) ([]domain.Entry, Stats, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ReadAll(f)
}
