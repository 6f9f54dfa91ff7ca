package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/inflective/internal/service/lexicon"
	"github.com/heartmarshall/inflective/pkg/ctxutil"
)

type lexiconService interface {
	LookupWord(ctx context.Context, code, word string) (json.RawMessage, error)
	Search(ctx context.Context, code, pattern string, limit, offset int) ([]string, error)
	ListLanguages(ctx context.Context, filter lexicon.Filter) ([]lexicon.LanguageStatus, error)
}

// LexiconHandler serves the dictionary read endpoints.
type LexiconHandler struct {
	svc lexiconService
	log *slog.Logger
}

// NewLexiconHandler creates a LexiconHandler.
func NewLexiconHandler(svc lexiconService, logger *slog.Logger) *LexiconHandler {
	return &LexiconHandler{
		svc: svc,
		log: logger.With("handler", "lexicon"),
	}
}

// Languages lists installable and installed languages.
// GET /langs?installed=true|false
func (h *LexiconHandler) Languages(w http.ResponseWriter, r *http.Request) {
	filter := lexicon.FilterAll
	switch v := r.URL.Query().Get("installed"); v {
	case "":
	case "true":
		filter = lexicon.FilterInstalled
	case "false":
		filter = lexicon.FilterNotInstalled
	default:
		writeError(w, http.StatusBadRequest, "installed must be true or false")
		return
	}

	langs, err := h.svc.ListLanguages(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, h.log, "list languages", err)
		return
	}

	writeJSON(w, http.StatusOK, langs)
}

// Word returns every stored entry for a word as a JSON array.
// GET /langs/{lang}/words/{word}
func (h *LexiconHandler) Word(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("lang")
	ctxutil.SetLanguage(r.Context(), code)

	body, err := h.svc.LookupWord(r.Context(), code, r.PathValue("word"))
	if err != nil {
		writeDomainError(w, r, h.log, "lookup word", err)
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}

// Search returns words containing a substring, shortest first, as a plain
// JSON array of strings.
// GET /langs/{lang}/words?like=bieg&limit=20&offset=0
func (h *LexiconHandler) Search(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("lang")
	ctxutil.SetLanguage(r.Context(), code)

	q := r.URL.Query()
	pattern := q.Get("like")
	if pattern == "" {
		writeError(w, http.StatusBadRequest, "like parameter is required")
		return
	}

	limit, ok := intParam(w, q.Get("limit"), "limit", 0)
	if !ok {
		return
	}
	offset, ok := intParam(w, q.Get("offset"), "offset", 0)
	if !ok {
		return
	}

	words, err := h.svc.Search(r.Context(), code, pattern, limit, offset)
	if err != nil {
		writeDomainError(w, r, h.log, "search words", err)
		return
	}

	writeJSON(w, http.StatusOK, words)
}

// intParam parses an optional integer query parameter, writing a 400 on
// failure.
func intParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}
