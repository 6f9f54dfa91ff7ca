package ctxutil

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	languageKey  ctxKey = "language"
)

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LanguageSlot is a mutable holder for the language code a request targets.
// The request logger installs an empty slot; handlers fill it once the
// path has been parsed so the access log can carry the code.
type LanguageSlot struct {
	Code string
}

// WithLanguageSlot stores a language slot in the context.
func WithLanguageSlot(ctx context.Context, slot *LanguageSlot) context.Context {
	return context.WithValue(ctx, languageKey, slot)
}

// SetLanguage records code in the slot carried by ctx, if any.
func SetLanguage(ctx context.Context, code string) {
	if slot, ok := ctx.Value(languageKey).(*LanguageSlot); ok && slot != nil {
		slot.Code = code
	}
}

// LanguageFromCtx returns the language code recorded in ctx.
// Returns an empty string if no slot is present or it was never filled.
func LanguageFromCtx(ctx context.Context) string {
	slot, ok := ctx.Value(languageKey).(*LanguageSlot)
	if !ok || slot == nil {
		return ""
	}
	return slot.Code
}
