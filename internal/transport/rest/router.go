package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/inflective/internal/config"
	"github.com/heartmarshall/inflective/internal/transport/middleware"
)

// RouterDeps holds what NewRouter wires together. SearchLimiter may be nil
// to leave search unthrottled.
type RouterDeps struct {
	Logger        *slog.Logger
	Health        *HealthHandler
	Lexicon       *LexiconHandler
	SearchLimiter *middleware.RateLimiter
	CORS          config.CORSConfig
}

// NewRouter registers every endpoint and wraps the mux in the common
// middleware chain.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", d.Health.Live)
	mux.HandleFunc("GET /ready", d.Health.Ready)
	mux.HandleFunc("GET /health", d.Health.Health)

	var throttle middleware.Middleware
	if d.SearchLimiter != nil {
		throttle = d.SearchLimiter.Limit()
	}

	mux.HandleFunc("GET /langs", d.Lexicon.Languages)
	mux.HandleFunc("GET /langs/{lang}/words/{word}", d.Lexicon.Word)
	mux.Handle("GET /langs/{lang}/words", middleware.Chain(throttle)(http.HandlerFunc(d.Lexicon.Search)))

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(d.CORS),
	)(mux)
}
