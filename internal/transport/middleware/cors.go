package middleware

import (
	"strings"

	"github.com/rs/cors"

	"github.com/heartmarshall/inflective/internal/config"
)

// CORS returns middleware that handles Cross-Origin Resource Sharing for the
// configured origins, methods and headers. Preflight requests are answered
// without reaching the wrapped handler.
func CORS(cfg config.CORSConfig) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins:   splitList(cfg.AllowedOrigins),
		AllowedMethods:   splitList(cfg.AllowedMethods),
		AllowedHeaders:   splitList(cfg.AllowedHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
	return c.Handler
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
