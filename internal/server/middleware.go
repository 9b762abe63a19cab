package server

import (
	"context"
	"net/http"
	"time"

	"portfolio/internal/db"
	"portfolio/internal/types"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/pkg/errors"
)

type key int

const (
	adminKey key = iota
)

// Authenticator runs after jwtauth.Verifier and turns its verdict into the
// JSON error envelope, then loads the admin named by the token.
func (s *Server) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		switch {
		case errors.Is(err, jwtauth.ErrNoTokenFound):
			s.fail(w, r, types.Unauthorized("No authentication token provided"))
			return
		case errors.Is(err, jwtauth.ErrExpired):
			s.fail(w, r, types.Unauthorized("Authentication token has expired"))
			return
		case err != nil || token == nil:
			s.fail(w, r, types.Unauthorized("Invalid authentication token"))
			return
		}

		adminID, _ := claims["adminId"].(string)
		admin, err := s.auth.Admin(adminID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), adminKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminFrom(r *http.Request) *db.Admin {
	admin, _ := r.Context().Value(adminKey).(*db.Admin)
	return admin
}

// securityHeaders sets baseline hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	headers := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "SAMEORIGIN",
		"X-DNS-Prefetch-Control":       "off",
		"X-Download-Options":           "noopen",
		"Referrer-Policy":              "no-referrer",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "cross-origin",
		"X-XSS-Protection":             "0",
	}
	h := next
	for k, v := range headers {
		h = middleware.SetHeader(k, v)(h)
	}
	return h
}

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (s *Server) rateLimit(max int, window time.Duration, message string) func(http.Handler) http.Handler {
	return httprate.Limit(max, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.fail(w, r, types.TooManyRequests(message))
		}),
	)
}
