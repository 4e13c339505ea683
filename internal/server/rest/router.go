// Package rest serves the plain-HTTP side of the server: a health probe and
// a direct export download for browsers.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/server/ratelimit"
	"github.com/dmitrijs2005/applylog/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// TokenVerifier resolves a bearer access token to a user id.
type TokenVerifier interface {
	UserIDFromAccessToken(token string) (string, error)
}

// Exporter writes a rendered export to w.
type Exporter interface {
	WriteTo(ctx context.Context, userID, format string, w io.Writer) (*services.File, error)
}

type ctxKey string

const userIDKey ctxKey = "user_id"

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func NewRouter(l logging.Logger, verifier TokenVerifier, exporter Exporter, limiter *ratelimit.Limiter, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	eh := &exportHandler{exporter: exporter, logger: l}
	r.Route("/api", func(r chi.Router) {
		r.Use(requireAuth(verifier))
		r.Use(rateLimit(limiter))
		r.Get("/export", eh.ServeHTTP)
	})

	return r
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func requireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, common.BearerPrefix) {
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}

			uid, err := verifier.UserIDFromAccessToken(strings.TrimPrefix(h, common.BearerPrefix))
			if err != nil {
				if errors.Is(err, common.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
					return
				}
				writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
		})
	}
}

func rateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(userIDFromContext(r.Context())) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, common.ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type exportHandler struct {
	exporter Exporter
	logger   logging.Logger
}

// ServeHTTP renders into a buffer first so a failed render still gets a
// proper error status.
func (h *exportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var buf bytes.Buffer
	file, err := h.exporter.WriteTo(r.Context(), userID, r.URL.Query().Get("format"), &buf)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrorNotFound):
			writeError(w, http.StatusNotFound, "no jobs to export")
		default:
			h.logger.Error(r.Context(), "export failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
