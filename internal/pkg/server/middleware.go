package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func LoggingMiddleware(next http.Handler) http.Handler {
	logger := zap.L()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI, zap.String("method", r.Method))
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware validates a bearer JWT signed with the shared HS256 secret.
// An empty secret disables authentication entirely, which keeps parity with
// sensors deployed before tokens were introduced.
func AuthMiddleware(secret string, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token"})
			return
		}
		if _, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		}); err != nil {
			zap.L().Warn("rejected ingest request", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
