package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"vidbatch/logger"
	"vidbatch/models"
	"vidbatch/utils"
)

// verifyToken verifies the bearer token of the request and returns its claims
func verifyToken(r *http.Request) (*models.APIClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	return utils.VerifyAPIToken(token, utils.VerifyConfig{
		SecretKey:      []byte(settings.JWTSecret),
		ExpectedIssuer: settings.JWTIssuer,
		ClockSkew:      30 * time.Second,
	})
}

// requireToken rejects mutating requests without a valid token. GET and HEAD
// pass through, as does everything when no secret is configured.
func requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if settings.JWTSecret == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}
		claims, err := verifyToken(r)
		if err != nil {
			logger.Warnf("Rejected %s %s from %s: %v", r.Method, r.URL.Path, r.RemoteAddr, err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		logger.Debugf("Token accepted for subject %q", claims.Subject)
		next(w, r)
	}
}
