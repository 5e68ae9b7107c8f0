package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"aidanwoods.dev/go-paseto/v2"
	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/ports"
)

const bearerPrefix = "Bearer "

type PasetoAuthMiddleware struct {
	config     config.AuthConfig
	logger     infrastructure.Logger
	keyService ports.KeyService
}

func NewPasetoAuthMiddleware(
	cfg config.AuthConfig,
	logger infrastructure.Logger,
	keyService ports.KeyService,
) *PasetoAuthMiddleware {
	return &PasetoAuthMiddleware{
		config:     cfg,
		logger:     logger,
		keyService: keyService,
	}
}

func (m *PasetoAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Enabled || m.shouldSkip(r.URL.Path) {
			next.ServeHTTP(w, r)

			return
		}

		token, ok := extractBearerToken(r)
		if !ok {
			m.unauthorized(w, "missing or malformed authorization header")

			return
		}

		publicKey, err := m.keyService.GetPublicKey(r.Context())
		if err != nil {
			m.logger.Error().Err(err).Msg("failed to load PASETO public key")
			m.unauthorized(w, err.Error())

			return
		}

		parser := paseto.NewParser()
		parser.AddRule(paseto.NotExpired())

		parsed, err := parser.ParseV4Public(publicKey, token, nil)
		if err != nil {
			m.logger.Warn().Err(err).Msg("rejected control API token")
			m.unauthorized(w, "invalid token")

			return
		}

		if !m.hasValidIssuer(parsed) {
			m.unauthorized(w, "unknown token issuer")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *PasetoAuthMiddleware) shouldSkip(path string) bool {
	for _, skipPath := range m.config.SkipPaths {
		if path == skipPath || strings.HasSuffix(path, skipPath) {
			return true
		}
	}

	return false
}

func (m *PasetoAuthMiddleware) hasValidIssuer(token *paseto.Token) bool {
	if len(m.config.ValidIssuers) == 0 {
		return true
	}

	issuer, err := token.GetIssuer()
	if err != nil {
		return false
	}

	for _, valid := range m.config.ValidIssuers {
		if issuer == valid {
			return true
		}
	}

	return false
}

func (m *PasetoAuthMiddleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", false
	}

	return token, true
}
