package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aidanwoods.dev/go-paseto/v2"
	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/ports"
)

const (
	vaultKeyField        = "public_key"
	vaultKeyVersionField = "version"
)

type (
	// PasetoKeyService manages the PASETO public key that guards the control
	// API, loading it from Vault when enabled with a local fallback key.
	PasetoKeyService struct {
		config          config.AuthConfig
		secretsRepo     ports.SecretsRepository
		logger          Logger
		cachedKey       *paseto.V4AsymmetricPublicKey
		cachedKeyExpiry time.Time
		mu              sync.RWMutex
	}
)

func NewPasetoKeyService(
	cfg config.AuthConfig,
	secretsRepo ports.SecretsRepository,
	logger Logger,
) *PasetoKeyService {
	return &PasetoKeyService{
		config:      cfg,
		secretsRepo: secretsRepo,
		logger:      logger,
	}
}

// GetPublicKey retrieves the PASETO public key, using cache when valid or
// loading from Vault.
func (s *PasetoKeyService) GetPublicKey(ctx context.Context) (paseto.V4AsymmetricPublicKey, error) {
	if !s.config.UseVaultKeys {
		return s.loadFallbackKey()
	}

	s.mu.RLock()
	if s.cachedKey != nil && time.Now().Before(s.cachedKeyExpiry) {
		key := *s.cachedKey
		s.mu.RUnlock()

		return key, nil
	}
	s.mu.RUnlock()

	return s.loadKeyFromVault(ctx)
}

// RefreshKey forces a refresh of the cached key from Vault.
func (s *PasetoKeyService) RefreshKey(ctx context.Context) error {
	s.logger.Info().Msg("forcing PASETO key refresh from Vault")

	_, err := s.loadKeyFromVault(ctx)

	return err
}

func (s *PasetoKeyService) loadKeyFromVault(ctx context.Context) (paseto.V4AsymmetricPublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if s.cachedKey != nil && time.Now().Before(s.cachedKeyExpiry) {
		return *s.cachedKey, nil
	}

	publicKeyHex, keyVersion, err := s.readKeyFromVault(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load PASETO key from Vault, using fallback key")

		return s.loadFallbackKey()
	}

	publicKey, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicKeyHex)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("key_version", keyVersion).
			Msg("failed to parse PASETO public key from Vault, using fallback key")

		return s.loadFallbackKey()
	}

	s.cachedKey = &publicKey
	s.cachedKeyExpiry = time.Now().Add(s.config.KeyCacheTTL)

	s.logger.Info().
		Str("key_version", keyVersion).
		Time("expiry", s.cachedKeyExpiry).
		Msg("loaded and cached PASETO public key from Vault")

	return publicKey, nil
}

func (s *PasetoKeyService) readKeyFromVault(ctx context.Context) (publicKeyHex, keyVersion string, err error) {
	secret, err := s.secretsRepo.GetSecrets(ctx, s.config.PasetoKeyPath)
	if err != nil {
		return "", "", err
	}

	if secret == nil || secret.Data == nil {
		return "", "", fmt.Errorf("vault secret data is nil")
	}

	// Vault KV v2 wraps data in a "data" field.
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", "", fmt.Errorf("vault secret data field is not a map")
	}

	publicKeyHex, ok = data[vaultKeyField].(string)
	if !ok || publicKeyHex == "" {
		return "", "", fmt.Errorf("%s field not found or empty in Vault", vaultKeyField)
	}

	keyVersion, _ = data[vaultKeyVersionField].(string)
	if keyVersion == "" {
		keyVersion = "unknown"
	}

	return publicKeyHex, keyVersion, nil
}

func (s *PasetoKeyService) loadFallbackKey() (paseto.V4AsymmetricPublicKey, error) {
	publicKey, err := paseto.NewV4AsymmetricPublicKeyFromHex(s.config.FallbackKeyHex)
	if err != nil {
		return paseto.V4AsymmetricPublicKey{}, fmt.Errorf("failed to create fallback PASETO public key: %w", err)
	}

	s.logger.Warn().Msg("using fallback PASETO public key")

	return publicKey, nil
}
