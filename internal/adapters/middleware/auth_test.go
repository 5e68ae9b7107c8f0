package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto/v2"
	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/stretchr/testify/require"
)

const (
	testRequestIDKey      = ctxKey("request_id")
	testRequestIDValue    = "test-123"
	testIssuer            = "test-issuer"
	testToken             = "v4.public.test"
	testHealthPath        = "/health"
	testMetricsPath       = "/metrics"
	testAPIPath           = "/v1/tracking"
	authHeaderFormat      = "Bearer %s"
	errKeyRetrievalFailed = "key retrieval failed"
)

type ctxKey string

// fakeKeyService lets tests control key retrieval behavior.
type fakeKeyService struct {
	getPublicKey func(ctx context.Context) (paseto.V4AsymmetricPublicKey, error)
}

func (f *fakeKeyService) GetPublicKey(ctx context.Context) (paseto.V4AsymmetricPublicKey, error) {
	return f.getPublicKey(ctx)
}

func (f *fakeKeyService) RefreshKey(_ context.Context) error {
	return nil
}

func TestPasetoAuthMiddleware_ContextPropagation(t *testing.T) {
	t.Parallel()

	logger := infrastructure.NewTestLogger()

	cases := []struct {
		name         string
		setupContext func() (context.Context, context.CancelFunc)
		setupKeyFunc func(t *testing.T, ctx context.Context) func(context.Context) (paseto.V4AsymmetricPublicKey, error)
	}{
		{
			name: "context cancellation propagates to key service",
			setupContext: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()

				return ctx, cancel
			},
			setupKeyFunc: func(t *testing.T, _ context.Context) func(context.Context) (paseto.V4AsymmetricPublicKey, error) {
				return func(callCtx context.Context) (paseto.V4AsymmetricPublicKey, error) {
					require.NotNil(t, callCtx.Err(), "expected context to be cancelled")

					return paseto.V4AsymmetricPublicKey{}, callCtx.Err()
				}
			},
		},
		{
			name: "context timeout propagates to key service",
			setupContext: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 1*time.Millisecond)
			},
			setupKeyFunc: func(t *testing.T, _ context.Context) func(context.Context) (paseto.V4AsymmetricPublicKey, error) {
				return func(callCtx context.Context) (paseto.V4AsymmetricPublicKey, error) {
					<-time.After(10 * time.Millisecond)

					require.NotNil(t, callCtx.Err(), "expected context to be timed out")

					return paseto.V4AsymmetricPublicKey{}, callCtx.Err()
				}
			},
		},
		{
			name: "context values propagate to key service",
			setupContext: func() (context.Context, context.CancelFunc) {
				ctx := context.WithValue(context.Background(), testRequestIDKey, testRequestIDValue)

				return ctx, func() {}
			},
			setupKeyFunc: func(t *testing.T, _ context.Context) func(context.Context) (paseto.V4AsymmetricPublicKey, error) {
				return func(callCtx context.Context) (paseto.V4AsymmetricPublicKey, error) {
					requestID := callCtx.Value(testRequestIDKey)
					require.Equal(t, testRequestIDValue, requestID)

					return paseto.V4AsymmetricPublicKey{}, errors.New(errKeyRetrievalFailed)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := tc.setupContext()
			defer cancel()

			keyService := &fakeKeyService{
				getPublicKey: tc.setupKeyFunc(t, ctx),
			}

			cfg := config.AuthConfig{
				Enabled:      true,
				SkipPaths:    []string{testHealthPath},
				ValidIssuers: []string{testIssuer},
			}

			authMiddleware := NewPasetoAuthMiddleware(cfg, logger, keyService)

			req := httptest.NewRequest(http.MethodGet, testAPIPath, nil)
			req = req.WithContext(ctx)
			req.Header.Set("Authorization", fmt.Sprintf(authHeaderFormat, testToken))

			rec := httptest.NewRecorder()

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})

			authMiddleware.Middleware(next).ServeHTTP(rec, req)

			require.False(t, nextCalled, "handler must not run when key retrieval fails")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestPasetoAuthMiddleware_SkipPaths(t *testing.T) {
	t.Parallel()

	logger := infrastructure.NewTestLogger()

	cfg := config.AuthConfig{
		Enabled:      true,
		SkipPaths:    []string{testHealthPath, testMetricsPath},
		ValidIssuers: []string{testIssuer},
	}

	keyService := &fakeKeyService{
		getPublicKey: func(ctx context.Context) (paseto.V4AsymmetricPublicKey, error) {
			t.Fatal("key service must not be called for skipped paths")

			return paseto.V4AsymmetricPublicKey{}, nil
		},
	}

	authMiddleware := NewPasetoAuthMiddleware(cfg, logger, keyService)

	for _, path := range []string{testHealthPath, testMetricsPath} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		nextCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
			w.WriteHeader(http.StatusOK)
		})

		authMiddleware.Middleware(next).ServeHTTP(rec, req)

		require.True(t, nextCalled, "handler must run for skipped path %s", path)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestPasetoAuthMiddleware_Disabled(t *testing.T) {
	t.Parallel()

	logger := infrastructure.NewTestLogger()

	authMiddleware := NewPasetoAuthMiddleware(config.AuthConfig{Enabled: false}, logger, &fakeKeyService{
		getPublicKey: func(ctx context.Context) (paseto.V4AsymmetricPublicKey, error) {
			t.Fatal("key service must not be called when auth is disabled")

			return paseto.V4AsymmetricPublicKey{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, testAPIPath, nil)
	rec := httptest.NewRecorder()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	authMiddleware.Middleware(next).ServeHTTP(rec, req)

	require.True(t, nextCalled)
}

func TestPasetoAuthMiddleware_MissingToken(t *testing.T) {
	t.Parallel()

	logger := infrastructure.NewTestLogger()

	authMiddleware := NewPasetoAuthMiddleware(config.AuthConfig{Enabled: true}, logger, &fakeKeyService{
		getPublicKey: func(ctx context.Context) (paseto.V4AsymmetricPublicKey, error) {
			return paseto.V4AsymmetricPublicKey{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, testAPIPath, nil)
	rec := httptest.NewRecorder()

	authMiddleware.Middleware(http.NotFoundHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasetoAuthMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	logger := infrastructure.NewTestLogger()

	secretKey := paseto.NewV4AsymmetricSecretKey()
	publicKey := secretKey.Public()

	token := paseto.NewToken()
	token.SetIssuer(testIssuer)
	token.SetIssuedAt(time.Now())
	token.SetExpiration(time.Now().Add(time.Hour))

	signed := token.V4Sign(secretKey, nil)

	cfg := config.AuthConfig{
		Enabled:      true,
		ValidIssuers: []string{testIssuer},
	}

	authMiddleware := NewPasetoAuthMiddleware(cfg, logger, &fakeKeyService{
		getPublicKey: func(ctx context.Context) (paseto.V4AsymmetricPublicKey, error) {
			return publicKey, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, testAPIPath, nil)
	req.Header.Set("Authorization", fmt.Sprintf(authHeaderFormat, signed))

	rec := httptest.NewRecorder()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})

	authMiddleware.Middleware(next).ServeHTTP(rec, req)

	require.True(t, nextCalled, "handler must run for a valid token")
	require.Equal(t, http.StatusOK, rec.Code)
}
