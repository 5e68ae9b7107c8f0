package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMetrics struct {
	recordedMethod       string
	recordedPath         string
	recordedStatusCode   int
	recordedDuration     time.Duration
	recordedRequestSize  int64
	recordedResponseSize int64
}

func (m *mockMetrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	m.recordedMethod = method
	m.recordedPath = path
	m.recordedStatusCode = statusCode
	m.recordedDuration = duration
	m.recordedRequestSize = requestSize
	m.recordedResponseSize = responseSize
}

func (m *mockMetrics) RecordFixCollected(ctx context.Context, source string, success bool) {
}

func (m *mockMetrics) RecordDelivery(ctx context.Context, transport string, duration time.Duration, success bool) {
}

func (m *mockMetrics) RecordQueueDepth(ctx context.Context, depth int64) {
}

func (m *mockMetrics) RecordSessionEvent(ctx context.Context, event string) {
}

func (m *mockMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (m *mockMetrics) Shutdown(ctx context.Context) error {
	return nil
}

func TestMetricsMiddleware_Middleware(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name               string
		method             string
		path               string
		statusCode         int
		responseBody       string
		expectedStatusCode int
	}{
		{
			name:               "records successful status read",
			method:             "GET",
			path:               "/v1/tracking",
			statusCode:         http.StatusOK,
			responseBody:       "{\"active\":false}",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "records tracking start",
			method:             "POST",
			path:               "/v1/tracking",
			statusCode:         http.StatusCreated,
			responseBody:       "{\"session_id\":\"123\"}",
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:               "records bad request error",
			method:             "POST",
			path:               "/v1/tracking",
			statusCode:         http.StatusBadRequest,
			responseBody:       "bad request",
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "records internal server error",
			method:             "DELETE",
			path:               "/v1/tracking",
			statusCode:         http.StatusInternalServerError,
			responseBody:       "error",
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mock := &mockMetrics{}
			metricsMiddleware := NewMetricsMiddleware(mock)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.responseBody))
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()

			middleware := metricsMiddleware.Middleware(handler)
			middleware.ServeHTTP(rec, req)

			require.Equal(t, tc.expectedStatusCode, rec.Code)

			assert.Equal(t, tc.method, mock.recordedMethod)
			assert.Equal(t, tc.path, mock.recordedPath)
			assert.Equal(t, tc.statusCode, mock.recordedStatusCode)
			assert.Equal(t, int64(len(tc.responseBody)), mock.recordedResponseSize)
			assert.Positive(t, mock.recordedDuration)
		})
	}
}
