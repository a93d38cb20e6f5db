package healthcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Handler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	testCases := []struct {
		name         string
		method       string
		path         string
		probe        Probe
		expectedCode int
		expectedBody string
	}{
		{
			name:         "healthy",
			method:       http.MethodGet,
			path:         "/health",
			probe:        func(ctx context.Context) error { return nil },
			expectedCode: http.StatusOK,
			expectedBody: "ok\n",
		},
		{
			name:         "failing probe",
			method:       http.MethodGet,
			path:         "/health",
			probe:        func(ctx context.Context) error { return errors.New("connection refused") },
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "redis: connection refused\n",
		},
		{
			name:         "other path passes through",
			method:       http.MethodGet,
			path:         "/api/orders",
			probe:        func(ctx context.Context) error { return errors.New("unused") },
			expectedCode: http.StatusTeapot,
		},
		{
			name:         "post to health passes through",
			method:       http.MethodPost,
			path:         "/health",
			probe:        func(ctx context.Context) error { return nil },
			expectedCode: http.StatusTeapot,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hc := New(time.Second)
			hc.Register("redis", tc.probe)

			rec := httptest.NewRecorder()
			hc.Handler(next).ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedBody != "" {
				assert.Equal(t, tc.expectedBody, rec.Body.String())
			}
		})
	}
}
