package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/airline/config"
	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/metrics"
	"github.com/Domenick1991/airline/internal/service/accounts"
	"github.com/Domenick1991/airline/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAccounts resolves fixed tokens; the rest of the interface is unused here.
type stubAccounts struct {
	accounts.AccountUseCase
	sessions map[string]*domain.Session
}

func (s *stubAccounts) ResolveSession(_ context.Context, token string) (*domain.Session, error) {
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, domain.ErrInvalidCredentials
}

type stubFlights struct {
	flights.FlightUseCase
}

func (stubFlights) Origins(context.Context) ([]string, error) {
	return []string{"ATH", "TLV"}, nil
}

func newTestRouter(checks map[string]HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{HTTP: config.HTTPConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
	return NewRouter(cfg, Services{
		Flights:  stubFlights{},
		Accounts: &stubAccounts{sessions: map[string]*domain.Session{
			"customer-token": {Token: "customer-token", Kind: domain.SessionCustomer, Email: "dana@example.com"},
		}},
		Metrics: metrics.New(),
		Checks:  checks,
	})
}

func serve(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoute(t *testing.T) {
	router := newTestRouter(nil)

	w := serve(router, http.MethodGet, "/api/routes/origins", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["ATH","TLV"]`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_SessionGroups(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name       string
		target     string
		token      string
		wantStatus int
	}{
		{name: "Me without session", target: "/api/me", wantStatus: http.StatusUnauthorized},
		{name: "Me with unknown token", target: "/api/me", token: "stale", wantStatus: http.StatusUnauthorized},
		{name: "Manager with customer session", target: "/api/manager/reports", token: "customer-token", wantStatus: http.StatusForbidden},
		{name: "Manager without session", target: "/api/manager/flights", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, tt.target, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := serve(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{
		"status": "Service Unavailable",
		"checks": {"postgres": "ok", "redis": "connection refused"}
	}`, w.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(nil)
	serve(router, http.MethodGet, "/api/routes/origins", "")

	w := serve(router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `airline_http_requests_total{method="GET",route="/api/routes/origins",status="200"} 1`))
}
