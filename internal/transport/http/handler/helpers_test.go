package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bestworkers-api/internal/application/registration"
	"github.com/bestworkers-api/internal/domain"
	jwtinfra "github.com/bestworkers-api/internal/infrastructure/jwt"
	"github.com/bestworkers-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockRegistrationSvc struct{ mock.Mock }

func (m *mockRegistrationSvc) Register(ctx context.Context, req registration.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockRegistrationSvc) ResendOTP(ctx context.Context, req registration.ResendOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockRegistrationSvc) VerifyOTP(ctx context.Context, req registration.VerifyOTPRequest) (*registration.Session, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*registration.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRegistrationSvc) Login(ctx context.Context, req registration.LoginRequest) (*registration.Session, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*registration.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) GetCurrent(ctx context.Context, accountID string) (domain.AccountView, error) {
	args := m.Called(ctx, accountID)
	v, _ := args.Get(0).(domain.AccountView)
	return v, args.Error(1)
}
func (m *mockAccountSvc) UpdateAccount(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) ChangePin(ctx context.Context, accountID string, req domain.ChangePinRequest) error {
	return m.Called(ctx, accountID, req).Error(0)
}

type mockProfileSvc struct{ mock.Mock }

func (m *mockProfileSvc) Create(ctx context.Context, accountID string, req domain.CreateProfileRequest) (*domain.Profile, error) {
	args := m.Called(ctx, accountID, req)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileSvc) FindByService(ctx context.Context, name, category string) ([]domain.Profile, error) {
	args := m.Called(ctx, name, category)
	out, _ := args.Get(0).([]domain.Profile)
	return out, args.Error(1)
}
func (m *mockProfileSvc) UpdateOwn(ctx context.Context, accountID string, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	args := m.Called(ctx, accountID, req)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newTestJWTProvider() *jwtinfra.Provider {
	return jwtinfra.NewHMACProvider([]byte("handler-test-secret"), time.Hour)
}

// bearerReq builds a request with a signed Bearer token for accountID.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, accountID string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Issue(accountID)
	require.NoError(t, err)
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
