package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/membership/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/membership/internal/common/crypto"
	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/membership/credential"
	"github.com/AlibekovAA/membership/internal/membership/domain"
	"github.com/AlibekovAA/membership/internal/membership/repository"
	"github.com/AlibekovAA/membership/internal/membership/service"
	"github.com/AlibekovAA/membership/internal/membership/token"
)

const testSecret = "test-secret-key-must-be-at-least-32-bytes-long"

// memRepo is an in-memory repository.Repository keyed by email.
type memRepo struct {
	mu      sync.Mutex
	users   map[string]domain.User
	failAll error
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]domain.User)}
}

func (m *memRepo) Create(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	_, ok := m.users[email]
	return ok, nil
}

func (m *memRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return domain.User{}, m.failAll
	}
	user, ok := m.users[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *memRepo) UpdateProfile(ctx context.Context, email, firstName, lastName string, updatedAt time.Time) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return domain.User{}, m.failAll
	}
	user, ok := m.users[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.UpdatedAt = updatedAt
	m.users[email] = user
	return user, nil
}

type testEnv struct {
	handler http.Handler
	repo    *memRepo
	issuer  *token.Issuer
	clock   *clock.MockClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clock.NewMockClock(time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC))
	key, err := token.NewHMACKey([]byte(testSecret))
	require.NoError(t, err)
	issuer, err := token.NewIssuer(key, "https://yourdomain.com", 12*time.Hour, clk)
	require.NoError(t, err)

	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "critical")
	repo := newMemRepo()
	svc, err := service.NewMembershipService(
		repo,
		credential.New(bcrypt.MinCost),
		issuer,
		commoncrypto.NewUUIDGenerator(),
		clk,
		"https://yoururlapi.com/profile.jpeg",
		log,
	)
	require.NoError(t, err)

	h := NewHandler(svc, issuer, Config{RequestTimeout: 5 * time.Second}, log)
	return &testEnv{handler: h, repo: repo, issuer: issuer, clock: clk}
}

type response struct {
	Code    int
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, body, bearer string) response {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	resp.Code = rec.Code
	return resp
}

func (r response) token(t *testing.T) string {
	t.Helper()
	var data tokenResponse
	require.NoError(t, json.Unmarshal(r.Data, &data))
	return data.Token
}

func (r response) profile(t *testing.T) domain.Profile {
	t.Helper()
	var data domain.Profile
	require.NoError(t, json.Unmarshal(r.Data, &data))
	return data
}

func TestEndToEndScenario(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/registration", `{"email":"a@b.com","password":"Password123!"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.True(t, resp.Status)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Empty(t, resp.Data)

	resp = env.do(t, http.MethodPost, "/api/v1/registration", `{"email":"a@b.com","password":"Password123!"}`, "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, resp.Status)
	assert.Equal(t, "Email already registered", resp.Message)

	resp = env.do(t, http.MethodPost, "/api/v1/login", `{"email":"a@b.com","password":"Password123!"}`, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, resp.Status)
	assert.Equal(t, "login successful", resp.Message)
	tok := resp.token(t)
	require.NotEmpty(t, tok)

	resp = env.do(t, http.MethodPost, "/api/v1/login", `{"email":"a@b.com","password":"WrongPassword1"}`, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.False(t, resp.Status)
	assert.Equal(t, "Invalid email or password", resp.Message)

	resp = env.do(t, http.MethodGet, "/api/v1/profile", "", tok)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "successful", resp.Message)
	assert.Equal(t, "a@b.com", resp.profile(t).Email)

	unsigned := tok[:strings.LastIndex(tok, ".")+1]
	resp = env.do(t, http.MethodGet, "/api/v1/profile", "", unsigned)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.False(t, resp.Status)
	assert.Equal(t, "Invalid token", resp.Message)
}

func TestLogin_UnknownEmailMatchesWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"ghost@b.com","password":"Password123!"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid email or password", resp.Message)
}

func TestValidationMessages(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		path    string
		body    string
		message string
	}{
		{"missing email", "/api/v1/registration", `{"password":"Password123!"}`, "Email is required"},
		{"blank email", "/api/v1/registration", `{"email":"   ","password":"Password123!"}`, "Email is required"},
		{"bad email", "/api/v1/registration", `{"email":"not-an-email","password":"Password123!"}`, "Email format is invalid"},
		{"missing password", "/api/v1/registration", `{"email":"a@b.com"}`, "Password is required"},
		{"short password", "/api/v1/registration", `{"email":"a@b.com","password":"short"}`, "Password must be at least 8 characters long"},
		{"long password", "/api/v1/registration", `{"email":"a@b.com","password":"` + strings.Repeat("p", 73) + `"}`, "Password must be at most 72 bytes long"},
		{"login bad email", "/api/v1/login", `{"email":"nope","password":"Password123!"}`, "Email format is invalid"},
		{"login missing password", "/api/v1/login", `{"email":"a@b.com"}`, "Password is required"},
		{"malformed json", "/api/v1/registration", `{"email":`, "Invalid request body"},
		{"wrong type", "/api/v1/login", `{"email":42}`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.False(t, resp.Status)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/registration",
		`{"email":"a@b.com","firstName":"Ada","lastName":"Lovelace","password":"Password123!"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code)

	tok, err := env.issuer.Issue("a@b.com")
	require.NoError(t, err)

	resp = env.do(t, http.MethodPut, "/api/v1/profile/update", `{"firstName":"","lastName":"Hopper"}`, tok)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "First name is required", resp.Message)

	resp = env.do(t, http.MethodPut, "/api/v1/profile/update", `{"firstName":"Grace"}`, tok)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Last name is required", resp.Message)

	resp = env.do(t, http.MethodPut, "/api/v1/profile/update", `{"firstName":" Grace ","lastName":"Hopper"}`, tok)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Profile updated successfully", resp.Message)
	assert.Equal(t, domain.Profile{
		Email:        "a@b.com",
		FirstName:    "Grace",
		LastName:     "Hopper",
		ProfileImage: "https://yoururlapi.com/profile.jpeg",
	}, resp.profile(t))

	resp = env.do(t, http.MethodPut, "/api/v1/profile/update", `{"firstName":"Grace","lastName":"Hopper"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid token", resp.Message)
}

func TestProfile_ValidTokenUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	tok, err := env.issuer.Issue("ghost@b.com")
	require.NoError(t, err)

	for _, call := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/profile", ""},
		{http.MethodPut, "/api/v1/profile/update", `{"firstName":"G","lastName":"H"}`},
		{http.MethodPost, "/api/v1/token/refresh", ""},
	} {
		resp := env.do(t, call.method, call.path, call.body, tok)
		assert.Equal(t, http.StatusNotFound, resp.Code, call.path)
		assert.Equal(t, "User not found", resp.Message, call.path)
	}
}

func TestProfile_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/registration", `{"email":"a@b.com","password":"Password123!"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code)
	resp = env.do(t, http.MethodPost, "/api/v1/login", `{"email":"a@b.com","password":"Password123!"}`, "")
	require.Equal(t, http.StatusOK, resp.Code)
	tok := resp.token(t)

	env.clock.Advance(12*time.Hour - time.Minute)
	resp = env.do(t, http.MethodGet, "/api/v1/profile", "", tok)
	assert.Equal(t, http.StatusOK, resp.Code)

	env.clock.Advance(2 * time.Minute)
	resp = env.do(t, http.MethodGet, "/api/v1/profile", "", tok)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid token", resp.Message)
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/registration", `{"email":"a@b.com","password":"Password123!"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code)
	resp = env.do(t, http.MethodPost, "/api/v1/login", `{"email":"a@b.com","password":"Password123!"}`, "")
	require.Equal(t, http.StatusOK, resp.Code)
	first := resp.token(t)

	env.clock.Advance(11 * time.Hour)
	resp = env.do(t, http.MethodPost, "/api/v1/token/refresh", "", first)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "token refreshed", resp.Message)
	refreshed := resp.token(t)

	env.clock.Advance(2 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/profile", "", first).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/profile", "", refreshed).Code)
}

func TestUnexpectedFailuresCarryContext(t *testing.T) {
	env := newTestEnv(t)
	tok, err := env.issuer.Issue("a@b.com")
	require.NoError(t, err)

	env.repo.failAll = errors.New("connection refused")

	resp := env.do(t, http.MethodPost, "/api/v1/registration", `{"email":"a@b.com","password":"Password123!"}`, "")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Registration failed: connection refused", resp.Message)

	resp = env.do(t, http.MethodPost, "/api/v1/login", `{"email":"a@b.com","password":"Password123!"}`, "")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Login failed: connection refused", resp.Message)

	resp = env.do(t, http.MethodGet, "/api/v1/profile", "", tok)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Failed to get profile: connection refused", resp.Message)

	resp = env.do(t, http.MethodPut, "/api/v1/profile/update", `{"firstName":"G","lastName":"H"}`, tok)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Failed to update profile: connection refused", resp.Message)
}

func TestRouting(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = env.do(t, http.MethodGet, "/api/v1/login", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)

	resp = env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSwaggerDocument(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Membership API")
	assert.Contains(t, rec.Body.String(), "/api/v1/registration")
}
