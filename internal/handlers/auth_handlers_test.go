package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/empdir/emp-api/internal/db"
	"github.com/empdir/emp-api/internal/handlers"
	"github.com/empdir/emp-api/internal/hash"
	"github.com/empdir/emp-api/internal/models"
	"github.com/empdir/emp-api/internal/mykafka"
	"github.com/empdir/emp-api/internal/repo"
	"github.com/empdir/emp-api/internal/revocation"
	"github.com/empdir/emp-api/internal/service"
	"github.com/empdir/emp-api/internal/tokens"
	httpserver "github.com/empdir/emp-api/internal/transport/http"
)

type testServer struct {
	e     *echo.Echo
	db    *gorm.DB
	codec *tokens.Codec
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	codec := tokens.NewCodec([]byte("test-jwt-secret"), "emp-api", "emp-web", 5*time.Hour)
	registry := revocation.New()
	gormRepo := repo.New(gormDB)
	authService := &service.AuthService{Repo: gormRepo, Codec: codec}
	producer := &mykafka.Producer{}

	e := echo.New()
	deps := httpserver.Deps{
		Codec:             codec,
		Registry:          registry,
		AuthHandler:       &handlers.AuthHandler{Service: authService, Registry: registry, Producer: producer},
		UserHandler:       &handlers.UserHandler{Service: authService, Producer: producer},
		DepartmentHandler: &handlers.DepartmentHandler{Repo: gormRepo},
		EmployeeHandler:   &handlers.EmployeeHandler{Repo: gormRepo, Producer: producer},
	}
	httpserver.Register(e, &deps)

	return &testServer{e: e, db: gormDB, codec: codec}
}

func (ts *testServer) seedUser(t *testing.T, username, password, role string, active bool) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		FirstName:    "Seed",
		LastName:     "User",
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, ts.db.Create(user).Error)
	return user
}

func (ts *testServer) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()

	rec := ts.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin@emp.com", "Admin@123", models.RoleAdmin, true)

	token := ts.login(t, "admin@emp.com", "Admin@123")

	claims, err := ts.codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id)
}

func TestLogin_FailuresAreUniform401(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "staff@emp.com", "Staff@123", models.RoleStaff, true)
	ts.seedUser(t, "inactive@emp.com", "Inactive@123", models.RoleStaff, false)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "staff@emp.com", password: "nope"},
		{name: "unknown user", username: "ghost@emp.com", password: "Staff@123"},
		{name: "inactive account", username: "inactive@emp.com", password: "Inactive@123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
				"username": tt.username,
				"password": tt.password,
			})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid username or password")
		})
	}
}

func TestLogout_RevokesTokenImmediately(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "staff@emp.com", "Staff@123", models.RoleStaff, true)
	token := ts.login(t, "staff@emp.com", "Staff@123")

	rec := ts.request(http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Username  string `json:"username"`
		LoggedOut bool   `json:"logged_out"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "staff@emp.com", resp.Username)
	assert.True(t, resp.LoggedOut)

	// The token is still hours from expiry, yet every further use fails.
	rec = ts.request(http.MethodGet, "/api/v1/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_AdminOnly(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "admin@emp.com", "Admin@123", models.RoleAdmin, true)
	ts.seedUser(t, "staff@emp.com", "Staff@123", models.RoleStaff, true)

	staffToken := ts.login(t, "staff@emp.com", "Staff@123")
	adminToken := ts.login(t, "admin@emp.com", "Admin@123")

	rec := ts.request(http.MethodGet, "/api/v1/users", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(http.MethodGet, "/api/v1/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_CreateDuplicate409(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "admin@emp.com", "Admin@123", models.RoleAdmin, true)
	adminToken := ts.login(t, "admin@emp.com", "Admin@123")

	payload := map[string]string{
		"username":   "new.staff@emp.com",
		"password":   "Staff@123",
		"first_name": "New",
		"last_name":  "Staff",
		"role":       models.RoleStaff,
	}

	rec := ts.request(http.MethodPost, "/api/v1/users", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	payload["username"] = "NEW.STAFF@EMP.COM"
	rec = ts.request(http.MethodPost, "/api/v1/users", adminToken, payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestChangePassword_Flow(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "staff@emp.com", "Staff@123", models.RoleStaff, true)
	token := ts.login(t, "staff@emp.com", "Staff@123")

	rec := ts.request(http.MethodPut, "/api/v1/auth/profile/change-password", token, map[string]string{
		"current_password": "wrongCurrent",
		"new_password":     "NewPass1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(http.MethodPut, "/api/v1/auth/profile/change-password", token, map[string]string{
		"current_password": "Staff@123",
		"new_password":     "NewPass1",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "staff@emp.com",
		"password": "Staff@123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.login(t, "staff@emp.com", "NewPass1")
}

func TestDeactivatedUser_CannotLogin(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.seedUser(t, "admin@emp.com", "Admin@123", models.RoleAdmin, true)
	staff := ts.seedUser(t, "staff@emp.com", "Staff@123", models.RoleStaff, true)
	adminToken := ts.login(t, "admin@emp.com", "Admin@123")

	rec := ts.request(http.MethodPatch, "/api/v1/users/2/toggle-active", adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, uint(2), staff.ID)

	rec = ts.request(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "staff@emp.com",
		"password": "Staff@123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
