package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskville/internal/auth"
	"taskville/internal/config"
	"taskville/internal/models"
)

// setupTestDB initializes a test database
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: filepath.Join(t.TempDir(), fmt.Sprintf("taskville_test_%d.db", time.Now().UnixNano())),
			},
		},
		Security: config.SecurityConfig{
			BcryptCost: bcrypt.MinCost,
			Password: config.PasswordPolicy{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireDigit:   true,
				RequireSpecial: true,
			},
			Lockout: config.LockoutConfig{Threshold: 5, Window: "15m", Duration: "30m"},
		},
		Session: config.SessionConfig{Timeout: "1h", Sliding: true, ResetTTL: "1h"},
		CSRF:    config.CSRFConfig{Secret: "test-secret-key-for-testing-only", TTL: "1h", Issuer: "taskville-test"},
	}

	require.NoError(t, models.InitDB(cfg))
	t.Cleanup(func() {
		if models.DB != nil {
			if sqlDB, err := models.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		models.DB = nil
	})

	return cfg
}

// setupTestRouter creates a test router with routes
func setupTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *auth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authService := SetupRoutes(r, cfg, zap.NewNop())
	return r, authService
}

// createTestUser registers a user with an explicit role and returns it
func createTestUser(t *testing.T, authService *auth.Service, username, password, role string) *models.User {
	t.Helper()
	user, err := authService.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Password: password,
		Email:    username + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

// loginTestUser logs in through the API and returns the session token
func loginTestUser(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(t, r, "POST", "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, 200, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// doJSON performs a JSON request with an optional bearer token
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}
