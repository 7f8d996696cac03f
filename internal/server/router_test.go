package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/config"
	"github.com/projectplanning/planning-cloud-api/internal/services"
	"github.com/projectplanning/planning-cloud-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		GinMode:          gin.TestMode,
		TokenSecret:      "router-test-secret",
		TokenTTL:         time.Hour,
		SessionSecret:    "router-test-session",
		SessionStore:     "cookie",
		RateLimitEnabled: false,
		RateLimitWindow:  time.Minute,
		RateLimitGeneral: 100,
		RateLimitStrict:  20,
		Credentials:      []config.Credential{{Username: "admin", PasswordHash: string(hash), Role: "admin"}},
	}
	if mutate != nil {
		mutate(cfg)
	}

	auth, err := services.NewAuthService(cfg.Credentials, cfg.TokenSecret, cfg.TokenTTL)
	require.NoError(t, err)

	store, db := testutil.NewStore(t)
	r, err := NewRouter(Deps{
		Config: cfg,
		Log:    testutil.DiscardLogger(),
		DB:     db,
		Store:  store,
		Auth:   auth,
	})
	require.NoError(t, err)
	return r
}

func serve(r http.Handler, method, path string, body interface{}, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) (string, []*http.Cookie) {
	t.Helper()
	w := serve(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token, w.Result().Cookies()
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/api/health"} {
		w := serve(r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"success":true`)
	}
}

func TestRouter_NotFound(t *testing.T) {
	r := newTestRouter(t, nil)

	w := serve(r, http.MethodGet, "/api/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route not found","error":{"code":"NOT_FOUND"}}`, w.Body.String())
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/api/tasks", "/api/commitments", "/api/task-observations/task/1", "/api/kpis/total-tasks"} {
		w := serve(r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// Task types are readable anonymously.
	w := serve(r, http.MethodGet, "/api/task-types", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/api/task-types", map[string]string{"title": "Logística"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_BearerAndSessionAccess(t *testing.T) {
	r := newTestRouter(t, nil)
	token, cookies := login(t, r)

	w := serve(r, http.MethodGet, "/api/kpis/total-tasks", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalTasks":0`)

	w = serve(r, http.MethodGet, "/api/tasks", nil, "", cookies...)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/api/tasks", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_EndToEndCommitmentFlow(t *testing.T) {
	r := newTestRouter(t, nil)
	token, _ := login(t, r)

	w := serve(r, http.MethodPost, "/api/migration/migrate-task-types", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var types struct {
		Data struct {
			TaskTypes []struct {
				ID uint64 `json:"id"`
			} `json:"taskTypes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	require.NotEmpty(t, types.Data.TaskTypes)

	w = serve(r, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":      "Reparar techo del comedor",
		"projectId":  9,
		"taskTypeId": types.Data.TaskTypes[0].ID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var task struct {
		Data struct {
			ID uint64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	commitmentIDs := make([]uint64, 0, 2)
	for _, ong := range []uint64{2, 3} {
		w = serve(r, http.MethodPost, "/api/commitments", map[string]interface{}{"taskId": task.Data.ID, "ongId": ong}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		var commitment struct {
			Data struct {
				ID uint64 `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &commitment))
		commitmentIDs = append(commitmentIDs, commitment.Data.ID)
	}

	w = serve(r, http.MethodPost, "/api/commitments/assign", map[string]interface{}{"commitmentId": commitmentIDs[0], "taskId": task.Data.ID}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/api/commitments/assign", map[string]interface{}{"commitmentId": commitmentIDs[1], "taskId": task.Data.ID}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodGet, "/api/tasks/project/9/unassigned", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.RateLimitEnabled = true
		cfg.RateLimitGeneral = 2
		cfg.RateLimitStrict = 1
	})

	w := serve(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = serve(r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestNewSessionStore_Cookie(t *testing.T) {
	store, err := newSessionStore(&config.Config{SessionSecret: "s", TokenTTL: time.Hour})
	require.NoError(t, err)
	assert.NotNil(t, store)
}
