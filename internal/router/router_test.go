package router

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "geostrat/app/db"
	"geostrat/config"
	"geostrat/internal/api/analysis"
	"geostrat/internal/api/auth"
	"geostrat/internal/api/item"
	"geostrat/internal/api/user"
)

// setupTestAPI wires the full surface against an in-memory store, the same way
// main does it, minus metrics and tracing.
func setupTestAPI(t *testing.T, creatorMode item.CreatorMode) (chi.Router, *sql.DB) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.InitSQLite(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authCfg := config.AuthConfig{
		SecretKey:  "test-signing-secret",
		TokenTTL:   time.Hour,
		Issuer:     "geostrat",
		CookieName: "geostrat_token",
	}
	authService := auth.NewService(authCfg, logger)

	itemRepo := item.NewSQLiteItemRepository(db, logger)
	userRepo := user.NewSQLiteUserRepository(db, logger)
	itemService := item.NewService(itemRepo, userRepo, creatorMode, nil, logger)

	analysisRepo := analysis.NewSQLiteAnalysisRepository(db, logger)
	analysisService := analysis.NewService(analysisRepo, time.Minute, logger)

	r := SetupRouter(&Config{
		AuthHandler:        auth.NewHandler(authService, authCfg, logger),
		ItemHandler:        item.NewHandler(itemService, logger),
		AnalysisHandler:    analysis.NewHandler(analysisService, logger),
		IdentityMiddleware: auth.WithIdentity(authService, authCfg.CookieName),
	})
	return r, db
}

func doJSON(t *testing.T, r http.Handler, method, path string, payload any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _ := setupTestAPI(t, item.CreatorModeName)

	w := doJSON(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","message":"API is running"}`, w.Body.String())
}

func TestRouter_ItemLifecycle(t *testing.T) {
	r, _ := setupTestAPI(t, item.CreatorModeName)

	// Empty store lists as an empty array.
	w := doJSON(t, r, http.MethodGet, "/items", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	// Create.
	w = doJSON(t, r, http.MethodPost, "/items", item.Payload{
		Name:        "Quad Alliance",
		Description: "Indo-Pacific security partnership.",
		CreatedBy:   "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Message string    `json:"message"`
		Item    item.Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Item created", created.Message)

	// Read it back.
	w = doJSON(t, r, http.MethodGet, "/items/"+created.Item.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Update.
	w = doJSON(t, r, http.MethodPut, "/items/"+created.Item.ID.String(), item.Payload{
		Name:        "Quad Alliance (expanded)",
		Description: "Indo-Pacific security partnership with expanded membership.",
		CreatedBy:   "researcher",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// The creators listing reflects the update.
	w = doJSON(t, r, http.MethodGet, "/creators", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["researcher"]`, w.Body.String())

	// Delete confirms with the removed state.
	w = doJSON(t, r, http.MethodDelete, "/items/"+created.Item.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var deleted map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, "Item deleted", deleted["message"])

	// Gone.
	w = doJSON(t, r, http.MethodGet, "/items/"+created.Item.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ValidationShape(t *testing.T) {
	r, _ := setupTestAPI(t, item.CreatorModeName)

	w := doJSON(t, r, http.MethodPost, "/items", item.Payload{Name: "ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := resp["validationErrors"].(map[string]interface{})
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "created_by")
}

func TestRouter_ReferentialCreatorMode(t *testing.T) {
	r, db := setupTestAPI(t, item.CreatorModeUser)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userRepo := user.NewSQLiteUserRepository(db, logger)
	_, err := userRepo.Create(context.Background(), "admin", "admin@example.com")
	require.NoError(t, err)

	payload := item.Payload{
		Name:        "Quad Alliance",
		Description: "Indo-Pacific security partnership.",
		CreatedBy:   "ghost",
	}
	w := doJSON(t, r, http.MethodPost, "/items", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := resp["validationErrors"].(map[string]interface{})
	assert.Contains(t, fields, "created_by")

	payload.CreatedBy = "admin"
	w = doJSON(t, r, http.MethodPost, "/items", payload)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_AuthFlow(t *testing.T) {
	r, _ := setupTestAPI(t, item.CreatorModeName)

	// Unauthenticated me.
	w := doJSON(t, r, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Login issues the cookie.
	w = doJSON(t, r, http.MethodPost, "/auth/login", auth.LoginRequest{Username: "analyst"})
	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "geostrat_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	// Me hydrates from the cookie.
	w = doJSON(t, r, http.MethodGet, "/auth/me", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	var me auth.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "analyst", me.Username)

	// An unattributed create is credited to the cookie identity.
	w = doJSON(t, r, http.MethodPost, "/items", item.Payload{
		Name:        "BRICS",
		Description: "Economic cooperation bloc of emerging economies.",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Item item.Item `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "analyst", created.Item.CreatedBy)
}

func TestRouter_Analysis(t *testing.T) {
	r, db := setupTestAPI(t, item.CreatorModeName)

	// No data yet.
	w := doJSON(t, r, http.MethodGet, "/analysis?timeRange=decade&metric=trade", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	year := time.Now().UTC().Year()
	_, err := db.ExecContext(context.Background(), `
        INSERT INTO analysis_data (year, trade, defense, alliances)
        VALUES (?, ?, ?, ?)
    `, year-1, 90.0, 40.0, 11.4)
	require.NoError(t, err)

	w = doJSON(t, r, http.MethodGet, "/analysis?timeRange=decade&metric=trade", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var points []map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, float64(year-1), points[0]["year"])
	assert.Equal(t, 90.0, points[0]["trade"])

	w = doJSON(t, r, http.MethodGet, "/analysis?metric=espionage", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
