package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/checkin-tools/checkin-manager/internal/middleware"
	"github.com/checkin-tools/checkin-manager/pkg/config"
	"github.com/checkin-tools/checkin-manager/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.NewDatabase(config.Database{Path: filepath.Join(t.TempDir(), "session.db")})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(logger, NewRepository(db))

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	Routes(r, NewHandler(service))
	return r
}

func validity(t *testing.T, r *gin.Engine) bool {
	t.Helper()
	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/session", nil)
	r.ServeHTTP(w, request)
	require.Equal(t, http.StatusOK, w.Code)

	var response ValidityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Valid
}

func TestHandler_Session(t *testing.T) {
	r := newEngine(t)

	assert.False(t, validity(t, r))

	expiry := strconv.FormatInt(time.Now().Add(time.Hour).UnixMilli(), 10)
	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"token":"access-token","expiryTime":`+expiry+`}`))
	request.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, request)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.True(t, validity(t, r))

	w = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodDelete, "/session", nil)
	r.ServeHTTP(w, request)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.False(t, validity(t, r))
}

func TestHandler_Save_BadPayload(t *testing.T) {
	r := newEngine(t)

	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"token":""}`))
	request.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, request)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
