package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ari-backend/config"
	"ari-backend/testutil"
	"ari-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer routes requests through the auth middleware with a fresh
// database installed as config.DB.
type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	api    *gin.RouterGroup
	userID uuid.UUID
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	previous := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = previous })

	r := gin.New()
	userID := uuid.New()
	token, err := utils.GenerateToken(userID.String(), "host@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	return &testServer{
		t:      t,
		db:     db,
		router: r,
		api:    r.Group("/api", utils.AuthMiddleware(testSecret)),
		userID: userID,
		token:  token,
	}
}

// tokenFor signs a token for another user.
func (s *testServer) tokenFor(userID uuid.UUID) string {
	token, err := utils.GenerateToken(userID.String(), "other@example.com", testSecret, time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.doAs(s.token, method, path, body)
}

func (s *testServer) doAs(token, method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
