package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ari-backend/models"
	"ari-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateDemoRequest(t *testing.T) {
	var relayed int
	web3forms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayed++
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "New Demo Request from Jane", r.FormValue("subject"))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer web3forms.Close()

	s := newTestServer(t)
	dc := &DemoController{Relay: services.NewDemoRelay(web3forms.URL, "key", time.Second)}
	s.router.POST("/api/demo-requests", dc.Create)
	s.api.GET("/demo-requests", dc.List)

	w := s.doAs("", http.MethodPost, "/api/demo-requests", map[string]string{"name": "Jane", "email": "not-an-email", "eventType": "wedding"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request data"}`, w.Body.String())

	w = s.doAs("", http.MethodPost, "/api/demo-requests", map[string]string{"name": "Jane", "email": "jane@example.com", "eventType": "wedding"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.DemoRequest
	decode(t, w, &created)
	assert.True(t, created.Relayed)
	assert.Nil(t, created.Phone)
	assert.Equal(t, 1, relayed)

	w = s.doAs("", http.MethodGet, "/api/demo-requests", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/demo-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.DemoRequest
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "jane@example.com", list[0].Email)
}

func TestCreateDemoRequestWithoutRelay(t *testing.T) {
	s := newTestServer(t)
	dc := &DemoController{}
	s.router.POST("/api/demo-requests", dc.Create)

	w := s.doAs("", http.MethodPost, "/api/demo-requests", map[string]string{"name": "Jane", "email": "jane@example.com", "eventType": "gala", "phone": "555"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.DemoRequest
	decode(t, w, &created)
	assert.False(t, created.Relayed)
	require.NotNil(t, created.Phone)
	assert.Equal(t, "555", *created.Phone)
}

func TestCreateDemoRequestRelayedFlagNotSaved(t *testing.T) {
	web3forms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer web3forms.Close()

	s := newTestServer(t)
	require.NoError(t, s.db.Callback().Update().Before("gorm:update").Register("fail_updates", func(tx *gorm.DB) {
		tx.AddError(errors.New("connection reset"))
	}))
	dc := &DemoController{Relay: services.NewDemoRelay(web3forms.URL, "key", time.Second)}
	s.router.POST("/api/demo-requests", dc.Create)

	w := s.doAs("", http.MethodPost, "/api/demo-requests", map[string]string{"name": "Jane", "email": "jane@example.com", "eventType": "wedding"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.DemoRequest
	decode(t, w, &created)
	assert.False(t, created.Relayed)

	var stored models.DemoRequest
	require.NoError(t, s.db.First(&stored, "id = ?", created.ID).Error)
	assert.False(t, stored.Relayed)
}
