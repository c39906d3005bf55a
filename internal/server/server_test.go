package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pageza/fittrack/backend/config"
	"github.com/pageza/fittrack/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:      config.Test,
		ServerHost:       "127.0.0.1",
		ServerPort:       "0",
		DBDriver:         "sqlite",
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		LLMAPIURL:        "http://127.0.0.1:1",
		LLMTimeout:       time.Second,
		CORSOrigins:      []string{"http://localhost:3000"},
		EstimatesPerHour: 30,
	}
}

func TestNew(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	server := New(testConfig(), db)
	require.NotNil(t, server)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/does-not-exist", nil)
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestCORSPreflight(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	server := New(testConfig(), db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/diet/week", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartAndShutdown(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	server := New(testConfig(), db)

	errChan := make(chan error, 1)
	go func() { errChan <- server.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
