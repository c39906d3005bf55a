package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeReceivesSavedEntries(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	w := f.do(t, http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	userID := uuid.MustParse(decode(t, w)["profile"].(map[string]interface{})["user_id"].(string))

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.ClientCount(userID) == 1 }, 2*time.Second, 10*time.Millisecond)

	w = f.do(t, http.MethodPost, "/diet/save", token, gin.H{"meal_description": "banana", "nutrition": gin.H{"calories": 105}})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Kind  string                 `json:"kind"`
		Type  string                 `json:"type"`
		Entry map[string]interface{} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, service.EventEntryCreated, event.Kind)
	assert.Equal(t, service.EntryTypeDiet, event.Type)
	assert.Equal(t, "banana", event.Entry["food"])

	conn.Close()
	assert.Eventually(t, func() bool { return f.hub.ClientCount(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRealtimeRejectsMissingToken(t *testing.T) {
	f := setupAPITest(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	assert.True(t, check(req))
	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
	assert.True(t, originChecker(nil)(req))
}
