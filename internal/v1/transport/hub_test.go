package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOrigin(t *testing.T) {
	allowed := []string{"http://localhost:3000", "https://app.example.com"}

	cases := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin header", "", true},
		{"allowed origin", "http://localhost:3000", true},
		{"allowed https origin", "https://app.example.com", true},
		{"scheme mismatch", "https://localhost:3000", false},
		{"host mismatch", "http://evil.example.com", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			err := validateOrigin(r, allowed)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestServeWsRejectsBadOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHub(t)

	router := gin.New()
	router.GET("/ws", h.ServeWs)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://evil.example.com")
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServeWsEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHub(t)

	router := gin.New()
	router.GET("/ws", h.ServeWs)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	defer func() { _ = resp.Body.Close() }()

	err = conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"register","username":"alice","password":"hunter2hunter","email":"a@x"}`))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, "auth_success", frame["type"])
	assert.Equal(t, "success", frame["status"])
}
