package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/errs"
	"github.com/Sheeddhartho/Secura/internal/model"
	"github.com/Sheeddhartho/Secura/internal/service"
)

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	if tenantID, ok := f[token]; ok {
		return tenantID, nil
	}
	return "", errs.ErrAuthRejected
}

type wsFixture struct {
	srv      *httptest.Server
	registry *service.Registry
}

func setupWSFixture(t *testing.T, sessions fakeResolver) *wsFixture {
	gin.SetMode(gin.TestMode)
	registry := service.NewRegistry(zap.NewNop())
	gw := service.NewGateway(registry, nil, 4096, 4096, 0, zap.NewNop())
	h := NewStreamWSHandler(gw, sessions, zap.NewNop())

	r := gin.New()
	r.GET("/ws/stream", h.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsFixture{srv: srv, registry: registry}
}

func (f *wsFixture) dial(t *testing.T, token string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/stream?session=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func declare(t *testing.T, conn *websocket.Conn, event string) {
	raw, err := json.Marshal(model.Event{Event: event})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func readStatus(t *testing.T, conn *websocket.Conn) string {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, mt)
	var ev model.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, model.EventCameraStatus, ev.Event)
	var st model.CameraStatus
	require.NoError(t, json.Unmarshal(ev.Data, &st))
	return st.Status
}

func readBinary(t *testing.T, conn *websocket.Conn) []byte {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, mt)
	return data
}

// expectSilence asserts nothing arrives within the window. The read
// deadline poisons the connection, so only call this last.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var nerr net.Error
	require.ErrorAs(t, err, &nerr)
	assert.True(t, nerr.Timeout())
}

func TestServeWS_RejectsUnresolvableSession(t *testing.T) {
	f := setupWSFixture(t, fakeResolver{})

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/stream?session=bogus"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestServeWS_CameraDeclarationBroadcastsOnlineToRoom(t *testing.T) {
	f := setupWSFixture(t, fakeResolver{"cam-tok": "tenant-a", "mon-tok": "tenant-a"})

	monitor := f.dial(t, "mon-tok")
	declare(t, monitor, model.EventJoinAsMonitor)
	require.Eventually(t, func() bool {
		return f.registry.CountRole("tenant-a", service.RoleMonitor) == 1
	}, 2*time.Second, 10*time.Millisecond)

	camera := f.dial(t, "cam-tok")
	declare(t, camera, model.EventJoinAsCamera)

	// everyone in the room sees it, the declaring camera included
	assert.Equal(t, model.CameraStatusOnline, readStatus(t, camera))
	assert.Equal(t, model.CameraStatusOnline, readStatus(t, monitor))
}

func TestServeWS_FramesReachMonitorsOnlyWithinTenant(t *testing.T) {
	f := setupWSFixture(t, fakeResolver{
		"cam-tok":   "tenant-a",
		"mon-tok":   "tenant-a",
		"other-tok": "tenant-b",
	})

	monitor := f.dial(t, "mon-tok")
	declare(t, monitor, model.EventJoinAsMonitor)
	otherTenant := f.dial(t, "other-tok")
	declare(t, otherTenant, model.EventJoinAsMonitor)
	require.Eventually(t, func() bool {
		return f.registry.CountRole("tenant-a", service.RoleMonitor) == 1 &&
			f.registry.CountRole("tenant-b", service.RoleMonitor) == 1
	}, 2*time.Second, 10*time.Millisecond)

	camera := f.dial(t, "cam-tok")
	declare(t, camera, model.EventJoinAsCamera)
	require.Equal(t, model.CameraStatusOnline, readStatus(t, camera))
	require.Equal(t, model.CameraStatusOnline, readStatus(t, monitor))

	frame := []byte{0xff, 0xd8, 0x01, 0x02, 0x03}
	require.NoError(t, camera.WriteMessage(websocket.BinaryMessage, frame))

	assert.Equal(t, frame, readBinary(t, monitor))
	expectSilence(t, otherTenant) // frames never cross rooms
	expectSilence(t, camera)      // and never echo to the sender
}

func TestServeWS_UndeclaredPeerReceivesNoFrames(t *testing.T) {
	f := setupWSFixture(t, fakeResolver{"cam-tok": "tenant-a", "idle-tok": "tenant-a"})

	idle := f.dial(t, "idle-tok") // joined the room, never declared a role
	require.Eventually(t, func() bool {
		return f.registry.Count("tenant-a") == 1
	}, 2*time.Second, 10*time.Millisecond)

	camera := f.dial(t, "cam-tok")
	declare(t, camera, model.EventJoinAsCamera)
	require.Equal(t, model.CameraStatusOnline, readStatus(t, idle))

	require.NoError(t, camera.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))
	expectSilence(t, idle)
}

// Pins the long-standing quirk carried over from the original behavior:
// camera-status flips to offline on ANY disconnect in the room, even
// when the leaving peer was a monitor and the camera is still live.
func TestServeWS_MonitorDisconnectBroadcastsOffline(t *testing.T) {
	f := setupWSFixture(t, fakeResolver{"cam-tok": "tenant-a", "mon-tok": "tenant-a"})

	monitor := f.dial(t, "mon-tok")
	declare(t, monitor, model.EventJoinAsMonitor)
	require.Eventually(t, func() bool {
		return f.registry.CountRole("tenant-a", service.RoleMonitor) == 1
	}, 2*time.Second, 10*time.Millisecond)

	camera := f.dial(t, "cam-tok")
	declare(t, camera, model.EventJoinAsCamera)
	require.Equal(t, model.CameraStatusOnline, readStatus(t, camera))
	require.Equal(t, model.CameraStatusOnline, readStatus(t, monitor))

	require.NoError(t, monitor.Close())

	assert.Equal(t, model.CameraStatusOffline, readStatus(t, camera))
	require.Eventually(t, func() bool {
		return f.registry.Count("tenant-a") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeWS_RoomCountTracksConnections(t *testing.T) {
	f := setupWSFixture(t, fakeResolver{
		"tok-1": "tenant-a",
		"tok-2": "tenant-a",
		"tok-3": "tenant-a",
	})

	for _, tok := range []string{"tok-1", "tok-2", "tok-3"} {
		f.dial(t, tok)
	}

	require.Eventually(t, func() bool {
		return f.registry.Count("tenant-a") == 3
	}, 2*time.Second, 10*time.Millisecond)
}
