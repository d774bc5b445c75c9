package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"op submit", `{"type":"op.submit","payload":{"operation":{"type":"shape.add","kind":"rect"}}}`, nil},
		{"presence", `{"type":"presence.update","payload":{"cursor":{"x":1,"y":2}}}`, nil},
		{"server type", `{"type":"scene.render","payload":{}}`, ErrUnexpectedMessage},
		{"no type", `{"payload":{}}`, ErrUnexpectedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decodeInbound([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, msg.Type)
		})
	}

	_, err := decodeInbound([]byte(`not json`))
	assert.Error(t, err)

	_, err = decodeInbound([]byte(`{"type":"op.submit"}`))
	assert.ErrorContains(t, err, "missing payload")
}

// dialRoom serves the hub over a test server and joins drawingID.
func dialRoom(t *testing.T, h *Hub, drawingID string) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(h, conn, "user-1", "Ada", drawingID, "client-1")
		h.Register(client)
		go client.WritePump(r.Context())
		client.ReadPump(r.Context())
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) Message {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeMessage(t *testing.T, ctx context.Context, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(raw)))
}

func TestClientRoundTrip(t *testing.T) {
	h := NewHub(emptyDrawing)
	go h.Run()
	t.Cleanup(h.Stop)

	conn, ctx := dialRoom(t, h, "drw_ws")

	welcome := readMessage(t, ctx, conn)
	require.Equal(t, TypeWelcome, welcome.Type)
	var wp WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &wp))
	assert.Equal(t, WelcomePayload{ClientID: "client-1", UserID: "user-1"}, wp)

	sync := readMessage(t, ctx, conn)
	require.Equal(t, TypeDocSync, sync.Type)
	assert.Equal(t, "drw_ws", scene(t, sync).Drawing.ID)
	assert.Equal(t, TypePresenceState, readMessage(t, ctx, conn).Type)

	// The connection's identity wins over whatever the frame claims.
	writeMessage(t, ctx, conn, `{"type":"op.submit","userId":"mallory","payload":{"operation":{"id":"op1","type":"shape.add","kind":"ellipse"}}}`)

	ack := readMessage(t, ctx, conn)
	require.Equal(t, TypeOpAck, ack.Type)
	var ap OperationAckPayload
	require.NoError(t, json.Unmarshal(ack.Payload, &ap))
	assert.Equal(t, OperationAckPayload{OperationID: "op1", ServerSeq: 1}, ap)

	render := readMessage(t, ctx, conn)
	require.Equal(t, TypeSceneRender, render.Type)
	assert.Equal(t, "user-1", render.UserID)
	sc := scene(t, render)
	require.Len(t, sc.Commands, 1)
	assert.Equal(t, "ellipse", sc.Commands[0].Op)

	// Frames a client may not send are answered with an error.
	writeMessage(t, ctx, conn, `{"type":"op.ack","payload":{}}`)
	rejected := readMessage(t, ctx, conn)
	require.Equal(t, TypeError, rejected.Type)
	var ep ErrorPayload
	require.NoError(t, json.Unmarshal(rejected.Payload, &ep))
	assert.Contains(t, ep.Message, "op.ack")

	writeMessage(t, ctx, conn, `{`)
	assert.Equal(t, TypeError, readMessage(t, ctx, conn).Type)

	// The connection is still live after the rejections.
	writeMessage(t, ctx, conn, `{"type":"op.submit","payload":{"operation":{"id":"op2","type":"history.undo"}}}`)
	assert.Equal(t, TypeOpAck, readMessage(t, ctx, conn).Type)
}

func TestClientLeaveUnregisters(t *testing.T) {
	h := NewHub(emptyDrawing)
	go h.Run()
	t.Cleanup(h.Stop)

	conn, ctx := dialRoom(t, h, "drw_ws")
	for range 3 {
		readMessage(t, ctx, conn)
	}
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	assert.Eventually(t, func() bool {
		list, err := h.List(context.Background())
		return err == nil && len(list) == 1 && list[0].Clients == 0
	}, 2*time.Second, 10*time.Millisecond)
}
