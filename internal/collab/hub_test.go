package collab

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/shape"
)

func emptyDrawing(id string) *document.Drawing {
	return document.NewEmptyDrawing(id, "test", 800, 600, "#ffffff")
}

func newTestClient(h *Hub, drawingID, clientID string) *Client {
	return NewClient(h, nil, "user-"+clientID, "User "+clientID, drawingID, clientID)
}

// drain returns every message queued for c.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			out = append(out, msg)
		default:
			return out
		}
	}
}

func types(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func submit(t *testing.T, op Operation) *Message {
	t.Helper()
	payload, err := json.Marshal(OperationSubmitPayload{Operation: op})
	require.NoError(t, err)
	return &Message{Type: TypeOpSubmit, Payload: payload}
}

func scene(t *testing.T, msg Message) ScenePayload {
	t.Helper()
	var p ScenePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	return p
}

func TestAddClient(t *testing.T) {
	h := NewHub(emptyDrawing)
	a := newTestClient(h, "drw_a", "a")
	b := newTestClient(h, "drw_a", "b")

	h.addClient(a)
	msgs := drain(t, a)
	require.Equal(t, []string{TypeWelcome, TypeDocSync, TypePresenceState}, types(msgs))

	sync := scene(t, msgs[1])
	require.NotNil(t, sync.Drawing)
	assert.Equal(t, "drw_a", sync.Drawing.ID)
	assert.Empty(t, sync.Commands)

	h.addClient(b)
	drain(t, b)
	joins := drain(t, a)
	require.Equal(t, []string{TypePresenceJoin}, types(joins))
	assert.Equal(t, "user-b", joins[0].UserID)
}

func TestOpSubmitBroadcastsScene(t *testing.T) {
	h := NewHub(emptyDrawing)
	a := newTestClient(h, "drw_a", "a")
	b := newTestClient(h, "drw_a", "b")
	h.addClient(a)
	h.addClient(b)
	drain(t, a)
	drain(t, b)

	h.handleMessage(a, submit(t, Operation{ID: "op1", Type: OpShapeAdd, Kind: "rect"}))

	msgs := drain(t, a)
	require.Equal(t, []string{TypeOpAck, TypeSceneRender}, types(msgs))
	var ack OperationAckPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &ack))
	assert.Equal(t, OperationAckPayload{OperationID: "op1", ServerSeq: 1}, ack)

	other := drain(t, b)
	require.Equal(t, []string{TypeSceneRender}, types(other))
	sc := scene(t, other[0])
	require.Len(t, sc.Commands, 1)
	assert.Equal(t, "rect", sc.Commands[0].Op)
	assert.Equal(t, int64(1), sc.ServerSeq)
}

func TestOpSubmitRejected(t *testing.T) {
	h := NewHub(emptyDrawing)
	a := newTestClient(h, "drw_a", "a")
	h.addClient(a)
	drain(t, a)

	for _, op := range []Operation{
		{ID: "x", Type: "shape.spin"},
		{ID: "y", Type: OpShapeAdd, Kind: "triangle"},
		{ID: "z", Type: OpStyleUpdate, Stroke: "#000000", StrokeWidth: -1},
	} {
		h.handleMessage(a, submit(t, op))
		msgs := drain(t, a)
		require.Equal(t, []string{TypeOpNack}, types(msgs), op.Type)
		var nack OperationNackPayload
		require.NoError(t, json.Unmarshal(msgs[0].Payload, &nack))
		assert.Equal(t, op.ID, nack.OperationID)
		assert.NotEmpty(t, nack.Reason)
	}

	h.handleMessage(a, &Message{Type: TypeOpSubmit, Payload: json.RawMessage(`"nope"`)})
	assert.Equal(t, []string{TypeError}, types(drain(t, a)))

	h.handleMessage(a, &Message{Type: "bogus", Payload: json.RawMessage(`{}`)})
	assert.Equal(t, []string{TypeError}, types(drain(t, a)))
}

func TestPointerDrag(t *testing.T) {
	h := NewHub(emptyDrawing)
	a := newTestClient(h, "drw_a", "a")
	h.addClient(a)
	h.handleMessage(a, submit(t, Operation{Type: OpShapeAdd, Kind: "line"}))
	drain(t, a)

	// Idle moves are acknowledged without a frame.
	h.handleMessage(a, submit(t, Operation{Type: OpPointerMove, X: 5, Y: 5}))
	assert.Equal(t, []string{TypeOpAck}, types(drain(t, a)))

	h.handleMessage(a, submit(t, Operation{Type: OpPointerDown, X: 100, Y: 100}))
	h.handleMessage(a, submit(t, Operation{Type: OpPointerMove, X: 130, Y: 100}))
	h.handleMessage(a, submit(t, Operation{Type: OpPointerUp, X: 130, Y: 100}))
	msgs := drain(t, a)
	require.Equal(t, []string{
		TypeOpAck, TypeSceneRender,
		TypeOpAck, TypeSceneRender,
		TypeOpAck, TypeSceneRender,
	}, types(msgs))

	last := scene(t, msgs[5])
	assert.NotEmpty(t, last.State.SelectedID)
	assert.Empty(t, last.State.Session)
	assert.Len(t, last.State.Handles, 4)

	d := h.rooms["drw_a"].state.Drawing()
	assert.Equal(t, &shape.Line{X1: 80, Y1: 50, X2: 230, Y2: 200}, d.Shapes[0].Geometry)
}

func TestRemoveClient(t *testing.T) {
	h := NewHub(emptyDrawing)
	a := newTestClient(h, "drw_a", "a")
	b := newTestClient(h, "drw_a", "b")
	h.addClient(a)
	h.addClient(b)
	drain(t, a)
	drain(t, b)

	h.removeClient(b)
	_, open := <-b.send
	assert.False(t, open, "send queue is closed")

	leaves := drain(t, a)
	require.Equal(t, []string{TypePresenceLeave}, types(leaves))

	// Late messages and a second unregister are ignored.
	h.handleMessage(b, submit(t, Operation{Type: OpShapeAdd, Kind: "rect"}))
	h.removeClient(b)
	assert.Empty(t, h.rooms["drw_a"].state.Drawing().Shapes)

	// The room survives its last client.
	h.removeClient(a)
	assert.Contains(t, h.rooms, "drw_a")
}

func TestPresenceUpdate(t *testing.T) {
	h := NewHub(emptyDrawing)
	a := newTestClient(h, "drw_a", "a")
	b := newTestClient(h, "drw_a", "b")
	h.addClient(a)
	h.addClient(b)
	drain(t, a)
	drain(t, b)

	h.handleMessage(a, &Message{Type: TypePresenceUpdate, Payload: json.RawMessage(`{"cursor":{"x":1,"y":2}}`)})
	assert.Empty(t, drain(t, a))

	msgs := drain(t, b)
	require.Equal(t, []string{TypePresenceUpdate}, types(msgs))
	var p PresencePayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &p))
	assert.Equal(t, &CursorPos{X: 1, Y: 2}, p.Cursor)
	assert.Equal(t, "User a", p.DisplayName)

	got, ok := h.rooms["drw_a"].presence.Get("user-a")
	require.True(t, ok)
	assert.Equal(t, "User a", got.DisplayName)
}

func TestHubRequests(t *testing.T) {
	h := NewHub(emptyDrawing)
	go h.Run()

	ctx := context.Background()
	d := document.NewSampleDrawing("drw_sample")
	created, err := h.Open(ctx, d)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = h.Open(ctx, emptyDrawing("drw_sample"))
	require.NoError(t, err)
	assert.False(t, created)

	snap, err := h.Snapshot(ctx, "drw_sample")
	require.NoError(t, err)
	require.Len(t, snap.Shapes, len(d.Shapes))
	assert.NotSame(t, d.Shapes[0], snap.Shapes[0])

	_, err = h.Snapshot(ctx, "drw_missing")
	assert.ErrorIs(t, err, document.ErrDrawingNotFound)

	list, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "drw_sample", list[0].ID)
	assert.Equal(t, len(d.Shapes), list[0].Shapes)

	h.Stop()
	assert.ErrorIs(t, h.Do(ctx, func() {}), ErrHubStopped)
}

func TestHubDoCanceled(t *testing.T) {
	h := NewHub(emptyDrawing)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Do(ctx, func() {}), context.Canceled)
}

func TestDrawingStateSnapshotDropsHighlight(t *testing.T) {
	ds := NewDrawingState(emptyDrawing("drw_a"))
	_, err := ds.ApplyOperation(Operation{Type: OpShapeAdd, Kind: "rect"})
	require.NoError(t, err)
	_, err = ds.ApplyOperation(Operation{Type: OpPointerDown, X: 100, Y: 125})
	require.NoError(t, err)
	require.True(t, ds.Drawing().Shapes[0].Highlighted)

	snap := ds.Snapshot()
	assert.False(t, snap.Shapes[0].Highlighted)
	assert.True(t, ds.Drawing().Shapes[0].Highlighted)
}

func TestDrawingStateUndoAndStyle(t *testing.T) {
	ds := NewDrawingState(emptyDrawing("drw_a"))
	ops := []Operation{
		{Type: OpShapeAdd, Kind: "ellipse"},
		{Type: OpPointerDown, X: 200, Y: 150},
		{Type: OpPointerUp, X: 200, Y: 150},
		{Type: OpStyleUpdate, Stroke: "#ff0000", StrokeWidth: 3, Fill: "#00ff00"},
		{Type: OpAttrSet, Attr: "rx", Value: 80},
		{Type: OpSelectionDelete},
	}
	for i, op := range ops {
		seq, err := ds.ApplyOperation(op)
		require.NoError(t, err, op.Type)
		assert.Equal(t, int64(i+1), seq)
	}
	assert.Empty(t, ds.Drawing().Shapes)

	_, err := ds.ApplyOperation(Operation{Type: OpHistoryUndo})
	require.NoError(t, err)
	require.Len(t, ds.Drawing().Shapes, 1)
	s := ds.Drawing().Shapes[0]
	assert.Equal(t, shape.Style{Stroke: "#ff0000", StrokeWidth: 3, Fill: "#00ff00"}, s.Style)
	assert.Equal(t, 80.0, s.Geometry.(*shape.Ellipse).RX)
}

func TestJoinRefusedWhenFull(t *testing.T) {
	h := NewHub(emptyDrawing)
	h.SetRoomLimits(1, time.Minute)

	a := newTestClient(h, "drw_a", "a")
	h.addClient(a)
	drain(t, a)

	b := newTestClient(h, "drw_b", "b")
	h.addClient(b)
	msgs := drain(t, b)
	require.Equal(t, []string{TypeError}, types(msgs))
	_, open := <-b.send
	assert.False(t, open, "refused client's queue is closed")
	assert.NotContains(t, h.rooms, "drw_b")

	// A late unregister of the refused client is harmless.
	h.removeClient(b)

	// Joining an existing room is still allowed.
	c := newTestClient(h, "drw_a", "c")
	h.addClient(c)
	assert.Equal(t, TypeWelcome, drain(t, c)[0].Type)
}

func TestOpenRefusedWhenFull(t *testing.T) {
	h := NewHub(emptyDrawing)
	h.SetRoomLimits(1, time.Minute)
	go h.Run()
	t.Cleanup(h.Stop)

	ctx := context.Background()
	_, err := h.Open(ctx, emptyDrawing("drw_a"))
	require.NoError(t, err)

	created, err := h.Open(ctx, emptyDrawing("drw_b"))
	assert.ErrorIs(t, err, ErrTooManyRooms)
	assert.False(t, created)
}

func TestEvictIdleRooms(t *testing.T) {
	h := NewHub(emptyDrawing)
	h.SetRoomLimits(10, time.Minute)

	a := newTestClient(h, "drw_a", "a")
	h.addClient(a)
	h.removeClient(a)

	pinned := NewRoom(emptyDrawing("drw_pinned"))
	pinned.pinned = true
	pinned.emptySince = time.Now().Add(-time.Hour)
	h.rooms["drw_pinned"] = pinned

	busy := newTestClient(h, "drw_busy", "b")
	h.addClient(busy)

	h.evictIdle(time.Now())
	assert.Contains(t, h.rooms, "drw_a", "still within the idle TTL")

	h.evictIdle(time.Now().Add(2 * time.Minute))
	assert.NotContains(t, h.rooms, "drw_a")
	assert.Contains(t, h.rooms, "drw_pinned")
	assert.Contains(t, h.rooms, "drw_busy")
}
