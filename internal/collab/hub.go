package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/editor"
)

var (
	ErrHubStopped   = errors.New("hub stopped")
	ErrTooManyRooms = errors.New("too many open drawings")
)

const (
	DefaultMaxRooms    = 1000
	DefaultIdleRoomTTL = 10 * time.Minute

	sweepInterval = time.Minute
)

type Room struct {
	drawingID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DrawingState

	// Pinned rooms were opened explicitly and are never evicted.
	pinned     bool
	emptySince time.Time
}

func NewRoom(d *document.Drawing, opts ...editor.Option) *Room {
	return &Room{
		drawingID: d.ID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     NewDrawingState(d, opts...),
	}
}

// DrawingFactory creates the drawing behind a room opened for an id that
// has none yet.
type DrawingFactory func(drawingID string) *document.Drawing

type inbound struct {
	client *Client
	msg    *Message
}

// Hub owns every room. All room state, including each room's editor, is only
// touched on the goroutine running Run; other goroutines reach it through
// channels.
type Hub struct {
	rooms      map[string]*Room // drawingID -> room
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	requests   chan func()
	stop       chan struct{}
	done       chan struct{}

	newDrawing DrawingFactory
	editorOpts []editor.Option

	maxRooms    int
	idleRoomTTL time.Duration
}

func NewHub(newDrawing DrawingFactory, opts ...editor.Option) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 256),
		requests:   make(chan func()),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		newDrawing:  newDrawing,
		editorOpts:  opts,
		maxRooms:    DefaultMaxRooms,
		idleRoomTTL: DefaultIdleRoomTTL,
	}
}

// SetRoomLimits caps the number of open rooms and sets how long a room
// joined by id stays open once its last client leaves. Call before Run.
func (h *Hub) SetRoomLimits(maxRooms int, idleTTL time.Duration) {
	h.maxRooms = maxRooms
	h.idleRoomTTL = idleTTL
}

func (h *Hub) Run() {
	defer close(h.done)
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()
	for {
		select {
		case now := <-sweep.C:
			h.evictIdle(now)
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		case fn := <-h.requests:
			fn()
		case <-h.stop:
			for _, room := range h.rooms {
				for _, c := range room.clients {
					close(c.send)
				}
			}
			h.rooms = map[string]*Room{}
			return
		}
	}
}

// Stop ends Run and closes every client's send queue.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Submit queues a client message for the hub goroutine.
func (h *Hub) Submit(client *Client, msg *Message) {
	select {
	case h.inbound <- inbound{client: client, msg: msg}:
	case <-h.done:
	}
}

// Do runs fn on the hub goroutine and waits for it to return.
func (h *Hub) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case h.requests <- wrapped:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// Snapshot returns a copy of the current state of a drawing.
func (h *Hub) Snapshot(ctx context.Context, drawingID string) (*document.Drawing, error) {
	var snap *document.Drawing
	if err := h.Do(ctx, func() {
		if room, ok := h.rooms[drawingID]; ok {
			snap = room.state.Snapshot()
		}
	}); err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", document.ErrDrawingNotFound, drawingID)
	}
	return snap, nil
}

// DrawingInfo summarizes an open room.
type DrawingInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Shapes  int    `json:"shapes"`
	Clients int    `json:"clients"`
	Seq     int64  `json:"seq"`
}

// List describes every open room.
func (h *Hub) List(ctx context.Context) ([]DrawingInfo, error) {
	var out []DrawingInfo
	err := h.Do(ctx, func() {
		out = make([]DrawingInfo, 0, len(h.rooms))
		for _, room := range h.rooms {
			d := room.state.Drawing()
			out = append(out, DrawingInfo{
				ID:      d.ID,
				Name:    d.Name,
				Shapes:  len(d.Shapes),
				Clients: len(room.clients),
				Seq:     room.state.Seq(),
			})
		}
	})
	return out, err
}

// Open adds a pinned room for d unless one exists for its id, and reports
// whether it did.
func (h *Hub) Open(ctx context.Context, d *document.Drawing) (bool, error) {
	var created bool
	var openErr error
	err := h.Do(ctx, func() {
		if room, ok := h.rooms[d.ID]; ok {
			room.pinned = true
			return
		}
		if len(h.rooms) >= h.maxRooms {
			openErr = fmt.Errorf("open %s: %w", d.ID, ErrTooManyRooms)
			return
		}
		room := NewRoom(d, h.editorOpts...)
		room.pinned = true
		h.rooms[d.ID] = room
		created = true
	})
	if err != nil {
		return false, err
	}
	return created, openErr
}

// room returns the room for drawingID, opening one from the factory if
// there is room for it.
func (h *Hub) room(drawingID string) (*Room, error) {
	if room, ok := h.rooms[drawingID]; ok {
		return room, nil
	}
	if len(h.rooms) >= h.maxRooms {
		return nil, ErrTooManyRooms
	}
	room := NewRoom(h.newDrawing(drawingID), h.editorOpts...)
	h.rooms[drawingID] = room
	slog.Info("room opened", "drawing", drawingID)
	return room, nil
}

// evictIdle closes unpinned rooms that have had no clients for longer than
// the idle TTL.
func (h *Hub) evictIdle(now time.Time) {
	for id, room := range h.rooms {
		if room.pinned || len(room.clients) > 0 || room.emptySince.IsZero() {
			continue
		}
		if now.Sub(room.emptySince) >= h.idleRoomTTL {
			delete(h.rooms, id)
			slog.Info("room evicted", "drawing", id, "seq", room.state.Seq())
		}
	}
}

func (h *Hub) addClient(client *Client) {
	room, err := h.room(client.DrawingID)
	if err != nil {
		slog.Warn("join refused", "drawing", client.DrawingID, "user", client.UserID, "error", err)
		sendError(client, err.Error())
		close(client.send)
		return
	}
	room.clients[client.ClientID] = client
	room.emptySince = time.Time{}

	welcome, _ := json.Marshal(WelcomePayload{ClientID: client.ClientID, UserID: client.UserID})
	client.Send(&Message{Type: TypeWelcome, DrawingID: client.DrawingID, Payload: welcome})

	scene, err := json.Marshal(room.state.Scene(true))
	if err != nil {
		slog.Error("marshal doc sync", "error", err, "drawing", client.DrawingID)
	} else {
		client.Send(&Message{Type: TypeDocSync, DrawingID: client.DrawingID, Seq: room.state.Seq(), Payload: scene})
	}

	// Send current presence state to new client
	stateMsg := room.presence.StateMessage(client.DrawingID)
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(client.DrawingID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.DrawingID]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	// Rooms outlive their clients so the drawing stays exportable; unpinned
	// ones are evicted after the idle TTL.
	if len(room.clients) == 0 {
		room.emptySince = time.Now()
	}

	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg := &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}
	h.broadcastToRoom(client.DrawingID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	// Messages queued before an unregister may arrive after it; the sender's
	// queue is closed by then.
	room, ok := h.rooms[sender.DrawingID]
	if !ok || room.clients[sender.ClientID] != sender {
		return
	}

	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sendError(sender, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	room, ok := h.rooms[sender.DrawingID]
	if !ok {
		return
	}

	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sendError(sender, "invalid operation payload")
		return
	}
	op := submit.Operation

	seq, err := room.state.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "error", err, "user", sender.UserID)
		nack, _ := json.Marshal(OperationNackPayload{OperationID: op.ID, Reason: err.Error()})
		sender.Send(&Message{Type: TypeOpNack, DrawingID: sender.DrawingID, Payload: nack})
		return
	}

	ack, _ := json.Marshal(OperationAckPayload{OperationID: op.ID, ServerSeq: seq})
	sender.Send(&Message{Type: TypeOpAck, DrawingID: sender.DrawingID, Seq: seq, Payload: ack})

	// Pointer moves outside a session change nothing worth a frame.
	if op.Type == OpPointerMove && !room.state.Editor().Busy() {
		return
	}

	scene, err := json.Marshal(room.state.Scene(false))
	if err != nil {
		slog.Error("marshal scene", "error", err, "drawing", sender.DrawingID)
		return
	}
	h.broadcastToRoom(sender.DrawingID, &Message{
		Type:      TypeSceneRender,
		DrawingID: sender.DrawingID,
		UserID:    sender.UserID,
		Seq:       seq,
		Payload:   scene,
	}, "")
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room, ok := h.rooms[sender.DrawingID]
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outPayload, _ := json.Marshal(presence)
	outMsg := &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}
	h.broadcastToRoom(sender.DrawingID, outMsg, sender.ClientID)
}

func (h *Hub) broadcastToRoom(drawingID string, msg *Message, excludeClientID string) {
	room, ok := h.rooms[drawingID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

func sendError(c *Client, text string) {
	payload, _ := json.Marshal(ErrorPayload{Message: text})
	c.Send(&Message{Type: TypeError, Payload: payload})
}
