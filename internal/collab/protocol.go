package collab

import (
	"encoding/json"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/editor"
)

type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Full drawing plus scene, sent on join
	TypeDocSync = "doc.sync"

	// Rendered scene, broadcast after every applied operation
	TypeSceneRender = "scene.render"

	// Operation message types
	TypeOpSubmit = "op.submit"
	TypeOpAck    = "op.ack"
	TypeOpNack   = "op.nack"
)

// Operation types, one per editor entry point.
const (
	OpPointerDown     = "pointer.down"
	OpPointerMove     = "pointer.move"
	OpPointerUp       = "pointer.up"
	OpSessionCancel   = "session.cancel"
	OpShapeAdd        = "shape.add"
	OpSelectionDelete = "selection.delete"
	OpStyleUpdate     = "style.update"
	OpAttrSet         = "attr.set"
	OpHistoryUndo     = "history.undo"
)

// Operation is one editor event submitted by a client. Only the fields of
// its Type are read.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ClientSeq int64  `json:"clientSeq"`

	// pointer.*
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// shape.add
	Kind string `json:"kind,omitempty"`

	// style.update
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Fill        string  `json:"fill,omitempty"`

	// attr.set
	Attr  string  `json:"attr,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID string `json:"operationId"`
	ServerSeq   int64  `json:"serverSeq"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

// ScenePayload is the payload for scene.render and, with Drawing set,
// doc.sync messages.
type ScenePayload struct {
	ServerSeq int64                `json:"serverSeq"`
	Drawing   *document.Drawing    `json:"drawing,omitempty"`
	Commands  []editor.DrawCommand `json:"commands"`
	State     editor.State         `json:"state"`
}
