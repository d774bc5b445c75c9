package collab

import (
	"encoding/json"
	"log/slog"
	"maps"
)

// PresenceManager tracks the cursor and selection each user of a room
// reports. Like the rest of a room it lives on the hub goroutine.
type PresenceManager struct {
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update stores p for userID. A cursor with a non-finite coordinate is
// dropped rather than relayed.
func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	if p.Cursor != nil && !finite(p.Cursor.X, p.Cursor.Y) {
		p.Cursor = nil
	}
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	delete(pm.presences, userID)
}

func (pm *PresenceManager) Get(userID string) (*PresencePayload, bool) {
	p, ok := pm.presences[userID]
	return p, ok
}

func (pm *PresenceManager) StateMessage(drawingID string) *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: maps.Clone(pm.presences)})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:      TypePresenceState,
		DrawingID: drawingID,
		Payload:   payload,
	}
}
