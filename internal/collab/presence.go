package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// presenceTTL is how long a cursor stays visible without updates.
// Editors send presence on every pointer move, so a quiet entry means
// the peer went idle; joiners should not see its stale cursor.
const presenceTTL = 2 * time.Minute

type presenceEntry struct {
	payload *PresencePayload
	seen    time.Time
}

// PresenceManager tracks per-user cursors (world coordinates) and
// selected object ids within a room, remembering when each was last
// refreshed.
type PresenceManager struct {
	mu      sync.RWMutex
	entries map[string]presenceEntry // userID -> latest presence

	now func() time.Time
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		entries: make(map[string]presenceEntry),
		now:     time.Now,
	}
}

func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.entries[userID] = presenceEntry{payload: p, seen: pm.now()}
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.entries, userID)
}

// Snapshot returns the presences still considered live.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	cutoff := pm.now().Add(-presenceTTL)
	live := make(map[string]*PresencePayload, len(pm.entries))
	for userID, e := range pm.entries {
		if e.seen.Before(cutoff) {
			continue
		}
		live[userID] = e.payload
	}
	return live
}

// StateMessage builds the presence.state message sent to joiners, or
// nil when the room has no live cursors to report.
func (pm *PresenceManager) StateMessage() *Message {
	live := pm.Snapshot()
	if len(live) == 0 {
		return nil
	}

	payload, err := json.Marshal(PresenceStatePayload{Presences: live})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
