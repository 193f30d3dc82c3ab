package collab

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPresenceUpdateAndRemove(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update("user_a", &PresencePayload{Cursor: &CursorPos{X: 10, Y: 20}})
	pm.Update("user_b", &PresencePayload{Selection: []string{"comp_1"}})

	live := pm.Snapshot()
	if len(live) != 2 {
		t.Fatalf("snapshot has %d entries, want 2", len(live))
	}
	if live["user_a"].Cursor == nil || live["user_a"].Cursor.X != 10 {
		t.Error("user_a cursor lost")
	}

	pm.Remove("user_a")
	if _, ok := pm.Snapshot()["user_a"]; ok {
		t.Error("removed user still present")
	}
}

func TestPresenceSnapshotDropsStale(t *testing.T) {
	pm := NewPresenceManager()

	clock := time.Now()
	pm.now = func() time.Time { return clock }

	pm.Update("user_idle", &PresencePayload{Cursor: &CursorPos{X: 1, Y: 1}})

	clock = clock.Add(presenceTTL + time.Second)
	pm.Update("user_active", &PresencePayload{Cursor: &CursorPos{X: 2, Y: 2}})

	live := pm.Snapshot()
	if _, ok := live["user_idle"]; ok {
		t.Error("stale presence survived the TTL")
	}
	if _, ok := live["user_active"]; !ok {
		t.Error("fresh presence dropped")
	}

	// A new update revives a stale entry.
	pm.Update("user_idle", &PresencePayload{Cursor: &CursorPos{X: 3, Y: 3}})
	if _, ok := pm.Snapshot()["user_idle"]; !ok {
		t.Error("refreshed presence still stale")
	}
}

func TestPresenceStateMessage(t *testing.T) {
	pm := NewPresenceManager()
	if msg := pm.StateMessage(); msg != nil {
		t.Error("empty room must produce no presence state message")
	}

	pm.Update("user_a", &PresencePayload{DisplayName: "Ada", Cursor: &CursorPos{X: 5, Y: 5}})
	msg := pm.StateMessage()
	if msg == nil || msg.Type != TypePresenceState {
		t.Fatalf("state message = %+v, want type %s", msg, TypePresenceState)
	}

	var payload PresenceStatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Presences["user_a"].DisplayName != "Ada" {
		t.Error("display name lost in state payload")
	}
}
