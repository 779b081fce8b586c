package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotPendingTaskWireFormat(t *testing.T) {
	snap := NewSnapshot(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	snap.Metadata["channel"] = "web"
	snap.PendingTask = &PendingTask{Title: "Call mom", Details: "remind me to call mom"}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pending_task":{"title":"Call mom","details":"remind me to call mom"}`)
	assert.NotContains(t, snap.Metadata, MetadataPendingTask, "marshal must not touch the live map")

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotNil(t, decoded.PendingTask)
	assert.Equal(t, *snap.PendingTask, *decoded.PendingTask)
	assert.Equal(t, "web", decoded.Metadata["channel"])
	assert.True(t, snap.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestSnapshotAppend(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		appends int
		want    int
	}{
		{"under limit", 3, 2, 2},
		{"at limit", 3, 3, 3},
		{"over limit", 3, 7, 3},
		{"no limit", 0, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := NewSnapshot(time.Now())
			for i := 0; i < tt.appends; i++ {
				snap.Append(HistoryEntry{Role: RoleUser, Content: string(rune('a' + i))}, tt.max)
			}
			require.Len(t, snap.History, tt.want)
			assert.Equal(t, string(rune('a'+tt.appends-1)), snap.History[len(snap.History)-1].Content)
		})
	}
}

func TestPendingTaskFromValue(t *testing.T) {
	assert.Nil(t, PendingTaskFromValue(nil))
	assert.Nil(t, PendingTaskFromValue(42))
	assert.Equal(t, &PendingTask{Title: "a", Details: "b"}, PendingTaskFromValue(map[string]string{"title": "a", "details": "b"}))
	assert.Equal(t, &PendingTask{Title: "a"}, PendingTaskFromValue(PendingTask{Title: "a"}))
}
