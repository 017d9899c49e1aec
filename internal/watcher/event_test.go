package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventCreated, "created"},
		{EventModified, "modified"},
		{EventRemoved, "removed"},
		{EventOther, "other"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.eventType.String()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvent_Creation(t *testing.T) {
	now := time.Now()
	event := Event{
		Type:    EventCreated,
		Path:    "/prompts/2025-01-15--note--v1.0.0.md",
		Size:    1024,
		ModTime: now,
	}

	assert.Equal(t, EventCreated, event.Type)
	assert.Equal(t, "/prompts/2025-01-15--note--v1.0.0.md", event.Path)
	assert.Equal(t, int64(1024), event.Size)
	assert.Equal(t, now, event.ModTime)
}
