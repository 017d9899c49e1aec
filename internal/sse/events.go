// Package sse implements Server-Sent Events for pushing library changes to the desktop GUI.
package sse

import (
	"time"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
)

// The GUI talks to the server over plain request/response; SSE is the
// one push channel. Events are advisory: every payload can also be
// refetched through the regular API, so a dropped event never leaves a
// client permanently stale.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is sent once to a client right after it subscribes.
	EventConnected EventType = "connected"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"

	// EventPromptCreated represents a prompt creation event.
	EventPromptCreated EventType = "prompt.created"
	// EventPromptUpdated fires when a prompt's title, tags, category,
	// or production pin change.
	EventPromptUpdated EventType = "prompt.updated"

	// EventVersionCreated fires for every new version row, whether it
	// came from a save, a rollback, or a file import.
	EventVersionCreated EventType = "version.created"

	// EventFilesChanged fires when the reconciler picks up edited or
	// newly created markdown files in the prompts directory.
	EventFilesChanged EventType = "files.changed"
	// EventFilesDeleted fires when mirror files disappear from disk.
	EventFilesDeleted EventType = "files.deleted"

	// EventSearchRebuilt fires after a full search index rebuild.
	EventSearchRebuilt EventType = "search.rebuilt"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// ConnectedEventData is the data payload for the initial connected event.
type ConnectedEventData struct {
	ClientID   string    `json:"client_id"`
	ServerTime time.Time `json:"server_time"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// PromptEventData is the data payload for prompt events.
type PromptEventData struct {
	Prompt *domain.Prompt `json:"prompt"`
}

// VersionEventData is the data payload for version events.
// Source records where the version came from: "save", "rollback", or "import".
type VersionEventData struct {
	Version *domain.Version `json:"version"`
	Source  string          `json:"source"`
}

// FilesChangedEventData is the data payload for files.changed events.
type FilesChangedEventData struct {
	Paths []string `json:"paths"`
}

// FilesDeletedEventData is the data payload for files.deleted events.
// Recovered lists the paths the reconciler regenerated from the database.
type FilesDeletedEventData struct {
	Paths     []string `json:"paths"`
	Recovered []string `json:"recovered"`
}

// SearchRebuiltEventData is the data payload for search.rebuilt events.
type SearchRebuiltEventData struct {
	Indexed int           `json:"indexed"`
	Took    time.Duration `json:"took_ns"`
}

// Version event sources.
const (
	SourceSave     = "save"
	SourceRollback = "rollback"
	SourceImport   = "import"
)

// NewConnectedEvent creates the connected event sent on subscribe.
func NewConnectedEvent(clientID string) Event {
	return Event{
		Type: EventConnected,
		Data: ConnectedEventData{
			ClientID:   clientID,
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewPromptCreatedEvent creates a prompt.created event.
func NewPromptCreatedEvent(prompt *domain.Prompt) Event {
	return Event{
		Type:      EventPromptCreated,
		Data:      PromptEventData{Prompt: prompt},
		Timestamp: time.Now(),
	}
}

// NewPromptUpdatedEvent creates a prompt.updated event.
func NewPromptUpdatedEvent(prompt *domain.Prompt) Event {
	return Event{
		Type:      EventPromptUpdated,
		Data:      PromptEventData{Prompt: prompt},
		Timestamp: time.Now(),
	}
}

// NewVersionCreatedEvent creates a version.created event.
func NewVersionCreatedEvent(version *domain.Version, source string) Event {
	return Event{
		Type: EventVersionCreated,
		Data: VersionEventData{
			Version: version,
			Source:  source,
		},
		Timestamp: time.Now(),
	}
}

// NewFilesChangedEvent creates a files.changed event.
func NewFilesChangedEvent(paths []string) Event {
	return Event{
		Type:      EventFilesChanged,
		Data:      FilesChangedEventData{Paths: paths},
		Timestamp: time.Now(),
	}
}

// NewFilesDeletedEvent creates a files.deleted event.
func NewFilesDeletedEvent(paths, recovered []string) Event {
	return Event{
		Type: EventFilesDeleted,
		Data: FilesDeletedEventData{
			Paths:     paths,
			Recovered: recovered,
		},
		Timestamp: time.Now(),
	}
}

// NewSearchRebuiltEvent creates a search.rebuilt event.
func NewSearchRebuiltEvent(indexed int, took time.Duration) Event {
	return Event{
		Type: EventSearchRebuilt,
		Data: SearchRebuiltEventData{
			Indexed: indexed,
			Took:    took,
		},
		Timestamp: time.Now(),
	}
}
