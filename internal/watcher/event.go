package watcher

import "time"

// EventType represents the type of file system event.
type EventType int

const (
	// EventCreated is emitted when a new file appears (after settling)
	EventCreated EventType = iota
	// EventModified is emitted when an existing file changes (after settling)
	EventModified
	// EventRemoved is emitted when a file is deleted or renamed away
	EventRemoved
	// EventOther covers notifications that carry no content change,
	// such as permission updates. Consumers normally ignore it.
	EventOther
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	case EventOther:
		return "other"
	default:
		return "unknown"
	}
}

// Event represents a file system event.
type Event struct {
	// Type is the kind of event (created, modified, removed, other)
	Type EventType

	// Path is the file path
	Path string

	// Size is the file size in bytes (zero for removals)
	Size int64

	// ModTime is the file's last modification time (zero for removals)
	ModTime time.Time
}
