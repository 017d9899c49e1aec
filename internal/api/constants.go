package api

// ServerVersion is reported by the health endpoint so the GUI can
// detect a stale backend after an update.
const ServerVersion = "1.0.0"

// Write rate limits. Reads are unlimited; writes share per-resource
// token buckets sized for one human plus the occasional bulk action.
const (
	WriteRatePerMinute = 300
	WriteBurst         = 30
)
