package video

import (
	"encoding/json"
	"strconv"
	"time"
)

// Lifecycle states for uploaded videos. Only ready videos participate in
// series ordering and cumulative aggregation.
const (
	StatePending    = "pending"
	StateProcessing = "processing"
	StateReady      = "ready"
	StateFailed     = "failed"
)

// Video is a portal video as stored in Postgres. IDs are int64 and travel
// as JSON strings so they survive clients that parse numbers as float64.
type Video struct {
	ID        int64          `json:"id,string"`
	SeriesID  *int64         `json:"series_id,string,omitempty"`
	Title     string         `json:"title"`
	State     string         `json:"state"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Series groups videos into an ordered course/playlist.
type Series struct {
	ID        int64     `json:"id,string"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderHint extracts the signed ordering hint from the video's metadata
// ("order" key). The second return is false when no usable hint is present,
// in which case the video sorts after all hinted videos.
func (v Video) OrderHint() (int64, bool) {
	raw, ok := v.Metadata["order"]
	if !ok || raw == nil {
		return 0, false
	}
	switch n := raw.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Ready reports whether the video is in the ready lifecycle state.
func (v Video) Ready() bool {
	return v.State == StateReady
}
