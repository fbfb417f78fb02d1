package series

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/skillstream/study-platform/internal/video"
)

// ErrNotPositioned is returned when the anchor video does not appear in the
// resolved order of its series (typically the video dropped out of the ready
// state between lookups). Callers must treat it as NotFound, never as an
// empty prefix.
var ErrNotPositioned = errors.New("anchor video not positioned in series")

// Position is one slot in the resolved series order.
type Position struct {
	VideoID  int64  `json:"video_id,string"`
	Title    string `json:"title"`
	Position int    `json:"position"` // 1-based
}

// VideoLister enumerates the videos owned by a series. Implemented by the
// video repository; the enumeration order must be stable for a given data
// snapshot (the repository orders by primary key).
type VideoLister interface {
	ListSeriesVideos(ctx context.Context, seriesID int64) ([]video.Video, error)
}

// Resolver computes the deterministic total order of a series' ready videos.
type Resolver struct {
	videos VideoLister
}

func NewResolver(videos VideoLister) *Resolver {
	return &Resolver{videos: videos}
}

// PositionsUpTo returns the ordered prefix of the series ending at, and
// including, anchorVideoID. Ordering key: metadata order hint ascending with
// absent hints last, then creation time ascending, then video id as the
// stable fallback. Only ready videos participate.
func (r *Resolver) PositionsUpTo(ctx context.Context, seriesID, anchorVideoID int64) ([]Position, error) {
	ordered, err := r.Positions(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	for i, p := range ordered {
		if p.VideoID == anchorVideoID {
			return ordered[:i+1], nil
		}
	}
	return nil, fmt.Errorf("video %d in series %d: %w", anchorVideoID, seriesID, ErrNotPositioned)
}

// Positions resolves the full order of a series' ready videos.
func (r *Resolver) Positions(ctx context.Context, seriesID int64) ([]Position, error) {
	members, err := r.videos.ListSeriesVideos(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("list series %d videos: %w", seriesID, err)
	}

	ready := members[:0:0]
	for _, v := range members {
		if v.Ready() {
			ready = append(ready, v)
		}
	}

	sort.SliceStable(ready, func(i, j int) bool {
		return orderLess(ready[i], ready[j])
	})

	positions := make([]Position, len(ready))
	for i, v := range ready {
		positions[i] = Position{VideoID: v.ID, Title: v.Title, Position: i + 1}
	}
	return positions, nil
}

func orderLess(a, b video.Video) bool {
	ah, aok := a.OrderHint()
	bh, bok := b.OrderHint()
	switch {
	case aok && bok && ah != bh:
		return ah < bh
	case aok != bok:
		return aok // hinted videos sort before unhinted
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
