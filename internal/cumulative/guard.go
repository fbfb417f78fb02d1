package cumulative

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/skillstream/study-platform/internal/series"
)

// Guard decides whether a stored cumulative quiz still reflects the current
// series structure. It detects membership drift only: the recorded member
// set is compared against a fresh resolver run. Content-level edits to an
// included individual quiz are a known staleness window and intentionally
// do not invalidate.
type Guard struct {
	resolver *series.Resolver
	logger   zerolog.Logger
}

func NewGuard(resolver *series.Resolver, logger zerolog.Logger) *Guard {
	return &Guard{
		resolver: resolver,
		logger:   logger.With().Str("component", "consistency_guard").Logger(),
	}
}

// IsValid recomputes the member prefix for the stored quiz's anchor and
// compares the sorted id sets. Any recomputation failure counts as invalid:
// regenerating is always safer than serving a potentially wrong aggregate.
func (g *Guard) IsValid(ctx context.Context, stored *Quiz) bool {
	if stored == nil {
		return false
	}

	positions, err := g.resolver.PositionsUpTo(ctx, stored.SeriesID, stored.VideoID)
	if err != nil {
		g.logger.Warn().Err(err).
			Int64("video_id", stored.VideoID).
			Int64("series_id", stored.SeriesID).
			Msg("member recomputation failed, treating cached quiz as stale")
		return false
	}

	current := make([]int64, len(positions))
	for i, p := range positions {
		current[i] = p.VideoID
	}
	recorded := slices.Clone(stored.IncludedVideoIDs)

	slices.Sort(current)
	slices.Sort(recorded)
	return slices.Equal(current, recorded)
}
