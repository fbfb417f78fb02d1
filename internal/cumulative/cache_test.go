package cumulative

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	rs := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: rs.Addr()})
	return NewCache(client, ttl), rs
}

func sampleQuiz() *Quiz {
	return &Quiz{
		ID:               uuid.New(),
		VideoID:          42,
		SeriesID:         7,
		Language:         "en",
		Model:            "test-model",
		IncludedVideoIDs: []int64{40, 41, 42},
		VideoCount:       3,
		GeneratedAt:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Questions: []CombinedQuestion{
			{Text: "q", Type: TypeTrueFalse, Answer: "true", VideoContext: VideoContext{VideoID: 40, Position: 1}},
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	quiz := sampleQuiz()

	require.NoError(t, cache.Set(context.Background(), quiz))

	got, err := cache.Get(context.Background(), quiz.VideoID, quiz.Language)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, quiz.ID, got.ID)
	assert.Equal(t, quiz.IncludedVideoIDs, got.IncludedVideoIDs)
	assert.Equal(t, quiz.Questions, got.Questions)
}

func TestCacheMissReturnsNil(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)

	got, err := cache.Get(context.Background(), 999, "en")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheKeyIsLanguageScoped(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	quiz := sampleQuiz()
	require.NoError(t, cache.Set(context.Background(), quiz))

	got, err := cache.Get(context.Background(), quiz.VideoID, "de")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	quiz := sampleQuiz()
	require.NoError(t, cache.Set(context.Background(), quiz))

	require.NoError(t, cache.Invalidate(context.Background(), quiz.VideoID, quiz.Language))

	got, err := cache.Get(context.Background(), quiz.VideoID, quiz.Language)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, rs := newTestCache(t, time.Minute)
	quiz := sampleQuiz()
	require.NoError(t, cache.Set(context.Background(), quiz))

	rs.FastForward(2 * time.Minute)

	got, err := cache.Get(context.Background(), quiz.VideoID, quiz.Language)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheDefaultTTL(t *testing.T) {
	cache, rs := newTestCache(t, 0)
	quiz := sampleQuiz()
	require.NoError(t, cache.Set(context.Background(), quiz))

	// The guard, not the timer, handles staleness; the default TTL is long.
	ttl := rs.TTL(cacheKey(quiz.VideoID, quiz.Language))
	assert.Equal(t, defaultCacheTTL, ttl)
}
