package cumulative

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached quizzes carry a long TTL on purpose: the consistency guard, not
// the timer, is the real staleness signal. The TTL only bounds how long an
// orphaned entry can linger.
const defaultCacheTTL = 72 * time.Hour

// Cache provides Redis-backed storage of assembled cumulative quizzes so
// the hot read path skips Postgres entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ QuizCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(videoID int64, language string) string {
	return fmt.Sprintf("cumulative_quiz:%d:%s", videoID, language)
}

// Get returns the cached quiz, or nil when absent.
func (c *Cache) Get(ctx context.Context, videoID int64, language string) (*Quiz, error) {
	data, err := c.client.Get(ctx, cacheKey(videoID, language)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var quiz Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Set writes through a freshly generated quiz.
func (c *Cache) Set(ctx context.Context, quiz *Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(quiz.VideoID, quiz.Language), data, c.ttl).Err()
}

// Invalidate drops the cached entry for one (video, language) pair.
func (c *Cache) Invalidate(ctx context.Context, videoID int64, language string) error {
	return c.client.Del(ctx, cacheKey(videoID, language)).Err()
}
