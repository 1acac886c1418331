package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultMovieCacheTTL = 5 * time.Minute

// tombstoneVersion outranks every real movie version, so nothing overwrites the
// marker a delete leaves behind until it expires.
const tombstoneVersion = math.MaxInt32

// storeIfNewerScript writes ARGV[1] unless the cached entry already carries a
// version greater than or equal to ARGV[2].
var storeIfNewerScript = redis.NewScript(`
	local current = redis.call("GET", KEYS[1])
	if current then
		local ok, entry = pcall(cjson.decode, current)
		if ok and type(entry) == "table" and tonumber(entry.version) and tonumber(entry.version) >= tonumber(ARGV[2]) then
			return 0
		end
	end

	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
	return 1
`)

// cacheEntry is what a movie key holds: either the movie or a deletion marker.
type cacheEntry struct {
	Version int           `json:"version"`
	Deleted bool          `json:"deleted,omitempty"`
	Movie   *domain.Movie `json:"movie,omitempty"`
}

// CachedMovieRepository is a read-through Redis cache in front of the catalog
// store. Only single movie lookups are cached.
//
// Writers store the committed movie (or a tombstone on delete) through a
// version check, and readers only fill an empty key. A reader that loaded a
// row before a concurrent write therefore cannot put the old row back.
// Redis failures are logged and the call falls through to the store.
type CachedMovieRepository struct {
	domain.MovieRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedMovieRepository(
	next domain.MovieRepository,
	client redis.UniversalClient,
	ttl time.Duration,
	logger *slog.Logger) *CachedMovieRepository {

	if ttl <= 0 {
		ttl = DefaultMovieCacheTTL
	}

	return &CachedMovieRepository{
		MovieRepository: next,
		client:          client,
		ttl:             ttl,
		logger:          logger,
	}
}

func movieCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("movie:%s", id)
}

func (c *CachedMovieRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	key := movieCacheKey(id)
	malformed := false

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cacheEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			if entry.Deleted {
				return nil, domain.ErrRecordNotFound
			}
			if entry.Movie != nil {
				return entry.Movie, nil
			}
		}
		c.logger.Warn("discarding malformed cached movie", "key", key)
		malformed = true
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("movie cache read failed", "key", key, "error", err)
	}

	movie, err := c.MovieRepository.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(cacheEntry{Version: movie.Version, Movie: movie})
	if err != nil {
		return nil, err
	}

	if malformed {
		err = c.client.Set(ctx, key, data, c.ttl).Err()
	} else {
		// a writer may have stored a newer movie since the read above
		err = c.client.SetNX(ctx, key, data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("movie cache write failed", "key", key, "error", err)
	}

	return movie, nil
}

func (c *CachedMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	err := c.MovieRepository.Update(ctx, movie)
	if err != nil {
		return err
	}

	c.store(ctx, movie.ID, cacheEntry{Version: movie.Version, Movie: movie}, c.ttl)

	return nil
}

func (c *CachedMovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.MovieRepository.Delete(ctx, id)
	if err != nil {
		return err
	}

	c.store(ctx, id, cacheEntry{Version: tombstoneVersion, Deleted: true}, c.ttl)

	return nil
}

// store writes entry unless a newer one is cached. When that fails the key is
// dropped instead.
func (c *CachedMovieRepository) store(ctx context.Context, id uuid.UUID, entry cacheEntry, ttl time.Duration) {
	key := movieCacheKey(id)

	data, err := json.Marshal(entry)
	if err == nil {
		err = storeIfNewerScript.Run(ctx, c.client, []string{key}, string(data), entry.Version, ttl.Milliseconds()).Err()
		if err == nil {
			return
		}
	}

	c.logger.Warn("movie cache write failed, invalidating", "key", key, "error", err)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("movie cache invalidation failed", "key", key, "error", err)
	}
}
