package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airline/config"
	"github.com/Domenick1991/airline/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	flightsPrefix = "cache:flights"
	flightsGenKey = "cache:flights:gen"
	draftPrefix   = "draft:"
	sessionPrefix = "session:"
)

// RedisCache keeps flight search results, draft orders and login sessions.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns the search result cached under key. ok is false on a miss.
func (c *RedisCache) GetFlights(ctx context.Context, key string) ([]domain.Flight, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, false, err
	}
	return flights, true, nil
}

// SetFlights stores a search result under a key taken from FlightsKey before the
// database read, so a result loaded across an invalidation lands in the old generation.
func (c *RedisCache) SetFlights(ctx context.Context, key string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.flightsTTL).Err()
}

// InvalidateFlights bumps the generation so every cached search misses.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Incr(ctx, flightsGenKey).Err()
}

// FlightsKey names the cache entry of a search in the current generation.
func (c *RedisCache) FlightsKey(ctx context.Context, s domain.FlightSearch) (string, error) {
	gen, err := c.client.Get(ctx, flightsGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	date := "*"
	if s.Date != nil {
		date = s.Date.Format(time.DateOnly)
	}
	return fmt.Sprintf("%s:%d:%s|%s|%s", flightsPrefix, gen, date, s.Origin, s.Destination), nil
}

// SaveDraft stores the order until its ExpiresAt.
func (c *RedisCache) SaveDraft(ctx context.Context, order *domain.DraftOrder) error {
	ttl := time.Until(order.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: order %s already expired", domain.ErrValidation, order.ID)
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, draftPrefix+order.ID, payload, ttl).Err()
}

func (c *RedisCache) GetDraft(ctx context.Context, id string) (*domain.DraftOrder, error) {
	data, err := c.client.Get(ctx, draftPrefix+id).Bytes()
	return decodeDraft(id, data, err)
}

// PopDraft returns the order and removes it in one step.
func (c *RedisCache) PopDraft(ctx context.Context, id string) (*domain.DraftOrder, error) {
	data, err := c.client.GetDel(ctx, draftPrefix+id).Bytes()
	return decodeDraft(id, data, err)
}

func decodeDraft(id string, data []byte, err error) (*domain.DraftOrder, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w %s", domain.ErrDraftOrderNotFound, id)
		}
		return nil, err
	}

	var order domain.DraftOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *RedisCache) SaveSession(ctx context.Context, s *domain.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionPrefix+s.Token, payload, time.Until(s.ExpiresAt)).Err()
}

func (c *RedisCache) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	data, err := c.client.Get(ctx, sessionPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: session", domain.ErrNotFound)
		}
		return nil, err
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RedisCache) DeleteSession(ctx context.Context, token string) error {
	return c.client.Del(ctx, sessionPrefix+token).Err()
}
