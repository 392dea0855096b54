package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
)

// Store persists carts between restarts. The in-memory service is the
// source of truth for a running process; the store is durability only.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, userID uuid.UUID, c *Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// ErrCartNotStored means no persisted cart exists for the user.
var ErrCartNotStored = errors.New("no stored cart")

const cartKeyPrefix = "cart:"

// Carts idle for this long are dropped from Redis. Mirrors the session
// behaviour: an abandoned cart does not need to outlive the week.
const cartTTL = 7 * 24 * time.Hour

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) key(userID uuid.UUID) string {
	return cartKeyPrefix + userID.String()
}

func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotStored
		}
		return nil, fmt.Errorf("cart store: failed to load cart for user %s: %w", userID, err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cart store: failed to decode cart for user %s: %w", userID, err)
	}
	return &c, nil
}

func (s *redisStore) Save(ctx context.Context, userID uuid.UUID, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart store: failed to encode cart for user %s: %w", userID, err)
	}

	if err := s.client.Set(ctx, s.key(userID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("cart store: failed to save cart for user %s: %w", userID, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("cart store: failed to delete cart for user %s: %w", userID, err)
	}
	return nil
}
