package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sadsod/storefront/internal/domain/cart"
)

const cartKeyPrefix = "sadsod:cart:"

// cartPayload is the stored JSON form of a cart
type cartPayload struct {
	Items map[uuid.UUID]int64 `json:"items"`
}

// RedisCartStore keeps each session's cart as a JSON value with a TTL.
// Every save pushes the expiry forward, so active carts do not expire.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a cart store on an existing Redis client
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client:    client,
		keyPrefix: cartKeyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisCartStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

// Load returns the stored cart, or an empty one when the session has none
func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (cart.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return cart.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}
	return decodeCart(raw)
}

// Save stores the cart; an empty cart deletes the key
func (s *RedisCartStore) Save(ctx context.Context, sessionID string, c cart.Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, sessionID)
	}
	raw, err := encodeCart(c)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the session's cart
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// Take removes and returns the session's cart with GETDEL
func (s *RedisCartStore) Take(ctx context.Context, sessionID string) (cart.Cart, error) {
	raw, err := s.client.GetDel(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return cart.Cart{}, fmt.Errorf("failed to take cart: %w", err)
	}
	return decodeCart(raw)
}

func encodeCart(c cart.Cart) ([]byte, error) {
	raw, err := json.Marshal(cartPayload{Items: c.Items()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return raw, nil
}

func decodeCart(raw []byte) (cart.Cart, error) {
	var payload cartPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return cart.Cart{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	return cart.FromMap(payload.Items), nil
}

var _ cart.Store = (*RedisCartStore)(nil)
