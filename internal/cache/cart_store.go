// Package cache keeps session carts outside the request lifecycle.
package cache

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lamason/internal/models"
	"lamason/internal/pricing"
)

// CartStore loads and saves the cart behind a session id. Load never fails
// for a missing or unreadable cart; it returns an empty one instead.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*pricing.Cart, error)
	Save(ctx context.Context, sessionID string, cart *pricing.Cart) error
	// Update applies change to the stored cart and saves the result. A write
	// by another request in between is never lost. Nothing is saved when
	// change fails.
	Update(ctx context.Context, sessionID string, change func(*pricing.Cart) error) (*pricing.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

// ErrCartContention means the cart kept changing under Update.
var ErrCartContention = errors.New("cart changed concurrently")

const updateAttempts = 3

func CartKey(sessionID string) string {
	return "cart:" + sessionID
}

type RedisCartStore struct {
	Client *redis.Client
	TTL    time.Duration
	Rates  pricing.Rates
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration, rates pricing.Rates) *RedisCartStore {
	return &RedisCartStore{Client: client, TTL: ttl, Rates: rates}
}

func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (*pricing.Cart, error) {
	cart, unreadable, err := s.read(ctx, s.Client, sessionID)
	if err != nil {
		return nil, err
	}
	if unreadable {
		if err := s.Client.Del(ctx, CartKey(sessionID)).Err(); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// getter is the part of a client or a watched transaction that read needs.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// read returns an empty cart for a missing key and flags a payload that could
// not be decoded.
func (s *RedisCartStore) read(ctx context.Context, c getter, sessionID string) (*pricing.Cart, bool, error) {
	data, err := c.Get(ctx, CartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return pricing.NewCart(s.Rates, models.OrderTypePickup), false, nil
	}
	if err != nil {
		return nil, false, err
	}

	cart, err := pricing.UnmarshalCart(data, s.Rates)
	if err != nil {
		log.Printf("[CART] [WARN] resetting unreadable cart %s: %v", sessionID, err)
		return pricing.NewCart(s.Rates, models.OrderTypePickup), true, nil
	}
	return cart, false, nil
}

// Update watches the cart key so a concurrent write aborts the transaction,
// then re-reads and applies change again.
func (s *RedisCartStore) Update(ctx context.Context, sessionID string, change func(*pricing.Cart) error) (*pricing.Cart, error) {
	key := CartKey(sessionID)
	var updated *pricing.Cart

	txf := func(tx *redis.Tx) error {
		cart, _, err := s.read(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := change(cart); err != nil {
			return err
		}
		data, err := pricing.MarshalCart(cart)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.TTL)
			return nil
		})
		if err == nil {
			updated = cart
		}
		return err
	}

	for attempt := 0; attempt < updateAttempts; attempt++ {
		err := s.Client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			log.Printf("[CART] [WARN] cart %s changed concurrently, retrying", sessionID)
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrCartContention
}

// Save writes the cart and refreshes its TTL.
func (s *RedisCartStore) Save(ctx context.Context, sessionID string, cart *pricing.Cart) error {
	data, err := pricing.MarshalCart(cart)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, CartKey(sessionID), data, s.TTL).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	return s.Client.Del(ctx, CartKey(sessionID)).Err()
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// sweepInterval is how often writes drop expired sessions from memory.
const sweepInterval = time.Minute

// MemoryCartStore is the single-process fallback used when no Redis address
// is configured. It stores the same versioned payload as Redis. Expired
// sessions are dropped on read and by a sweep that runs on writes.
type MemoryCartStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	rates     pricing.Rates
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryCartStore(ttl time.Duration, rates pricing.Rates) *MemoryCartStore {
	return &MemoryCartStore{entries: map[string]memoryEntry{}, ttl: ttl, rates: rates, now: time.Now}
}

func (s *MemoryCartStore) Load(_ context.Context, sessionID string) (*pricing.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(sessionID), nil
}

// load expects s.mu to be held.
func (s *MemoryCartStore) load(sessionID string) *pricing.Cart {
	entry, ok := s.entries[CartKey(sessionID)]
	if !ok || (s.ttl > 0 && s.now().After(entry.expires)) {
		delete(s.entries, CartKey(sessionID))
		return pricing.NewCart(s.rates, models.OrderTypePickup)
	}

	cart, err := pricing.UnmarshalCart(entry.data, s.rates)
	if err != nil {
		log.Printf("[CART] [WARN] resetting unreadable cart %s: %v", sessionID, err)
		delete(s.entries, CartKey(sessionID))
		return pricing.NewCart(s.rates, models.OrderTypePickup)
	}
	return cart
}

func (s *MemoryCartStore) Save(_ context.Context, sessionID string, cart *pricing.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(sessionID, cart)
}

// Update holds the store lock across load, change and save.
func (s *MemoryCartStore) Update(_ context.Context, sessionID string, change func(*pricing.Cart) error) (*pricing.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(sessionID)
	if err := change(cart); err != nil {
		return nil, err
	}
	if err := s.save(sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// save expects s.mu to be held.
func (s *MemoryCartStore) save(sessionID string, cart *pricing.Cart) error {
	data, err := pricing.MarshalCart(cart)
	if err != nil {
		return err
	}

	now := s.now()
	s.sweep(now)
	s.entries[CartKey(sessionID)] = memoryEntry{data: data, expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryCartStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return
	}
	for key, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, key)
		}
	}
	s.nextSweep = now.Add(sweepInterval)
}

func (s *MemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, CartKey(sessionID))
	return nil
}
