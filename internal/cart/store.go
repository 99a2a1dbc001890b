package cart

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/online-shop/internal/model"
)

// Store keeps per-user cart snapshots between requests.  A snapshot is
// the ordered slice of cart lines exactly as the storefront last saw
// them; validation may rewrite it before checkout.
type Store interface {
    // Load returns the saved snapshot, or an empty slice when the user
    // has no cart.
    Load(ctx context.Context, userID uint64) ([]model.CartLine, error)
    // Save replaces the snapshot wholesale.
    Save(ctx context.Context, userID uint64, lines []model.CartLine) error
    // Clear removes the snapshot; clearing an absent cart is a no-op.
    Clear(ctx context.Context, userID uint64) error
}

// cartTTL bounds abandoned carts.  A cart untouched for this long is
// simply gone on the next visit.
const cartTTL = 14 * 24 * time.Hour

func cartKey(userID uint64) string { return fmt.Sprintf("cart:user:%d", userID) }

// RedisStore persists cart snapshots as JSON values under a per-user
// key with a sliding TTL.
type RedisStore struct {
    rdb *redis.Client
    ttl time.Duration
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
    return &RedisStore{rdb: rdb, ttl: cartTTL}
}

func (s *RedisStore) Load(ctx context.Context, userID uint64) ([]model.CartLine, error) {
    raw, err := s.rdb.Get(ctx, cartKey(userID)).Bytes()
    if err == redis.Nil {
        return []model.CartLine{}, nil
    }
    if err != nil {
        return nil, err
    }
    var lines []model.CartLine
    if err := json.Unmarshal(raw, &lines); err != nil {
        // A corrupt snapshot is unrecoverable; treat it as empty.
        _ = s.rdb.Del(ctx, cartKey(userID)).Err()
        return []model.CartLine{}, nil
    }
    return lines, nil
}

func (s *RedisStore) Save(ctx context.Context, userID uint64, lines []model.CartLine) error {
    if lines == nil {
        lines = []model.CartLine{}
    }
    raw, err := json.Marshal(lines)
    if err != nil {
        return err
    }
    return s.rdb.Set(ctx, cartKey(userID), raw, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID uint64) error {
    return s.rdb.Del(ctx, cartKey(userID)).Err()
}

// MemoryStore is the fallback when Redis is not configured: carts then
// live only as long as the process.
type MemoryStore struct {
    mu    sync.RWMutex
    carts map[uint64][]model.CartLine
}

func NewMemoryStore() *MemoryStore {
    return &MemoryStore{carts: make(map[uint64][]model.CartLine)}
}

func (s *MemoryStore) Load(_ context.Context, userID uint64) ([]model.CartLine, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    saved, ok := s.carts[userID]
    if !ok {
        return []model.CartLine{}, nil
    }
    out := make([]model.CartLine, len(saved))
    copy(out, saved)
    return out, nil
}

func (s *MemoryStore) Save(_ context.Context, userID uint64, lines []model.CartLine) error {
    cp := make([]model.CartLine, len(lines))
    copy(cp, lines)
    s.mu.Lock()
    s.carts[userID] = cp
    s.mu.Unlock()
    return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID uint64) error {
    s.mu.Lock()
    delete(s.carts, userID)
    s.mu.Unlock()
    return nil
}
