package submit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vortex-fintech/contactform/retry"
)

// Guard keeps at most one submission per key in flight. Acquire returns
// ErrInProgress when the key is already held. The returned release func is
// idempotent and must be called in every outcome.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// NopGuard never blocks.
type NopGuard struct{}

func (NopGuard) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// MemoryGuard holds keys in process memory.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return nil, ErrInProgress
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

// Held reports whether key is currently acquired.
func (g *MemoryGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}

// RedisClient is the subset of redis.UniversalClient the guard needs.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// releaseScript deletes the key only while it still holds our token, so a
// holder whose TTL ran out cannot drop a key taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisGuardOptions struct {
	// Prefix of guard keys, "contact:inflight" by default.
	Prefix string
	// TTL bounds how long a crashed holder blocks its client. It must
	// exceed the longest expected submission.
	TTL time.Duration
}

var errNilRedis = errors.New("submit: redis guard without client")

// RedisGuard shares in-flight keys across instances with SET NX. Redis
// errors fail closed: the submission is refused.
type RedisGuard struct {
	rdb    RedisClient
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(rdb RedisClient, opt RedisGuardOptions) *RedisGuard {
	prefix := opt.Prefix
	if prefix == "" {
		prefix = "contact:inflight"
	}
	ttl := opt.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	if g.rdb == nil {
		return nil, errNilRedis
	}
	k := g.prefix + ":" + key

	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, k, token, g.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release even when the request context is already canceled.
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			_ = retry.Fast(rctx, 3, 50*time.Millisecond, func(ctx context.Context) error {
				return releaseScript.Run(ctx, g.rdb, []string{k}, token).Err()
			})
		})
	}, nil
}
