package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

// RevealCache keeps the latest reveal payload per session so repeated reads
// after the fit pass skip reassembly. Best effort only; the store stays the
// source of truth.
type RevealCache interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*Reveal, bool)
	Set(ctx context.Context, sessionID uuid.UUID, reveal *Reveal)
	Invalidate(ctx context.Context, sessionID uuid.UUID)
}

type revealCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRevealCache connects to REDIS_ADDR. When the variable is unset a no-op
// cache is returned so the engine runs without redis.
func NewRevealCache(baseLog *logger.Logger) (RevealCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return noopRevealCache{}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &revealCache{
		log: baseLog.With("service", "RevealCache"),
		rdb: rdb,
		ttl: 30 * time.Minute,
	}, nil
}

func revealKey(sessionID uuid.UUID) string {
	return "tripcraft:reveal:" + sessionID.String()
}

func (c *revealCache) Get(ctx context.Context, sessionID uuid.UUID) (*Reveal, bool) {
	raw, err := c.rdb.Get(ctx, revealKey(sessionID)).Bytes()
	if err != nil {
		return nil, false
	}
	var out Reveal
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("corrupt cached reveal dropped", "session_id", sessionID.String(), "error", err)
		_ = c.rdb.Del(ctx, revealKey(sessionID)).Err()
		return nil, false
	}
	return &out, true
}

func (c *revealCache) Set(ctx context.Context, sessionID uuid.UUID, reveal *Reveal) {
	if reveal == nil {
		return
	}
	raw, err := json.Marshal(reveal)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, revealKey(sessionID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("reveal cache write failed", "session_id", sessionID.String(), "error", err)
	}
}

func (c *revealCache) Invalidate(ctx context.Context, sessionID uuid.UUID) {
	_ = c.rdb.Del(ctx, revealKey(sessionID)).Err()
}

type noopRevealCache struct{}

func (noopRevealCache) Get(context.Context, uuid.UUID) (*Reveal, bool) { return nil, false }
func (noopRevealCache) Set(context.Context, uuid.UUID, *Reveal)        {}
func (noopRevealCache) Invalidate(context.Context, uuid.UUID)          {}
