// Package store persists the profile blob and finished-game history.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/tuiz/internal/model"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// KV stores opaque blobs by key.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// History records finished games.
type History interface {
	AppendGame(ctx context.Context, rec model.GameRecord) error
	// ListGames returns games ordered by end time, oldest first.
	ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameRecord, error)
	ClearGames(ctx context.Context) error
}

// Backend is a KV plus History that owns a connection.
type Backend interface {
	KV
	History
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		return OpenSQLite(opts.Path)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.RedisAddr, err)
		}
		return NewRedis(client, defaultRedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (use %s or %s)", opts.Backend, BackendSQLite, BackendRedis)
	}
}

func filterGames(games []model.GameRecord, cfg model.StatsConfig) []model.GameRecord {
	if cfg.Since == nil {
		return games
	}
	out := games[:0]
	for _, g := range games {
		if g.EndedAt.Before(*cfg.Since) {
			continue
		}
		out = append(out, g)
	}
	return out
}
