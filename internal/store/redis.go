package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/tuiz/internal/model"
)

const defaultRedisPrefix = "tuiz:"

// Redis keeps the profile blob in plain keys and history in a list of JSON records.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*Redis)(nil)

// NewRedis wraps a client; keys are namespaced by prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get returns the blob stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores value under key without expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// AppendGame pushes a finished game onto the history list.
func (r *Redis) AppendGame(ctx context.Context, rec model.GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}
	return r.client.RPush(ctx, r.gamesKey(), data).Err()
}

// ListGames returns games filtered by stats config.
func (r *Redis) ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameRecord, error) {
	raw, err := r.client.LRange(ctx, r.gamesKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	games := make([]model.GameRecord, 0, len(raw))
	for _, item := range raw {
		var rec model.GameRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode game: %w", err)
		}
		games = append(games, rec)
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].EndedAt.Before(games[j].EndedAt)
	})
	return filterGames(games, cfg), nil
}

// ClearGames removes the history list.
func (r *Redis) ClearGames(ctx context.Context) error {
	return r.client.Del(ctx, r.gamesKey()).Err()
}

func (r *Redis) key(k string) string {
	return r.prefix + "kv:" + k
}

func (r *Redis) gamesKey() string {
	return r.prefix + "games"
}
