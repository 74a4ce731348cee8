// Package redisstore keeps quiz statistics in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/moviequiz/internal/model"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "moviequiz"

// Store persists the aggregate as a hash and the game history as a list:
//
//	HSET {prefix}:stats games_count .. total_correct .. best_correct ..
//	RPUSH {prefix}:games {json game}
type Store struct {
	client *redis.Client
	prefix string
}

// New returns a Store using client. An empty prefix uses DefaultPrefix.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

type gameEntry struct {
	Correct  int       `json:"correct"`
	Total    int       `json:"total"`
	PlayedAt time.Time `json:"played_at"`
}

// maxUpdateAttempts bounds retries when another writer touches the
// aggregate between WATCH and EXEC.
const maxUpdateAttempts = 10

// ErrConflict is returned when Update keeps losing to concurrent writers.
var ErrConflict = errors.New("statistics update conflicted with concurrent writers")

// Load returns the stored aggregate, or nil when no game was saved yet.
func (s *Store) Load(ctx context.Context) (*model.AggregateStatistics, error) {
	return s.load(ctx, s.client)
}

// Update reads the aggregate under WATCH, applies fn and writes the result
// with the finished game inside MULTI/EXEC. A conflicting write from another
// client restarts the cycle, so fn may run more than once.
func (s *Store) Update(ctx context.Context, fn model.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		prev, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		next, game := fn(prev)
		return s.write(ctx, tx, next, game)
	}
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.statsKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *Store) load(ctx context.Context, c redis.Cmdable) (*model.AggregateStatistics, error) {
	fields, err := c.HGetAll(ctx, s.statsKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	var agg model.AggregateStatistics
	ints := map[string]*int{
		"games_count":     &agg.GamesCount,
		"total_correct":   &agg.TotalCorrect,
		"total_questions": &agg.TotalQuestions,
	}
	for name, target := range ints {
		v, err := strconv.Atoi(fields[name])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		*target = v
	}
	if agg.TotalAccuracy, err = strconv.ParseFloat(fields["total_accuracy"], 64); err != nil {
		return nil, fmt.Errorf("invalid total_accuracy: %w", err)
	}
	if raw, ok := fields["best_game"]; ok && raw != "" {
		var best gameEntry
		if err := json.Unmarshal([]byte(raw), &best); err != nil {
			return nil, fmt.Errorf("invalid best_game: %w", err)
		}
		agg.BestGame = &model.GameRecord{Correct: best.Correct, Total: best.Total, PlayedAt: best.PlayedAt}
	}
	return &agg, nil
}

func (s *Store) write(ctx context.Context, tx *redis.Tx, stats model.AggregateStatistics, game model.GameRecord) error {
	gameJSON, err := json.Marshal(gameEntry{Correct: game.Correct, Total: game.Total, PlayedAt: game.PlayedAt})
	if err != nil {
		return err
	}
	best := ""
	if stats.BestGame != nil {
		raw, err := json.Marshal(gameEntry{Correct: stats.BestGame.Correct, Total: stats.BestGame.Total, PlayedAt: stats.BestGame.PlayedAt})
		if err != nil {
			return err
		}
		best = string(raw)
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.statsKey(),
			"games_count", stats.GamesCount,
			"total_correct", stats.TotalCorrect,
			"total_questions", stats.TotalQuestions,
			"total_accuracy", strconv.FormatFloat(stats.TotalAccuracy, 'f', -1, 64),
			"best_game", best,
		)
		pipe.RPush(ctx, s.gamesKey(), gameJSON)
		return nil
	})
	return err
}

// ListGames returns up to limit most recent games, oldest first.
func (s *Store) ListGames(ctx context.Context, limit int) ([]model.GameRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	items, err := s.client.LRange(ctx, s.gamesKey(), start, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	games := make([]model.GameRecord, 0, len(items))
	for _, item := range items {
		var entry gameEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("invalid game entry: %w", err)
		}
		games = append(games, model.GameRecord{Correct: entry.Correct, Total: entry.Total, PlayedAt: entry.PlayedAt})
	}
	return games, nil
}

func (s *Store) statsKey() string {
	return s.prefix + ":stats"
}

func (s *Store) gamesKey() string {
	return s.prefix + ":games"
}
