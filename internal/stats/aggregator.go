// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/verte-zerg/moviequiz/internal/model"
)

// ErrPersist marks a statistics update that could not be loaded or saved.
var ErrPersist = errors.New("statistics not persisted")

// Store persists aggregate statistics across sessions.
type Store interface {
	// Load returns the stored aggregate, or nil when nothing was persisted yet.
	Load(ctx context.Context) (*model.AggregateStatistics, error)
	// Update atomically reads the stored aggregate, applies fn and writes
	// the result together with the game that produced it. Concurrent
	// writers sharing the store must not lose each other's games.
	Update(ctx context.Context, fn model.UpdateFunc) error
}

// Aggregator updates all-time statistics once per finished session.
type Aggregator struct {
	mu      sync.Mutex
	store   Store
	current model.AggregateStatistics
}

// NewAggregator returns an Aggregator backed by st.
func NewAggregator(st Store) *Aggregator {
	return &Aggregator{store: st}
}

// Load reads the persisted aggregate into memory.
func (a *Aggregator) Load(ctx context.Context) (model.AggregateStatistics, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	loaded, err := a.store.Load(ctx)
	if err != nil {
		return a.current, fmt.Errorf("failed to load statistics: %w", err)
	}
	if loaded != nil {
		a.current = *loaded
	}
	return a.current, nil
}

// Current returns the last known aggregate.
func (a *Aggregator) Current() model.AggregateStatistics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// RecordSession folds a finished session into the aggregate and persists it.
// On failure nothing is mutated and the previous aggregate is returned with
// an error wrapping ErrPersist.
func (a *Aggregator) RecordSession(ctx context.Context, correct, total int, now time.Time) (model.AggregateStatistics, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	game := model.GameRecord{Correct: correct, Total: total, PlayedAt: now}
	var next model.AggregateStatistics
	err := a.store.Update(ctx, func(stored *model.AggregateStatistics) (model.AggregateStatistics, model.GameRecord) {
		var prev model.AggregateStatistics
		if stored != nil {
			prev = *stored
		}
		next = Apply(prev, game)
		return next, game
	})
	if err != nil {
		return a.current, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	a.current = next
	return next, nil
}

// Apply returns prev updated with game. The best game is replaced only by a
// strictly higher correct count.
func Apply(prev model.AggregateStatistics, game model.GameRecord) model.AggregateStatistics {
	next := prev
	if prev.BestGame == nil || game.Correct > prev.BestGame.Correct {
		best := game
		next.BestGame = &best
	} else {
		best := *prev.BestGame
		next.BestGame = &best
	}
	next.GamesCount++
	next.TotalCorrect += game.Correct
	next.TotalQuestions += game.Total
	next.TotalAccuracy = accuracy(next.TotalCorrect, next.TotalQuestions)
	return next
}

func accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
