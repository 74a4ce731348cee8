package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/moviequiz/internal/model"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return New(client, "test"), mr
}

func put(agg model.AggregateStatistics, game model.GameRecord) model.UpdateFunc {
	return func(*model.AggregateStatistics) (model.AggregateStatistics, model.GameRecord) {
		return agg, game
	}
}

func TestLoadEmpty(t *testing.T) {
	st, _ := newTestStore(t)
	agg, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if agg != nil {
		t.Fatalf("expected nil aggregate, got %+v", agg)
	}
}

func TestUpdateAndLoad(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()
	playedAt := time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC)
	game := model.GameRecord{Correct: 9, Total: 10, PlayedAt: playedAt}
	agg := model.AggregateStatistics{
		BestGame:       &game,
		GamesCount:     2,
		TotalAccuracy:  75,
		TotalCorrect:   15,
		TotalQuestions: 20,
	}
	if err := st.Update(ctx, put(agg, game)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("test:stats") || !mr.Exists("test:games") {
		t.Fatalf("expected stats and games keys")
	}

	loaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.GamesCount != 2 || loaded.TotalCorrect != 15 || loaded.TotalQuestions != 20 || loaded.TotalAccuracy != 75 {
		t.Fatalf("unexpected aggregate: %+v", loaded)
	}
	if loaded.BestGame == nil || loaded.BestGame.Correct != 9 || !loaded.BestGame.PlayedAt.Equal(playedAt) {
		t.Fatalf("unexpected best game: %+v", loaded.BestGame)
	}
}

func TestListGamesKeepsOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		game := model.GameRecord{Correct: i, Total: 10, PlayedAt: time.Unix(int64(i), 0).UTC()}
		if err := st.Update(ctx, put(model.AggregateStatistics{GamesCount: i}, game)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	games, err := st.ListGames(ctx, 3)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 3 || games[0].Correct != 2 || games[2].Correct != 4 {
		t.Fatalf("unexpected games: %+v", games)
	}
}

func TestLoadFailsWhenServerDown(t *testing.T) {
	st, mr := newTestStore(t)
	mr.Close()
	if _, err := st.Load(context.Background()); err == nil {
		t.Fatalf("expected error with redis unavailable")
	}
}

func otherClient(t *testing.T, mr *miniredis.Miniredis) *Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return New(client, "test")
}

func TestUpdateRetriesAfterConcurrentWrite(t *testing.T) {
	st, mr := newTestStore(t)
	other := otherClient(t, mr)
	ctx := context.Background()
	game := model.GameRecord{Correct: 6, Total: 10, PlayedAt: time.Unix(10, 0).UTC()}

	calls := 0
	err := st.Update(ctx, func(prev *model.AggregateStatistics) (model.AggregateStatistics, model.GameRecord) {
		calls++
		if calls == 1 {
			if err := other.Update(ctx, put(model.AggregateStatistics{GamesCount: 1, TotalCorrect: 3, TotalQuestions: 10}, game)); err != nil {
				t.Errorf("concurrent update: %v", err)
			}
		}
		var next model.AggregateStatistics
		if prev != nil {
			next = *prev
		}
		next.GamesCount++
		next.TotalCorrect += game.Correct
		next.TotalQuestions += game.Total
		return next, game
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
	loaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.GamesCount != 2 || loaded.TotalCorrect != 9 || loaded.TotalQuestions != 20 {
		t.Fatalf("concurrent game lost: %+v", loaded)
	}
	games, err := st.ListGames(ctx, 0)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games in history, got %d", len(games))
	}
}

func TestUpdateGivesUpAfterRepeatedConflicts(t *testing.T) {
	st, mr := newTestStore(t)
	other := otherClient(t, mr)
	ctx := context.Background()
	game := model.GameRecord{Correct: 1, Total: 10, PlayedAt: time.Unix(0, 0).UTC()}

	calls := 0
	err := st.Update(ctx, func(*model.AggregateStatistics) (model.AggregateStatistics, model.GameRecord) {
		calls++
		if err := other.Update(ctx, put(model.AggregateStatistics{GamesCount: calls}, game)); err != nil {
			t.Errorf("concurrent update: %v", err)
		}
		return model.AggregateStatistics{GamesCount: 100}, game
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if calls != maxUpdateAttempts {
		t.Fatalf("expected %d attempts, got %d", maxUpdateAttempts, calls)
	}
	loaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.GamesCount != maxUpdateAttempts {
		t.Fatalf("losing update was written: %+v", loaded)
	}
}
