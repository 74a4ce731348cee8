package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/moviequiz/internal/model"
)

type memStore struct {
	agg     *model.AggregateStatistics
	games   []model.GameRecord
	loadErr error
	saveErr error
}

func (m *memStore) Load(context.Context) (*model.AggregateStatistics, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.agg == nil {
		return nil, nil
	}
	cp := *m.agg
	return &cp, nil
}

func (m *memStore) Update(ctx context.Context, fn model.UpdateFunc) error {
	prev, err := m.Load(ctx)
	if err != nil {
		return err
	}
	next, game := fn(prev)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.agg = &next
	m.games = append(m.games, game)
	return nil
}

func record(t *testing.T, a *Aggregator, correct, total int) model.AggregateStatistics {
	t.Helper()
	agg, err := a.RecordSession(context.Background(), correct, total, time.Now())
	if err != nil {
		t.Fatalf("record session: %v", err)
	}
	return agg
}

func TestRecordSessionFirstGame(t *testing.T) {
	a := NewAggregator(&memStore{})
	agg := record(t, a, 10, 10)
	if agg.GamesCount != 1 {
		t.Fatalf("expected 1 game, got %d", agg.GamesCount)
	}
	if agg.BestGame == nil || agg.BestGame.Correct != 10 || agg.BestGame.Total != 10 {
		t.Fatalf("unexpected best game: %+v", agg.BestGame)
	}
	if agg.TotalAccuracy != 100 {
		t.Fatalf("expected 100%% accuracy, got %.2f", agg.TotalAccuracy)
	}
}

func TestRecordSessionBestGameRule(t *testing.T) {
	a := NewAggregator(&memStore{})
	record(t, a, 7, 10)
	agg := record(t, a, 5, 10)
	if agg.BestGame.Correct != 7 {
		t.Fatalf("lower score replaced best game: %+v", agg.BestGame)
	}
	agg = record(t, a, 9, 10)
	if agg.BestGame.Correct != 9 {
		t.Fatalf("higher score did not replace best game: %+v", agg.BestGame)
	}
}

func TestRecordSessionTieKeepsEarlierRecord(t *testing.T) {
	a := NewAggregator(&memStore{})
	first, err := a.RecordSession(context.Background(), 6, 10, time.Unix(100, 0))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	second, err := a.RecordSession(context.Background(), 6, 10, time.Unix(200, 0))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !second.BestGame.PlayedAt.Equal(first.BestGame.PlayedAt) {
		t.Fatalf("tie replaced best game: %v", second.BestGame.PlayedAt)
	}
}

func TestRecordSessionRunningAccuracy(t *testing.T) {
	a := NewAggregator(&memStore{})
	record(t, a, 5, 10)
	agg := record(t, a, 10, 10)
	if got := fmt.Sprintf("%.2f", agg.TotalAccuracy); got != "75.00" {
		t.Fatalf("expected 75.00, got %s", got)
	}
	if agg.TotalCorrect != 15 || agg.TotalQuestions != 20 {
		t.Fatalf("unexpected running sums: %d/%d", agg.TotalCorrect, agg.TotalQuestions)
	}
}

func TestRecordSessionSaveFailureKeepsPrevious(t *testing.T) {
	st := &memStore{}
	a := NewAggregator(st)
	before := record(t, a, 4, 10)

	st.saveErr = errors.New("disk full")
	agg, err := a.RecordSession(context.Background(), 9, 10, time.Now())
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if agg.GamesCount != before.GamesCount || agg.BestGame.Correct != 4 {
		t.Fatalf("expected stale aggregate, got %+v", agg)
	}
	if st.agg.GamesCount != 1 || len(st.games) != 1 {
		t.Fatalf("store mutated on failure: %+v", st.agg)
	}
	if a.Current().GamesCount != 1 {
		t.Fatalf("in-memory aggregate mutated on failure")
	}
}

func TestRecordSessionLoadFailure(t *testing.T) {
	st := &memStore{loadErr: errors.New("unavailable")}
	a := NewAggregator(st)
	if _, err := a.RecordSession(context.Background(), 3, 10, time.Now()); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if st.agg != nil {
		t.Fatalf("expected nothing persisted")
	}
}

func TestLoadReadsPersistedAggregate(t *testing.T) {
	best := model.GameRecord{Correct: 8, Total: 10}
	st := &memStore{agg: &model.AggregateStatistics{BestGame: &best, GamesCount: 3, TotalCorrect: 20, TotalQuestions: 30}}
	a := NewAggregator(st)
	agg, err := a.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if agg.GamesCount != 3 || a.Current().BestGame.Correct != 8 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	next := record(t, a, 10, 10)
	if next.GamesCount != 4 || next.TotalCorrect != 30 || next.TotalQuestions != 40 {
		t.Fatalf("running totals not carried over: %+v", next)
	}
}
