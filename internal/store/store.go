// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/moviequiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for quiz statistics.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Writers take the lock at BEGIN so another process cannot read the
	// aggregate between our read and our write.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			played_at TEXT NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS aggregate (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			games_count INTEGER NOT NULL,
			total_correct INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			total_accuracy REAL NOT NULL,
			best_correct INTEGER,
			best_total INTEGER,
			best_played_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Load returns the persisted aggregate, or nil if no game was saved yet.
func (s *Store) Load(ctx context.Context) (*model.AggregateStatistics, error) {
	return loadAggregate(ctx, s.db)
}

// Update reads the aggregate, applies fn and stores its result together
// with the finished game in a single immediate transaction.
func (s *Store) Update(ctx context.Context, fn model.UpdateFunc) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	prev, err := loadAggregate(ctx, tx)
	if err != nil {
		return err
	}
	next, game := fn(prev)
	if err = saveAggregate(ctx, tx, next, game); err != nil {
		return err
	}
	return tx.Commit()
}

func loadAggregate(ctx context.Context, q querier) (*model.AggregateStatistics, error) {
	row := q.QueryRowContext(ctx,
		`SELECT games_count, total_correct, total_questions, total_accuracy, best_correct, best_total, best_played_at
		 FROM aggregate WHERE id = 1`)
	var (
		agg         model.AggregateStatistics
		bestCorrect sql.NullInt64
		bestTotal   sql.NullInt64
		bestAt      sql.NullString
	)
	err := row.Scan(&agg.GamesCount, &agg.TotalCorrect, &agg.TotalQuestions, &agg.TotalAccuracy, &bestCorrect, &bestTotal, &bestAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bestCorrect.Valid && bestTotal.Valid && bestAt.Valid {
		playedAt, err := time.Parse(time.RFC3339Nano, bestAt.String)
		if err != nil {
			return nil, err
		}
		agg.BestGame = &model.GameRecord{
			Correct:  int(bestCorrect.Int64),
			Total:    int(bestTotal.Int64),
			PlayedAt: playedAt,
		}
	}
	return &agg, nil
}

func saveAggregate(ctx context.Context, q querier, stats model.AggregateStatistics, game model.GameRecord) error {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO games (played_at, correct, total) VALUES (?, ?, ?)`,
		game.PlayedAt.Format(time.RFC3339Nano), game.Correct, game.Total,
	); err != nil {
		return err
	}

	var bestCorrect, bestTotal, bestAt any
	if stats.BestGame != nil {
		bestCorrect = stats.BestGame.Correct
		bestTotal = stats.BestGame.Total
		bestAt = stats.BestGame.PlayedAt.Format(time.RFC3339Nano)
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO aggregate (id, games_count, total_correct, total_questions, total_accuracy, best_correct, best_total, best_played_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			games_count = excluded.games_count,
			total_correct = excluded.total_correct,
			total_questions = excluded.total_questions,
			total_accuracy = excluded.total_accuracy,
			best_correct = excluded.best_correct,
			best_total = excluded.best_total,
			best_played_at = excluded.best_played_at`,
		stats.GamesCount, stats.TotalCorrect, stats.TotalQuestions, stats.TotalAccuracy,
		bestCorrect, bestTotal, bestAt,
	)
	return err
}

// ListGames returns up to limit most recent games, oldest first. A
// non-positive limit returns every game.
func (s *Store) ListGames(ctx context.Context, limit int) ([]model.GameRecord, error) {
	query := `SELECT played_at, correct, total FROM (
		SELECT id, played_at, correct, total FROM games ORDER BY id DESC LIMIT ?
	) ORDER BY id ASC`
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameRecord
	for rows.Next() {
		var game model.GameRecord
		var playedAt string
		if err := rows.Scan(&playedAt, &game.Correct, &game.Total); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, playedAt)
		if err != nil {
			return nil, err
		}
		game.PlayedAt = parsed
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}
