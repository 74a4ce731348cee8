package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/moviequiz/internal/logger"
	"github.com/verte-zerg/moviequiz/internal/quiz"
	"github.com/verte-zerg/moviequiz/internal/source/bank"
	"github.com/verte-zerg/moviequiz/internal/source/movies"
	"github.com/verte-zerg/moviequiz/internal/source/trivia"
	"github.com/verte-zerg/moviequiz/internal/stats"
	"github.com/verte-zerg/moviequiz/internal/store"
	"github.com/verte-zerg/moviequiz/internal/store/redisstore"
)

const (
	sourceMovies = "movies"
	sourceTrivia = "trivia"
	sourceBank   = "bank"

	backendSQLite = "sqlite"
	backendRedis  = "redis"

	httpTimeout  = 15 * time.Second
	redisTimeout = 3 * time.Second
)

type sourceOptions struct {
	moviesURL    string
	moviesAPIKey string
	moviesFile   string
	triviaURL    string
	triviaCat    int
	batch        int
	bankPath     string
	log          *logger.Logger
}

func buildSource(name string, opts sourceOptions) (quiz.QuestionSource, error) {
	client := &http.Client{Timeout: httpTimeout}
	switch name {
	case sourceMovies:
		loaderOpts := []movies.LoaderOption{movies.WithHTTPClient(client), movies.WithURL(opts.moviesURL)}
		if opts.moviesFile != "" {
			loaderOpts = append(loaderOpts, movies.WithFile(opts.moviesFile))
		}
		loader := movies.NewLoader(opts.moviesAPIKey, loaderOpts...)
		return movies.New(loader, movies.WithLogger(opts.log)), nil
	case sourceTrivia:
		return trivia.NewSource(trivia.NewClient(client, opts.triviaURL, opts.triviaCat), opts.batch), nil
	case sourceBank:
		return bank.New(opts.bankPath, 0), nil
	default:
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

// openStore opens the configured statistics backend. The returned func
// releases it.
func openStore() (stats.ReportSource, func() error, error) {
	switch statsBackend {
	case backendRedis:
		client := redis.NewClient(&redis.Options{Addr: redisAddr, DB: redisDB})
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
		}
		return redisstore.New(client, redisPrefix), client.Close, nil
	default:
		st, err := store.Open(statsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, st.Close, nil
	}
}
