package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/verte-zerg/moviequiz/internal/config"
	"github.com/verte-zerg/moviequiz/internal/logger"
	"github.com/verte-zerg/moviequiz/internal/model"
	"github.com/verte-zerg/moviequiz/internal/source/bank"
	"github.com/verte-zerg/moviequiz/internal/source/movies"
	"github.com/verte-zerg/moviequiz/internal/source/trivia"
	"github.com/verte-zerg/moviequiz/internal/stats"
)

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Source: sourceMovies, Questions: 10, RevealDelay: time.Second}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := []model.Config{
		{Source: sourceMovies, Questions: 0, RevealDelay: time.Second},
		{Source: sourceMovies, Questions: 10, RevealDelay: 0},
		{Source: "imdb", Questions: 10, RevealDelay: time.Second},
	}
	for _, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestValidateBackend(t *testing.T) {
	for _, name := range []string{backendSQLite, backendRedis} {
		if err := validateBackend(name); err != nil {
			t.Fatalf("expected %s to be valid: %v", name, err)
		}
	}
	if err := validateBackend("postgres"); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestBuildSource(t *testing.T) {
	opts := sourceOptions{batch: 10, log: logger.Nop()}
	src, err := buildSource(sourceMovies, opts)
	if _, ok := src.(*movies.Source); err != nil || !ok {
		t.Fatalf("expected movies source, got %T %v", src, err)
	}
	src, err = buildSource(sourceTrivia, opts)
	if _, ok := src.(*trivia.Source); err != nil || !ok {
		t.Fatalf("expected trivia source, got %T %v", src, err)
	}
	src, err = buildSource(sourceBank, opts)
	if _, ok := src.(*bank.Source); err != nil || !ok {
		t.Fatalf("expected bank source, got %T %v", src, err)
	}
	if _, err := buildSource("radio", opts); err == nil {
		t.Fatalf("expected unknown source error")
	}
}

func TestConfigTemplateDecodesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moviequiz", "config.toml")
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if cfg.Quiz.Source != nil || cfg.Stats.Backend != nil {
		t.Fatalf("expected every template value commented out, got %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("[quiz]\nquestions = 3\n"), 0o644); err != nil {
		t.Fatalf("overwrite config: %v", err)
	}
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "questions = 3") {
		t.Fatalf("existing config was overwritten")
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	statsBackend = backendSQLite
	statsPath = filepath.Join(t.TempDir(), "moviequiz.db")
	st, closeStore, err := openStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer closeStore()

	agg := stats.NewAggregator(st)
	if _, err := agg.RecordSession(context.Background(), 8, 10, time.Now()); err != nil {
		t.Fatalf("record session: %v", err)
	}
	report, err := stats.BuildReport(context.Background(), st, 0)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Stats.GamesCount != 1 || len(report.Games) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestOpenStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	statsBackend = backendRedis
	redisAddr = mr.Addr()
	redisPrefix = "test"
	st, closeStore, err := openStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer closeStore()

	if _, err := stats.NewAggregator(st).RecordSession(context.Background(), 4, 10, time.Now()); err != nil {
		t.Fatalf("record session: %v", err)
	}
	if !mr.Exists("test:stats") {
		t.Fatalf("expected aggregate hash in redis")
	}

	mr.Close()
	if _, _, err := openStore(); err == nil {
		t.Fatalf("expected connection error once redis is down")
	}
}
