// Package main provides the CLI entrypoint for moviequiz.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/moviequiz/internal/config"
	"github.com/verte-zerg/moviequiz/internal/logger"
	"github.com/verte-zerg/moviequiz/internal/model"
	"github.com/verte-zerg/moviequiz/internal/quiz"
	"github.com/verte-zerg/moviequiz/internal/source/movies"
	"github.com/verte-zerg/moviequiz/internal/source/trivia"
	"github.com/verte-zerg/moviequiz/internal/stats"
	"github.com/verte-zerg/moviequiz/internal/statsui"
	"github.com/verte-zerg/moviequiz/internal/store/redisstore"
	"github.com/verte-zerg/moviequiz/internal/tui"
)

const (
	defaultSource      = sourceMovies
	defaultBackend     = backendSQLite
	defaultRedisAddr   = "localhost:6379"
	defaultLogMode     = "prod"
	defaultCurveWindow = 5
)

var (
	playSource    string
	playQuestions int
	playDelay     time.Duration
	moviesURL     string
	moviesAPIKey  string
	moviesFile    string
	triviaURL     string
	triviaCat     int
	bankPath      string

	statsBackend string
	statsPath    string
	redisAddr    string
	redisDB      int
	redisPrefix  string
	logMode      string
	logPath      string

	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "moviequiz",
		Short:         "TUI yes/no movie quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&playSource, "source", defaultSource, "question source: movies, trivia or bank")
	flags.IntVar(&playQuestions, "questions", model.DefaultQuestions, "questions per round")
	flags.DurationVar(&playDelay, "reveal-delay", model.DefaultRevealDelay, "how long the answer cue stays on screen")
	flags.StringVar(&moviesURL, "movies-url", movies.DefaultURL, "Top-250 list endpoint")
	flags.StringVar(&moviesAPIKey, "api-key", "", "API key for the movie list")
	flags.StringVar(&moviesFile, "movies-file", "", "read the movie list from a JSON file instead")
	flags.StringVar(&triviaURL, "trivia-url", trivia.DefaultURL, "OpenTriviaDB endpoint")
	flags.IntVar(&triviaCat, "trivia-category", 0, "OpenTriviaDB category id (0 for any)")
	flags.StringVar(&bankPath, "bank", config.DefaultBankPath(), "YAML question bank")
	addStoreFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func addStoreFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&statsBackend, "backend", defaultBackend, "statistics backend: sqlite or redis")
	flags.StringVar(&statsPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&redisAddr, "redis-addr", defaultRedisAddr, "Redis address")
	flags.IntVar(&redisDB, "redis-db", 0, "Redis database")
	flags.StringVar(&redisPrefix, "redis-prefix", redisstore.DefaultPrefix, "Redis key prefix")
	flags.StringVar(&logMode, "log-mode", defaultLogMode, "log mode: prod or dev")
	flags.StringVar(&logPath, "log", config.DefaultLogPath(), "diagnostics log file")
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "source", &playSource, fileCfg.Quiz.Source)
	applyIntConfig(cmd, "questions", &playQuestions, fileCfg.Quiz.Questions)
	if fileCfg.Quiz.RevealDelay != nil && !cmd.Flags().Changed("reveal-delay") {
		playDelay = fileCfg.Quiz.RevealDelay.Duration
	}
	applyStringConfig(cmd, "movies-url", &moviesURL, fileCfg.Movies.URL)
	applyStringConfig(cmd, "api-key", &moviesAPIKey, fileCfg.Movies.APIKey)
	applyStringConfig(cmd, "movies-file", &moviesFile, fileCfg.Movies.File)
	applyStringConfig(cmd, "trivia-url", &triviaURL, fileCfg.Trivia.URL)
	applyIntConfig(cmd, "trivia-category", &triviaCat, fileCfg.Trivia.Category)
	applyStringConfig(cmd, "bank", &bankPath, fileCfg.Bank.Path)
	applyStoreConfig(cmd, fileCfg)

	cfg := model.Config{
		Source:      playSource,
		Questions:   playQuestions,
		RevealDelay: playDelay,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if err := validateBackend(statsBackend); err != nil {
		return err
	}

	log, err := logger.New(logMode, logPath)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logErrf("failed to close stats store: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	agg := stats.NewAggregator(st)
	initial, err := agg.Load(ctx)
	if err != nil {
		// Play still works; the first save will retry the load.
		log.Warn("failed to load statistics", "error", err)
		logErrf("failed to load statistics: %v\n", err)
	}

	src, err := buildSource(cfg.Source, sourceOptions{
		moviesURL:    moviesURL,
		moviesAPIKey: moviesAPIKey,
		moviesFile:   moviesFile,
		triviaURL:    triviaURL,
		triviaCat:    triviaCat,
		batch:        cfg.Questions,
		bankPath:     bankPath,
		log:          log,
	})
	if err != nil {
		return err
	}

	log.Info("starting quiz", "source", cfg.Source, "questions", cfg.Questions, "backend", statsBackend)
	ui := tui.NewModel(src, agg, quiz.Options{
		Questions:   cfg.Questions,
		RevealDelay: cfg.RevealDelay,
		Initial:     initial,
		Context:     ctx,
		Log:         log,
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the commented config file unless one exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print instead of opening the stats browser")
	addStoreFlags(cmd)
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStoreConfig(cmd, fileCfg)
	if err := validateBackend(statsBackend); err != nil {
		return err
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logErrf("failed to close stats store: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, statsLast)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return stats.RenderReport(cmd.OutOrStdout(), report, statsCurveWindow)
	}
	program := tea.NewProgram(statsui.NewModel(report, statsCurveWindow), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func applyStoreConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "backend", &statsBackend, fileCfg.Stats.Backend)
	applyStringConfig(cmd, "db", &statsPath, fileCfg.Stats.Path)
	applyStringConfig(cmd, "redis-addr", &redisAddr, fileCfg.Stats.RedisAddr)
	applyIntConfig(cmd, "redis-db", &redisDB, fileCfg.Stats.RedisDB)
	applyStringConfig(cmd, "redis-prefix", &redisPrefix, fileCfg.Stats.RedisPrefix)
	applyStringConfig(cmd, "log-mode", &logMode, fileCfg.Log.Mode)
	applyStringConfig(cmd, "log", &logPath, fileCfg.Log.Path)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# moviequiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# source = %q             # movies, trivia or bank
# questions = %d           # Questions per round
# reveal-delay = %q       # How long the answer cue stays on screen

[movies]
# url = %q
# api-key = ""             # Key appended to the list URL
# file = ""                # Read the movie list from a JSON file instead

[trivia]
# url = %q
# category = 11            # OpenTriviaDB category id (11 = Film)

[bank]
# path = %q

[stats]
# backend = %q           # sqlite or redis
# path = %q
# redis-addr = %q
# redis-db = 0
# redis-prefix = %q

[log]
# mode = %q                # prod or dev
# path = %q
`,
		defaultSource,
		model.DefaultQuestions,
		model.DefaultRevealDelay.String(),
		movies.DefaultURL,
		trivia.DefaultURL,
		config.DefaultBankPath(),
		defaultBackend,
		config.DefaultDBPath(),
		defaultRedisAddr,
		redisstore.DefaultPrefix,
		defaultLogMode,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Questions <= 0 {
		return fmt.Errorf("--questions must be > 0")
	}
	if cfg.RevealDelay <= 0 {
		return fmt.Errorf("--reveal-delay must be > 0")
	}
	switch cfg.Source {
	case sourceMovies, sourceTrivia, sourceBank:
		return nil
	default:
		return fmt.Errorf("unknown --source %q (available: %s, %s, %s)", cfg.Source, sourceMovies, sourceTrivia, sourceBank)
	}
}

func validateBackend(name string) error {
	switch name {
	case backendSQLite, backendRedis:
		return nil
	default:
		return fmt.Errorf("unknown --backend %q (available: %s, %s)", name, backendSQLite, backendRedis)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
