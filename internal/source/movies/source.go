package movies

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/moviequiz/internal/logger"
	"github.com/verte-zerg/moviequiz/internal/model"
)

const (
	minThreshold = 7
	maxThreshold = 9
)

// Source asks whether a random movie's rating is above or below a threshold.
type Source struct {
	loader *Loader
	log    *logger.Logger
	sf     singleflight.Group

	mu     sync.Mutex
	movies []Movie
	rnd    *rand.Rand
}

// Option customizes a Source.
type Option func(*Source)

// WithSeed makes question selection deterministic.
func WithSeed(seed int64) Option {
	return func(s *Source) {
		s.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Source) {
		s.log = log
	}
}

// New returns a Source reading movies through loader.
func New(loader *Loader, opts ...Option) *Source {
	s := &Source{
		loader: loader,
		log:    logger.Nop(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadData fetches the movie list. Concurrent calls share one fetch.
func (s *Source) LoadData(ctx context.Context) error {
	_, err, _ := s.sf.Do("movies", func() (interface{}, error) {
		movies, err := s.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.movies = movies
		s.mu.Unlock()
		s.log.Info("movie list loaded", "count", len(movies))
		return nil, nil
	})
	return err
}

// NextQuestion picks a random movie and builds a rating question. It returns
// nil until LoadData has succeeded. A poster that fails to download leaves
// the question without an image.
func (s *Source) NextQuestion(ctx context.Context) (*model.Question, error) {
	s.mu.Lock()
	if len(s.movies) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	movie := s.movies[s.rnd.Intn(len(s.movies))]
	threshold := minThreshold + s.rnd.Intn(maxThreshold-minThreshold+1)
	greater := s.rnd.Intn(2) == 0
	s.mu.Unlock()

	poster, err := s.loader.Poster(ctx, movie)
	if err != nil {
		s.log.Warn("failed to load poster", "movie", movie.Title, "error", err)
		poster = nil
	}
	return buildQuestion(movie, poster, threshold, greater), nil
}

func buildQuestion(movie Movie, poster []byte, threshold int, greater bool) *model.Question {
	rating, err := strconv.ParseFloat(movie.Rating, 64)
	if err != nil {
		rating = 0
	}
	comparison := "greater"
	correct := rating > float64(threshold)
	if !greater {
		comparison = "less"
		correct = rating < float64(threshold)
	}
	return &model.Question{
		Text:          fmt.Sprintf("Is the rating of %q %s than %d?", movie.Title, comparison, threshold),
		Image:         poster,
		CorrectAnswer: correct,
	}
}
