// Package bank serves questions from a local YAML file.
package bank

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/moviequiz/internal/model"
)

// ErrEmpty is returned when the bank file holds no questions.
var ErrEmpty = errors.New("question bank is empty")

// Entry is one question in the bank file:
//
//	- text: Was "Alien" released before 1980?
//	  image: posters/alien.jpg
//	  answer: true
type Entry struct {
	Text   string `yaml:"text"`
	Image  string `yaml:"image"`
	Answer bool   `yaml:"answer"`
}

// Source deals bank entries in shuffled order, reshuffling once exhausted.
type Source struct {
	path string

	mu      sync.Mutex
	entries []Entry
	queue   []int
	rnd     *rand.Rand
}

// New returns a Source for the bank file at path.
func New(path string, seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{path: path, rnd: rand.New(rand.NewSource(seed))}
}

// LoadData reads and validates the bank file.
func (s *Source) LoadData(context.Context) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read question bank: %w", err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode question bank: %w", err)
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return ErrEmpty
	}
	s.mu.Lock()
	s.entries = kept
	s.queue = nil
	s.mu.Unlock()
	return nil
}

// NextQuestion returns the next entry with its image read from disk.
// Image paths are relative to the bank file.
func (s *Source) NextQuestion(context.Context) (*model.Question, error) {
	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return nil, nil
	}
	if len(s.queue) == 0 {
		s.queue = s.rnd.Perm(len(s.entries))
	}
	entry := s.entries[s.queue[0]]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	q := &model.Question{Text: entry.Text, CorrectAnswer: entry.Answer}
	if entry.Image != "" {
		path := entry.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(s.path), path)
		}
		img, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image for %q: %w", entry.Text, err)
		}
		q.Image = img
	}
	return q, nil
}
