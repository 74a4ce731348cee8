// Package trivia serves True/False questions from OpenTriviaDB.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/verte-zerg/moviequiz/internal/model"
)

const (
	// DefaultURL is the OpenTriviaDB question endpoint.
	DefaultURL    = "https://opentdb.com/api.php"
	defaultAmount = 10
)

// RawQuestion mirrors the OpenTriviaDB question payload.
type RawQuestion struct {
	Type          string `json:"type"`
	Difficulty    string `json:"difficulty"`
	Category      string `json:"category"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Client fetches boolean questions.
type Client struct {
	http     *http.Client
	url      string
	category int
}

// NewClient returns a Client using httpClient, or http.DefaultClient when nil.
func NewClient(httpClient *http.Client, baseURL string, category int) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{http: httpClient, url: baseURL, category: category}
}

// FetchQuestions requests amount True/False questions.
func (c *Client) FetchQuestions(ctx context.Context, amount int) ([]RawQuestion, error) {
	if amount <= 0 {
		amount = defaultAmount
	}
	query := url.Values{}
	query.Set("amount", strconv.Itoa(amount))
	query.Set("type", "boolean")
	if c.category > 0 {
		query.Set("category", strconv.Itoa(c.category))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}
	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response_code=%d", payload.ResponseCode)
	}
	return payload.Results, nil
}

// Source hands out fetched questions in order, fetching a new batch when
// the current one runs out.
type Source struct {
	client *Client
	batch  int

	mu    sync.Mutex
	queue []model.Question
}

// NewSource returns a Source fetching batch questions at a time.
func NewSource(client *Client, batch int) *Source {
	if batch <= 0 {
		batch = defaultAmount
	}
	return &Source{client: client, batch: batch}
}

// LoadData replaces the queue with a fresh batch.
func (s *Source) LoadData(ctx context.Context) error {
	questions, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.queue = questions
	s.mu.Unlock()
	return nil
}

// NextQuestion pops the next question.
func (s *Source) NextQuestion(ctx context.Context) (*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		questions, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.queue = questions
	}
	if len(s.queue) == 0 {
		return nil, nil
	}
	q := s.queue[0]
	s.queue = s.queue[1:]
	return &q, nil
}

func (s *Source) fetch(ctx context.Context) ([]model.Question, error) {
	raw, err := s.client.FetchQuestions(ctx, s.batch)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trivia questions: %w", err)
	}
	questions := make([]model.Question, 0, len(raw))
	for _, item := range raw {
		if item.Type != "" && item.Type != "boolean" {
			continue
		}
		questions = append(questions, model.Question{
			Text:          html.UnescapeString(item.Question),
			CorrectAnswer: item.CorrectAnswer == "True",
		})
	}
	return questions, nil
}
