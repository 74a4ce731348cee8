// Package movies builds rating questions from a Top-250 movie list.
package movies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// DefaultURL is the Top-250 endpoint; the API key is appended as the last path segment.
const DefaultURL = "https://tv-api.com/en/API/Top250Movies"

// Response size caps. The full Top-250 list is well under a megabyte and a
// 600px poster a few hundred kilobytes.
const (
	maxListBytes   = 4 << 20
	maxPosterBytes = 8 << 20
)

var (
	// ErrNoMovies is returned when a list contains no usable movies.
	ErrNoMovies = errors.New("movie list is empty")
	// ErrTooLarge is returned when a response exceeds its size cap.
	ErrTooLarge = errors.New("response too large")
)

// Movie mirrors one item of the Top-250 payload.
type Movie struct {
	ID       string `json:"id"`
	Rank     string `json:"rank"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	ImageURL string `json:"image"`
	Rating   string `json:"imDbRating"`
}

// List mirrors the Top-250 response.
type List struct {
	Items        []Movie `json:"items"`
	ErrorMessage string  `json:"errorMessage"`
}

// Loader fetches the movie list from the API or a local file.
type Loader struct {
	client *http.Client
	url    string
	apiKey string
	file   string

	listLimit   int64
	posterLimit int64
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the HTTP client used for list and poster requests.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// WithURL overrides the list endpoint. An empty url keeps the default.
func WithURL(url string) LoaderOption {
	return func(l *Loader) {
		if url != "" {
			l.url = url
		}
	}
}

// WithFile reads the list from a local JSON file instead of the API.
func WithFile(path string) LoaderOption {
	return func(l *Loader) {
		l.file = path
	}
}

// NewLoader returns a Loader for the given API key.
func NewLoader(apiKey string, opts ...LoaderOption) *Loader {
	l := &Loader{
		client:      http.DefaultClient,
		url:         DefaultURL,
		apiKey:      apiKey,
		listLimit:   maxListBytes,
		posterLimit: maxPosterBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the movie list.
func (l *Loader) Load(ctx context.Context) ([]Movie, error) {
	var (
		body []byte
		err  error
	)
	if l.file != "" {
		body, err = os.ReadFile(l.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read movie list: %w", err)
		}
	} else {
		body, err = l.fetch(ctx, l.listURL(), l.listLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch movie list: %w", err)
		}
	}

	var list List
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode movie list: %w", err)
	}
	if list.ErrorMessage != "" {
		return nil, errors.New(list.ErrorMessage)
	}
	if len(list.Items) == 0 {
		return nil, ErrNoMovies
	}
	return list.Items, nil
}

// Poster downloads the poster for m at a reduced size.
func (l *Loader) Poster(ctx context.Context, m Movie) ([]byte, error) {
	if m.ImageURL == "" {
		return nil, fmt.Errorf("movie %q has no poster", m.Title)
	}
	if path, ok := strings.CutPrefix(m.ImageURL, "file://"); ok {
		return os.ReadFile(path)
	}
	return l.fetch(ctx, ResizedImageURL(m.ImageURL), l.posterLimit)
}

// ResizedImageURL asks the image CDN for a 600px wide variant.
func ResizedImageURL(raw string) string {
	idx := strings.Index(raw, "._")
	if idx < 0 {
		return raw
	}
	return raw[:idx] + "._V0_UX600_.jpg"
}

func (l *Loader) listURL() string {
	if l.apiKey == "" {
		return l.url
	}
	return strings.TrimRight(l.url, "/") + "/" + l.apiKey
}

// fetch reads at most limit bytes of a successful response.
func (l *Loader) fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", req.URL.Host, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w (over %d bytes)", req.URL.Host, ErrTooLarge, limit)
	}
	return data, nil
}
