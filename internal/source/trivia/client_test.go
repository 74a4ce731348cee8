package trivia

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient(&http.Client{Transport: rt}, "", 11)
}

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestFetchQuestionsQuery(t *testing.T) {
	var seen *http.Request
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return okResponse(`{"response_code":0,"results":[]}`), nil
	}))
	if _, err := client.FetchQuestions(context.Background(), 0); err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	q := seen.URL.Query()
	if q.Get("amount") != "10" || q.Get("type") != "boolean" || q.Get("category") != "11" {
		t.Fatalf("unexpected query: %s", seen.URL.RawQuery)
	}
}

func TestFetchQuestionsNonOKStatus(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		resp := okResponse("")
		resp.StatusCode = http.StatusTooManyRequests
		return resp, nil
	}))
	if _, err := client.FetchQuestions(context.Background(), 5); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestFetchQuestionsNonZeroResponseCode(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return okResponse(`{"response_code":1,"results":[]}`), nil
	}))
	if _, err := client.FetchQuestions(context.Background(), 3); err == nil {
		t.Fatalf("expected error for non-zero response_code")
	}
}

func TestSourceServesAndRefills(t *testing.T) {
	calls := 0
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return okResponse(`{"response_code":0,"results":[
			{"type":"boolean","question":"Tom &amp; Jerry first aired in 1940.","correct_answer":"True"},
			{"type":"boolean","question":"The Matrix was released in 2001.","correct_answer":"False"}
		]}`), nil
	}))
	src := NewSource(client, 2)
	ctx := context.Background()
	if err := src.LoadData(ctx); err != nil {
		t.Fatalf("load data: %v", err)
	}

	first, err := src.NextQuestion(ctx)
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if first.Text != "Tom & Jerry first aired in 1940." || !first.CorrectAnswer {
		t.Fatalf("unexpected first question: %+v", first)
	}
	second, _ := src.NextQuestion(ctx)
	if second.CorrectAnswer {
		t.Fatalf("expected False answer: %+v", second)
	}
	if _, err := src.NextQuestion(ctx); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refill fetch, got %d calls", calls)
	}
}
