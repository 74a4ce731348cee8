package bank

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeBank(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "bank.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	return path
}

func TestBankServesEveryEntryBeforeRepeating(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("img-a"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	path := writeBank(t, dir, `
- text: First
  image: a.png
  answer: true
- text: Second
  answer: false
- text: Third
  answer: true
`)
	src := New(path, 42)
	ctx := context.Background()
	if err := src.LoadData(ctx); err != nil {
		t.Fatalf("load data: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		q, err := src.NextQuestion(ctx)
		if err != nil {
			t.Fatalf("next question: %v", err)
		}
		if seen[q.Text] {
			t.Fatalf("question %q repeated before bank exhausted", q.Text)
		}
		seen[q.Text] = true
		if q.Text == "First" && string(q.Image) != "img-a" {
			t.Fatalf("image not loaded relative to bank: %q", q.Image)
		}
	}
	if _, err := src.NextQuestion(ctx); err != nil {
		t.Fatalf("reshuffle: %v", err)
	}
}

func TestBankEmpty(t *testing.T) {
	path := writeBank(t, t.TempDir(), "[]\n")
	if err := New(path, 1).LoadData(context.Background()); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestBankMissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "missing.yaml"), 1)
	if err := src.LoadData(context.Background()); err == nil {
		t.Fatalf("expected error for missing bank")
	}
	if q, err := src.NextQuestion(context.Background()); q != nil || err != nil {
		t.Fatalf("expected nil question before load, got %+v %v", q, err)
	}
}

func TestBankMissingImage(t *testing.T) {
	path := writeBank(t, t.TempDir(), "- text: Lost\n  image: nowhere.png\n  answer: true\n")
	src := New(path, 1)
	if err := src.LoadData(context.Background()); err != nil {
		t.Fatalf("load data: %v", err)
	}
	if _, err := src.NextQuestion(context.Background()); err == nil {
		t.Fatalf("expected error for missing image")
	}
}
