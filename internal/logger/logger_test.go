package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "moviequiz.log")
	log, err := New("prod", path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.With("session", "abc").Warn("statistics not persisted", "correct", 7)
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"statistics not persisted", `"session":"abc"`, `"correct":7`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q: %s", want, out)
		}
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error("ignored", "k", "v")
	log.Sync()
}
