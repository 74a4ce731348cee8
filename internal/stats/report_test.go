package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/moviequiz/internal/model"
	"github.com/verte-zerg/moviequiz/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "moviequiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	a := NewAggregator(st)
	for i, correct := range []int{5, 10, 7} {
		if _, err := a.RecordSession(ctx, correct, 10, time.Unix(0, 0).Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("record session: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, 2)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Stats.GamesCount != 3 {
		t.Fatalf("expected 3 games, got %d", report.Stats.GamesCount)
	}
	if len(report.Games) != 2 || report.Games[0].Correct != 10 || report.Games[1].Correct != 7 {
		t.Fatalf("unexpected games: %+v", report.Games)
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 2); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Games played: 3", "Best game: 10/10", "Accuracy: 73.33% (22/30)", "Recent Games", "Accuracy trend:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, Report{}, 5); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No games played yet." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{50, 50, 50}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	if got := Sparkline([]float64{0, 100}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
}

func TestFormatSummary(t *testing.T) {
	best := model.GameRecord{Correct: 9, Total: 10, PlayedAt: time.Date(2024, 2, 3, 4, 5, 0, 0, time.Local)}
	out := FormatSummary(6, 10, model.AggregateStatistics{BestGame: &best, GamesCount: 4, TotalAccuracy: 66.666})
	want := "Your result: 6/10\nQuizzes played: 4\nRecord: 9/10 (03.02.24 04:05)\nAverage accuracy: 66.67%"
	if out != want {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestFormatSummaryWithoutBestGame(t *testing.T) {
	out := FormatSummary(0, 10, model.AggregateStatistics{})
	if !strings.Contains(out, "Record: -") || !strings.Contains(out, "Average accuracy: 0.00%") {
		t.Fatalf("unexpected summary: %s", out)
	}
}
