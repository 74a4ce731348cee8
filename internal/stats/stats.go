package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderReport prints the aggregate, recent games and an accuracy trend.
func RenderReport(w io.Writer, report Report, window int) error {
	agg := report.Stats
	if agg.GamesCount == 0 {
		_, err := fmt.Fprintln(w, "No games played yet.")
		return err
	}
	summary := []string{
		"Summary",
		fmt.Sprintf("Games played: %d", agg.GamesCount),
		fmt.Sprintf("Best game: %s", formatBest(agg.BestGame)),
		fmt.Sprintf("Accuracy: %.2f%% (%d/%d)", agg.TotalAccuracy, agg.TotalCorrect, agg.TotalQuestions),
		"",
	}
	for _, line := range summary {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(report.Games) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "Recent Games"); err != nil {
		return err
	}
	headers := []string{"#", "Played", "Score", "Accuracy"}
	rows := make([][]string, 0, len(report.Games))
	accs := make([]float64, 0, len(report.Games))
	for i, game := range report.Games {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			FormatDate(game.PlayedAt),
			fmt.Sprintf("%d/%d", game.Correct, game.Total),
			fmt.Sprintf("%.2f%%", game.Accuracy()),
		})
		accs = append(accs, game.Accuracy())
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy trend: %s\n", Sparkline(MovingAverage(accs, window))); err != nil {
		return err
	}
	return nil
}
