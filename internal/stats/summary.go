package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/moviequiz/internal/model"
)

// DateLayout formats the best game's timestamp.
const DateLayout = "02.01.06 15:04"

// FormatSummary builds the end-of-round message shown to the player.
func FormatSummary(correct, total int, agg model.AggregateStatistics) string {
	lines := []string{
		fmt.Sprintf("Your result: %d/%d", correct, total),
		fmt.Sprintf("Quizzes played: %d", agg.GamesCount),
		fmt.Sprintf("Record: %s", formatBest(agg.BestGame)),
		fmt.Sprintf("Average accuracy: %.2f%%", agg.TotalAccuracy),
	}
	return strings.Join(lines, "\n")
}

// FormatDate renders t in the local time zone using DateLayout.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

func formatBest(best *model.GameRecord) string {
	if best == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d (%s)", best.Correct, best.Total, FormatDate(best.PlayedAt))
}
