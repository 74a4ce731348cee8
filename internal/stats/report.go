package stats

import (
	"context"

	"github.com/verte-zerg/moviequiz/internal/model"
)

// History lists finished games, oldest first.
type History interface {
	ListGames(ctx context.Context, limit int) ([]model.GameRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Stats model.AggregateStatistics
	Games []model.GameRecord
}

// ReportSource is a store that can back a full report.
type ReportSource interface {
	Store
	History
}

// BuildReport loads the aggregate and the last games for rendering.
func BuildReport(ctx context.Context, src ReportSource, last int) (Report, error) {
	agg, err := src.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	games, err := src.ListGames(ctx, last)
	if err != nil {
		return Report{}, err
	}
	report := Report{Games: games}
	if agg != nil {
		report.Stats = *agg
	}
	return report, nil
}
