package domain

import (
	"context"
	"time"
)

// DishRow is one record as listed in the weekly log table.
type DishRow struct {
	ID          int64   `json:"id"`
	DishName    string  `json:"dish_name"`
	WeightGrams float64 `json:"weight_grams"`
	Reason      string  `json:"reason"`
	Date        string  `json:"date"`
}

// DailyBar is one bar of the weekly chart.
type DailyBar struct {
	Day        string  `json:"day"`
	Date       string  `json:"date"`
	TotalGrams float64 `json:"total_grams"`
}

// WeeklyStats is the log view for one Monday..Sunday week.
type WeeklyStats struct {
	WeekStart      string     `json:"week_start"`
	WeekEnd        string     `json:"week_end"`
	PrevWeek       string     `json:"prev_week"`
	NextWeek       string     `json:"next_week"`
	IsDataPresent  bool       `json:"is_data_present"`
	TotalGrams     float64    `json:"total_grams"`
	DishTable      []DishRow  `json:"dish_table"`
	DailyGraphData []DailyBar `json:"daily_graph_data"`
}

// StatsCache stores computed weekly stats. Get returns (nil, nil) on a miss.
type StatsCache interface {
	GetWeekly(ctx context.Context, userID int64, weekStart time.Time) (*WeeklyStats, error)
	SetWeekly(ctx context.Context, userID int64, weekStart time.Time, stats *WeeklyStats) error
	InvalidateUser(ctx context.Context, userID int64) error
}
