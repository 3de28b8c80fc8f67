package models

import "time"

// ChartType enumerates the renderers the front end supports.
type ChartType string

const (
	ChartTypeLine     ChartType = "line"
	ChartTypeBar      ChartType = "bar"
	ChartTypeDoughnut ChartType = "doughnut"
)

// Dimension is a selectable aggregation granularity owning cards and charts.
type Dimension struct {
	ID        int64           `db:"id" json:"id"`
	KeyName   string          `db:"key_name" json:"key_name"`
	Label     string          `db:"label" json:"label"`
	SortOrder int             `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	Cards     []KpiCardConfig `db:"-" json:"cards"`
	Charts    []ChartConfig   `db:"-" json:"charts"`
}

// KpiCardConfig stores an admin authored query expected to yield a "value" column.
type KpiCardConfig struct {
	ID          int64     `db:"id" json:"id"`
	DimensionID int64     `db:"dimension_id" json:"dimension_id"`
	Title       string    `db:"title" json:"title"`
	Icon        string    `db:"icon" json:"icon"`
	SQLQuery    string    `db:"sql_query" json:"sql_query"`
	ColorClass  string    `db:"color_class" json:"color_class"`
	BgClass     string    `db:"bg_class" json:"bg_class"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ChartConfig stores an admin authored query yielding label/value rows.
type ChartConfig struct {
	ID          int64     `db:"id" json:"id"`
	DimensionID int64     `db:"dimension_id" json:"dimension_id"`
	Title       string    `db:"title" json:"title"`
	Subtitle    string    `db:"subtitle" json:"subtitle"`
	ChartType   ChartType `db:"chart_type" json:"chart_type"`
	Icon        string    `db:"icon" json:"icon"`
	SQLQuery    string    `db:"sql_query" json:"sql_query"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
