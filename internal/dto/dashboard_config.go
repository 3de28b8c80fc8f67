package dto

import "encoding/json"

// Mutation types accepted by POST /admin/config.
const (
	MutationCreateDimension = "dimension"
	MutationCreateCard      = "card"
	MutationCreateChart     = "chart"
	MutationUpdateDimension = "update_dimension"
	MutationUpdateCard      = "update_card"
	MutationUpdateChart     = "update_chart"
	MutationDeleteDimension = "delete_dimension"
	MutationDeleteCard      = "delete_card"
	MutationDeleteChart     = "delete_chart"
)

// ConfigMutationRequest is the envelope of every admin configuration change.
type ConfigMutationRequest struct {
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data"`
}

// ConfigMutationResult reports the identifier created by an insert.
type ConfigMutationResult struct {
	ID int64 `json:"id,omitempty"`
}

type DimensionRequest struct {
	KeyName   string `json:"key_name" validate:"required,oneof=day week month quarter"`
	Label     string `json:"label" validate:"required,max=100"`
	SortOrder int    `json:"sort_order"`
}

type UpdateDimensionRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	DimensionRequest
}

type CardRequest struct {
	DimensionID int64  `json:"dimension_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=100"`
	Icon        string `json:"icon" validate:"max=50"`
	SQLQuery    string `json:"sql_query" validate:"required"`
	ColorClass  string `json:"color_class" validate:"max=50"`
	BgClass     string `json:"bg_class" validate:"max=50"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateCardRequest keeps the card on its dimension; only presentation fields change.
type UpdateCardRequest struct {
	ID         int64  `json:"id" validate:"required,gt=0"`
	Title      string `json:"title" validate:"required,max=100"`
	Icon       string `json:"icon" validate:"max=50"`
	SQLQuery   string `json:"sql_query" validate:"required"`
	ColorClass string `json:"color_class" validate:"max=50"`
	BgClass    string `json:"bg_class" validate:"max=50"`
	SortOrder  int    `json:"sort_order"`
}

type ChartRequest struct {
	DimensionID int64  `json:"dimension_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=100"`
	Subtitle    string `json:"subtitle" validate:"max=200"`
	ChartType   string `json:"chart_type" validate:"omitempty,oneof=line bar doughnut"`
	Icon        string `json:"icon" validate:"max=50"`
	SQLQuery    string `json:"sql_query" validate:"required"`
	SortOrder   int    `json:"sort_order"`
}

type UpdateChartRequest struct {
	ID        int64  `json:"id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=100"`
	Subtitle  string `json:"subtitle" validate:"max=200"`
	ChartType string `json:"chart_type" validate:"omitempty,oneof=line bar doughnut"`
	Icon      string `json:"icon" validate:"max=50"`
	SQLQuery  string `json:"sql_query" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

// DeleteRequest targets a single row by id.
type DeleteRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}
