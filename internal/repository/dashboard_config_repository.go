package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-dashboard-api/internal/models"
)

// DashboardConfigRepository persists dimensions with their KPI cards and charts.
type DashboardConfigRepository struct {
	db *sqlx.DB
}

// NewDashboardConfigRepository creates a repository over the dashboard config tables.
func NewDashboardConfigRepository(db *sqlx.DB) *DashboardConfigRepository {
	return &DashboardConfigRepository{db: db}
}

// ListDimensions returns every dimension ordered by sort_order then id.
func (r *DashboardConfigRepository) ListDimensions(ctx context.Context) ([]models.Dimension, error) {
	const query = `SELECT id, key_name, label, sort_order, created_at FROM dashboard_dimensions ORDER BY sort_order, id`
	var dims []models.Dimension
	if err := r.db.SelectContext(ctx, &dims, query); err != nil {
		return nil, fmt.Errorf("list dimensions: %w", err)
	}
	return dims, nil
}

// ListCards returns every KPI card.
func (r *DashboardConfigRepository) ListCards(ctx context.Context) ([]models.KpiCardConfig, error) {
	const query = `SELECT id, dimension_id, title, icon, sql_query, color_class, bg_class, sort_order, created_at
FROM dashboard_kpi_cards ORDER BY dimension_id, sort_order, id`
	var cards []models.KpiCardConfig
	if err := r.db.SelectContext(ctx, &cards, query); err != nil {
		return nil, fmt.Errorf("list kpi cards: %w", err)
	}
	return cards, nil
}

// ListCharts returns every chart.
func (r *DashboardConfigRepository) ListCharts(ctx context.Context) ([]models.ChartConfig, error) {
	const query = `SELECT id, dimension_id, title, subtitle, chart_type, icon, sql_query, sort_order, created_at
FROM dashboard_charts ORDER BY dimension_id, sort_order, id`
	var charts []models.ChartConfig
	if err := r.db.SelectContext(ctx, &charts, query); err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	return charts, nil
}

// CreateDimension inserts a dimension and returns its id.
func (r *DashboardConfigRepository) CreateDimension(ctx context.Context, dim *models.Dimension) (int64, error) {
	const query = `INSERT INTO dashboard_dimensions (key_name, label, sort_order) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, dim.KeyName, dim.Label, dim.SortOrder); err != nil {
		return 0, fmt.Errorf("create dimension: %w", err)
	}
	return id, nil
}

// UpdateDimension returns sql.ErrNoRows when the id does not exist.
func (r *DashboardConfigRepository) UpdateDimension(ctx context.Context, dim *models.Dimension) error {
	const query = `UPDATE dashboard_dimensions SET key_name = :key_name, label = :label, sort_order = :sort_order WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, dim)
	if err != nil {
		return fmt.Errorf("update dimension: %w", err)
	}
	return expectAffected(res)
}

// DeleteDimension removes the dimension; cards and charts go with it through ON DELETE CASCADE.
func (r *DashboardConfigRepository) DeleteDimension(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "dashboard_dimensions", id)
}

// CreateCard inserts a KPI card and returns its id.
func (r *DashboardConfigRepository) CreateCard(ctx context.Context, card *models.KpiCardConfig) (int64, error) {
	const query = `INSERT INTO dashboard_kpi_cards (dimension_id, title, icon, sql_query, color_class, bg_class, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query,
		card.DimensionID, card.Title, card.Icon, card.SQLQuery, card.ColorClass, card.BgClass, card.SortOrder,
	); err != nil {
		return 0, fmt.Errorf("create kpi card: %w", err)
	}
	return id, nil
}

// UpdateCard rewrites a card in place. sql.ErrNoRows reports a missing id.
func (r *DashboardConfigRepository) UpdateCard(ctx context.Context, card *models.KpiCardConfig) error {
	const query = `UPDATE dashboard_kpi_cards
SET title = :title, icon = :icon, sql_query = :sql_query, color_class = :color_class, bg_class = :bg_class, sort_order = :sort_order
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, card)
	if err != nil {
		return fmt.Errorf("update kpi card: %w", err)
	}
	return expectAffected(res)
}

// DeleteCard removes one card.
func (r *DashboardConfigRepository) DeleteCard(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "dashboard_kpi_cards", id)
}

// CreateChart inserts a chart and returns its id.
func (r *DashboardConfigRepository) CreateChart(ctx context.Context, chart *models.ChartConfig) (int64, error) {
	const query = `INSERT INTO dashboard_charts (dimension_id, title, subtitle, chart_type, icon, sql_query, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query,
		chart.DimensionID, chart.Title, chart.Subtitle, chart.ChartType, chart.Icon, chart.SQLQuery, chart.SortOrder,
	); err != nil {
		return 0, fmt.Errorf("create chart: %w", err)
	}
	return id, nil
}

// UpdateChart rewrites a chart in place. sql.ErrNoRows reports a missing id.
func (r *DashboardConfigRepository) UpdateChart(ctx context.Context, chart *models.ChartConfig) error {
	const query = `UPDATE dashboard_charts
SET title = :title, subtitle = :subtitle, chart_type = :chart_type, icon = :icon, sql_query = :sql_query, sort_order = :sort_order
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, chart)
	if err != nil {
		return fmt.Errorf("update chart: %w", err)
	}
	return expectAffected(res)
}

// DeleteChart removes one chart.
func (r *DashboardConfigRepository) DeleteChart(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "dashboard_charts", id)
}

// deleteByID only receives table names from this file.
func (r *DashboardConfigRepository) deleteByID(ctx context.Context, table string, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
