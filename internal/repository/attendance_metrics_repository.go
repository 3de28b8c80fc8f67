package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	"github.com/noah-isme/attendance-dashboard-api/pkg/config"
)

const dateLayout = "2006-01-02"

// Shared fragments. $1 and $2 are always the batch names and late thresholds.
const (
	batchRulesCTE = `batches AS (
    SELECT b.batch, b.late_after FROM unnest($1::text[], $2::time[]) AS b(batch, late_after)
)`
	batchRecordsFrom = `FROM attendance_records r
JOIN employees e ON e.employee_name = r.employee_name AND e.active
JOIN attendance_batch_assignments a ON a.employee_name = r.employee_name
JOIN batches b ON b.batch = a.batch`
	lateCondition = `r.earliest_sign_in IS NOT NULL AND r.earliest_sign_in::time > b.late_after`
	latestDayCTE  = `latest AS (
    SELECT MAX(attendance_date) AS day FROM attendance_records WHERE attendance_date <= $3::date
)`
)

// AttendanceMetricsRepository runs the fixed dashboard aggregations.
type AttendanceMetricsRepository struct {
	db            *sqlx.DB
	batchNames    []string
	lateAfter     []string
	overtimeAfter string
}

// NewAttendanceMetricsRepository binds the repository to the configured batches.
func NewAttendanceMetricsRepository(db *sqlx.DB, cfg config.AttendanceConfig) *AttendanceMetricsRepository {
	names := make([]string, 0, len(cfg.Batches))
	thresholds := make([]string, 0, len(cfg.Batches))
	for _, batch := range cfg.Batches {
		names = append(names, batch.Name)
		thresholds = append(thresholds, batch.LateAfter)
	}
	overtimeAfter := cfg.OvertimeAfter
	if overtimeAfter == "" {
		overtimeAfter = "18:00:00"
	}
	return &AttendanceMetricsRepository{db: db, batchNames: names, lateAfter: thresholds, overtimeAfter: overtimeAfter}
}

func (r *AttendanceMetricsRepository) batchArgs(ref time.Time) []interface{} {
	return []interface{}{pq.Array(r.batchNames), pq.Array(r.lateAfter), ref.Format(dateLayout)}
}

// CheckinByHour returns 24 hourly buckets for the most recent attendance date.
func (r *AttendanceMetricsRepository) CheckinByHour(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error) {
	const query = `WITH latest AS (
    SELECT MAX(attendance_date) AS day FROM attendance_records WHERE attendance_date <= $1::date
),
hours AS (
    SELECT generate_series(0, 23) AS hour
),
checkins AS (
    SELECT EXTRACT(HOUR FROM r.earliest_sign_in)::int AS hour, COUNT(*) AS checkin
    FROM attendance_records r
    JOIN employees e ON e.employee_name = r.employee_name AND e.active
    WHERE r.attendance_date = (SELECT day FROM latest) AND r.earliest_sign_in IS NOT NULL
    GROUP BY 1
)
SELECT h.hour || ':00' AS label, COALESCE(c.checkin, 0) AS checkin
FROM hours h
LEFT JOIN checkins c ON c.hour = h.hour
WHERE (SELECT day FROM latest) IS NOT NULL
ORDER BY h.hour`
	var points []models.CheckinPoint
	if err := r.db.SelectContext(ctx, &points, query, ref.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("checkin by hour: %w", err)
	}
	return points, nil
}

// CheckinByDay returns the last seven calendar days for batch assigned employees.
func (r *AttendanceMetricsRepository) CheckinByDay(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error) {
	const query = `WITH ` + batchRulesCTE + `,
days AS (
    SELECT generate_series($3::date - 6, $3::date, interval '1 day')::date AS day
),
checkins AS (
    SELECT r.attendance_date AS day, COUNT(*) AS checkin
    ` + batchRecordsFrom + `
    WHERE r.attendance_date BETWEEN $3::date - 6 AND $3::date AND r.earliest_sign_in IS NOT NULL
    GROUP BY r.attendance_date
)
SELECT to_char(d.day, 'MM-DD') AS label, COALESCE(c.checkin, 0) AS checkin
FROM days d
LEFT JOIN checkins c ON c.day = d.day
WHERE EXISTS (SELECT 1 FROM attendance_records WHERE attendance_date BETWEEN $3::date - 6 AND $3::date)
ORDER BY d.day`
	var points []models.CheckinPoint
	if err := r.db.SelectContext(ctx, &points, query, r.batchArgs(ref)...); err != nil {
		return nil, fmt.Errorf("checkin by day: %w", err)
	}
	return points, nil
}

// CheckinByWeekOfMonth buckets the reference month by ceil(day/7).
func (r *AttendanceMetricsRepository) CheckinByWeekOfMonth(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error) {
	const query = `WITH ` + batchRulesCTE + `,
bounds AS (
    SELECT date_trunc('month', $3::date)::date AS first_day,
           (date_trunc('month', $3::date) + interval '1 month - 1 day')::date AS last_day
),
weeks AS (
    SELECT generate_series(1, CEIL(EXTRACT(DAY FROM (SELECT last_day FROM bounds)) / 7.0)::int) AS week
),
checkins AS (
    SELECT CEIL(EXTRACT(DAY FROM r.attendance_date) / 7.0)::int AS week, COUNT(*) AS checkin
    ` + batchRecordsFrom + `
    WHERE r.attendance_date BETWEEN (SELECT first_day FROM bounds) AND (SELECT last_day FROM bounds)
      AND r.earliest_sign_in IS NOT NULL
    GROUP BY 1
)
SELECT 'Week ' || w.week AS label, COALESCE(c.checkin, 0) AS checkin
FROM weeks w
LEFT JOIN checkins c ON c.week = w.week
WHERE EXISTS (
    SELECT 1 FROM attendance_records
    WHERE attendance_date BETWEEN (SELECT first_day FROM bounds) AND (SELECT last_day FROM bounds)
)
ORDER BY w.week`
	var points []models.CheckinPoint
	if err := r.db.SelectContext(ctx, &points, query, r.batchArgs(ref)...); err != nil {
		return nil, fmt.Errorf("checkin by week of month: %w", err)
	}
	return points, nil
}

// CheckinByMonth returns the last three calendar months across all employees.
func (r *AttendanceMetricsRepository) CheckinByMonth(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error) {
	const query = `WITH months AS (
    SELECT generate_series(
        date_trunc('month', $1::date) - interval '2 months',
        date_trunc('month', $1::date),
        interval '1 month'
    )::date AS month_start
),
checkins AS (
    SELECT date_trunc('month', r.attendance_date)::date AS month_start, COUNT(*) AS checkin
    FROM attendance_records r
    JOIN employees e ON e.employee_name = r.employee_name AND e.active
    WHERE r.attendance_date >= (SELECT MIN(month_start) FROM months)
      AND r.attendance_date <= $1::date
      AND r.earliest_sign_in IS NOT NULL
    GROUP BY 1
)
SELECT to_char(m.month_start, 'Mon') AS label, COALESCE(c.checkin, 0) AS checkin
FROM months m
LEFT JOIN checkins c ON c.month_start = m.month_start
WHERE EXISTS (
    SELECT 1 FROM attendance_records
    WHERE attendance_date >= (SELECT MIN(month_start) FROM months) AND attendance_date <= $1::date
)
ORDER BY m.month_start`
	var points []models.CheckinPoint
	if err := r.db.SelectContext(ctx, &points, query, ref.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("checkin by month: %w", err)
	}
	return points, nil
}

// LateEvents lists every late sign-in of the most recent attendance date with
// the whole minutes past its batch threshold.
func (r *AttendanceMetricsRepository) LateEvents(ctx context.Context, ref time.Time) ([]models.LatePoint, error) {
	const query = `WITH ` + batchRulesCTE + `,
` + latestDayCTE + `
SELECT to_char(r.earliest_sign_in, 'HH24:MI') AS label,
       FLOOR(EXTRACT(EPOCH FROM (r.earliest_sign_in::time - b.late_after)) / 60)::int AS value
` + batchRecordsFrom + `
WHERE r.attendance_date = (SELECT day FROM latest) AND ` + lateCondition + `
ORDER BY r.earliest_sign_in::time`
	var points []models.LatePoint
	if err := r.db.SelectContext(ctx, &points, query, r.batchArgs(ref)...); err != nil {
		return nil, fmt.Errorf("late events: %w", err)
	}
	return points, nil
}

// lateCountQuery counts late sign-ins per day over a generated calendar window.
// start and end are SQL date expressions; label renders each day d.day.
func lateCountQuery(start, end, label string) string {
	return `WITH ` + batchRulesCTE + `,
days AS (
    SELECT generate_series(` + start + `, ` + end + `, interval '1 day')::date AS day
),
lates AS (
    SELECT r.attendance_date AS day, COUNT(*) AS late_count
    ` + batchRecordsFrom + `
    WHERE r.attendance_date BETWEEN ` + start + ` AND ` + end + ` AND ` + lateCondition + `
    GROUP BY r.attendance_date
)
SELECT ` + label + ` AS label, COALESCE(l.late_count, 0)::int AS value
FROM days d
LEFT JOIN lates l ON l.day = d.day
WHERE EXISTS (SELECT 1 FROM attendance_records WHERE attendance_date BETWEEN ` + start + ` AND ` + end + `)
ORDER BY d.day`
}

var (
	lateByWeekdayQuery = lateCountQuery(
		"date_trunc('week', $3::date)::date",
		"(date_trunc('week', $3::date) + interval '6 days')::date",
		"to_char(d.day, 'Dy')",
	)
	lateByDayOfMonthQuery = lateCountQuery(
		"date_trunc('month', $3::date)::date",
		"$3::date",
		"EXTRACT(DAY FROM d.day)::int::text",
	)
	lateByDayOfQuarterQuery = lateCountQuery(
		"date_trunc('quarter', $3::date)::date",
		"$3::date",
		"(d.day - date_trunc('quarter', $3::date)::date + 1)::text",
	)
)

// LateByWeekday counts late sign-ins for Monday to Sunday of the reference week.
func (r *AttendanceMetricsRepository) LateByWeekday(ctx context.Context, ref time.Time) ([]models.LatePoint, error) {
	return r.selectLate(ctx, "late by weekday", lateByWeekdayQuery, ref)
}

// LateByDayOfMonth counts late sign-ins from the first of the month to the reference date.
func (r *AttendanceMetricsRepository) LateByDayOfMonth(ctx context.Context, ref time.Time) ([]models.LatePoint, error) {
	return r.selectLate(ctx, "late by day of month", lateByDayOfMonthQuery, ref)
}

// LateByDayOfQuarter counts late sign-ins per day index since the quarter started.
func (r *AttendanceMetricsRepository) LateByDayOfQuarter(ctx context.Context, ref time.Time) ([]models.LatePoint, error) {
	return r.selectLate(ctx, "late by day of quarter", lateByDayOfQuarterQuery, ref)
}

func (r *AttendanceMetricsRepository) selectLate(ctx context.Context, name, query string, ref time.Time) ([]models.LatePoint, error) {
	var points []models.LatePoint
	if err := r.db.SelectContext(ctx, &points, query, r.batchArgs(ref)...); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return points, nil
}

// OvertimeByDepartment sums sign-out minutes past the overtime threshold over
// the last 30 days and returns the top six departments.
func (r *AttendanceMetricsRepository) OvertimeByDepartment(ctx context.Context, ref time.Time) ([]models.DepartmentOvertime, error) {
	const query = `SELECT e.department,
       ROUND((SUM(FLOOR(EXTRACT(EPOCH FROM (r.latest_sign_out::time - $1::time)) / 60)) / 60.0)::numeric, 1)::float8 AS overtime_hours
FROM attendance_records r
JOIN employees e ON e.employee_name = r.employee_name AND e.active
WHERE r.attendance_date > $2::date - 30
  AND r.attendance_date <= $2::date
  AND r.latest_sign_out IS NOT NULL
  AND r.latest_sign_out::time > $1::time
GROUP BY e.department
ORDER BY overtime_hours DESC, e.department
LIMIT 6`
	var rows []models.DepartmentOvertime
	if err := r.db.SelectContext(ctx, &rows, query, r.overtimeAfter, ref.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("overtime by department: %w", err)
	}
	return rows, nil
}

// BatchDistribution counts check-ins per batch on the most recent attendance date.
func (r *AttendanceMetricsRepository) BatchDistribution(ctx context.Context, ref time.Time) ([]models.BatchCount, error) {
	const query = `WITH latest AS (
    SELECT MAX(attendance_date) AS day FROM attendance_records WHERE attendance_date <= $1::date
)
SELECT a.batch, COUNT(*) AS count
FROM attendance_records r
JOIN employees e ON e.employee_name = r.employee_name AND e.active
JOIN attendance_batch_assignments a ON a.employee_name = r.employee_name
WHERE r.attendance_date = (SELECT day FROM latest) AND r.earliest_sign_in IS NOT NULL
GROUP BY a.batch
ORDER BY a.batch`
	var rows []models.BatchCount
	if err := r.db.SelectContext(ctx, &rows, query, ref.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("batch distribution: %w", err)
	}
	return rows, nil
}

type snapshotRow struct {
	AttendanceDate sql.NullTime `db:"attendance_date"`
	CheckinCount   int          `db:"checkin_count"`
	LateCount      int          `db:"late_count"`
	TotalEmployees int          `db:"total_employees"`
}

// Snapshot summarises the most recent attendance date. found is false when no
// attendance date exists on or before ref.
func (r *AttendanceMetricsRepository) Snapshot(ctx context.Context, ref time.Time) (models.AttendanceSnapshot, bool, error) {
	const query = `WITH ` + batchRulesCTE + `,
` + latestDayCTE + `
SELECT
    (SELECT day FROM latest) AS attendance_date,
    (SELECT COUNT(*)
       FROM attendance_records r
       JOIN employees e ON e.employee_name = r.employee_name AND e.active
      WHERE r.attendance_date = (SELECT day FROM latest) AND r.earliest_sign_in IS NOT NULL) AS checkin_count,
    (SELECT COUNT(*)
       ` + batchRecordsFrom + `
      WHERE r.attendance_date = (SELECT day FROM latest) AND ` + lateCondition + `) AS late_count,
    (SELECT COUNT(*) FROM employees WHERE active) AS total_employees`
	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, r.batchArgs(ref)...); err != nil {
		return models.AttendanceSnapshot{}, false, fmt.Errorf("attendance snapshot: %w", err)
	}
	if !row.AttendanceDate.Valid {
		return models.AttendanceSnapshot{}, false, nil
	}
	return models.NewAttendanceSnapshot(row.CheckinCount, row.LateCount, row.TotalEmployees), true, nil
}
