package models

import "math"

// TimeRange selects the calendar window of the dashboard series.
type TimeRange string

const (
	TimeRangeToday   TimeRange = "today"
	TimeRangeWeek    TimeRange = "week"
	TimeRangeMonth   TimeRange = "month"
	TimeRangeQuarter TimeRange = "quarter"
)

// TimeRanges lists every supported range in display order.
var TimeRanges = []TimeRange{TimeRangeToday, TimeRangeWeek, TimeRangeMonth, TimeRangeQuarter}

// ParseTimeRange maps query input to a TimeRange. Empty input selects today.
func ParseTimeRange(raw string) (TimeRange, bool) {
	if raw == "" {
		return TimeRangeToday, true
	}
	for _, tr := range TimeRanges {
		if string(tr) == raw {
			return tr, true
		}
	}
	return "", false
}

// CheckinPoint is one bucket of the check-in trend.
type CheckinPoint struct {
	Label   string `db:"label" json:"label"`
	Checkin int    `db:"checkin" json:"checkin"`
}

// LatePoint holds minutes late for a single event (today) or a late count per day.
type LatePoint struct {
	Label string `db:"label" json:"label"`
	Value int    `db:"value" json:"value"`
}

type DepartmentOvertime struct {
	Department    string  `db:"department" json:"department"`
	OvertimeHours float64 `db:"overtime_hours" json:"overtime_hours"`
}

type BatchCount struct {
	Batch string `db:"batch" json:"batch"`
	Count int    `db:"count" json:"count"`
}

// AttendanceSnapshot summarises the most recent attendance date.
type AttendanceSnapshot struct {
	CheckinCount   int `db:"checkin_count" json:"checkinCount"`
	LateCount      int `db:"late_count" json:"lateCount"`
	TotalEmployees int `db:"total_employees" json:"totalEmployees"`
	TotalPresent   int `db:"-" json:"totalPresent"`
	LateRate       int `db:"-" json:"lateRate"`
}

// NewAttendanceSnapshot derives TotalPresent and LateRate from the raw counts.
func NewAttendanceSnapshot(checkin, late, totalEmployees int) AttendanceSnapshot {
	return AttendanceSnapshot{
		CheckinCount:   checkin,
		LateCount:      late,
		TotalEmployees: totalEmployees,
		TotalPresent:   checkin,
		LateRate:       LateRate(late, checkin),
	}
}

// LateRate returns round(late/checkin*100), or 0 without check-ins.
func LateRate(late, checkin int) int {
	if checkin <= 0 {
		return 0
	}
	return int(math.Round(float64(late) / float64(checkin) * 100))
}

// DegradedReason explains why a series is not backed by store data.
type DegradedReason string

const (
	DegradedQueryFailed DegradedReason = "query_failed"
	DegradedNoRows      DegradedReason = "no_rows"
)

// Degradation flags a series whose data was substituted or left empty.
type Degradation struct {
	Reason    DegradedReason `json:"reason"`
	Synthetic bool           `json:"synthetic"`
}

// Series carries generator output along with its degradation state.
type Series[T any] struct {
	Data     T
	Degraded *Degradation
}

// AttendanceDashboard is the payload of GET /attendance.
type AttendanceDashboard struct {
	CheckinTrend      []CheckinPoint          `json:"checkinTrend"`
	LateDistribution  []LatePoint             `json:"lateDistribution"`
	OvertimeData      []DepartmentOvertime    `json:"overtimeData"`
	BatchDistribution []BatchCount            `json:"batchDistribution"`
	AttendanceStats   AttendanceSnapshot      `json:"attendanceStats"`
	TimeRange         TimeRange               `json:"timeRange"`
	Degraded          map[string]*Degradation `json:"degraded,omitempty"`
}
