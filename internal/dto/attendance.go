package dto

// AttendanceQuery binds the dashboard query string.
type AttendanceQuery struct {
	TimeRange string `form:"timeRange"`
}

// AttendanceExportQuery selects one dashboard series for download.
type AttendanceExportQuery struct {
	TimeRange string `form:"timeRange"`
	Series    string `form:"series" validate:"required,oneof=checkinTrend lateDistribution overtimeData batchDistribution attendanceStats"`
	Format    string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
