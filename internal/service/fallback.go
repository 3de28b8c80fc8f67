package service

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/attendance-dashboard-api/internal/models"
)

// intSource is the subset of *rand.Rand the synthetic generators need.
type intSource interface {
	Intn(n int) int
}

// lockedSource lets concurrent generators share one seeded *rand.Rand.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newLockedSource(seed int64) *lockedSource {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}

// between returns a value in [lo, hi).
func between(src intSource, lo, hi int) int {
	return lo + src.Intn(hi-lo)
}

var syntheticDepartments = []string{
	"Corporate Banking",
	"Retail Banking",
	"Credit",
	"Asset Management",
	"Shared Services",
	"Self-Service Analytics",
}

var syntheticBatches = []models.BatchCount{
	{Batch: "0815", Count: 85},
	{Batch: "0850", Count: 65},
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func weeksInMonth(t time.Time) int {
	return (daysInMonth(t) + 6) / 7
}

func quarterStart(t time.Time) time.Time {
	month := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, ignoring clock time and DST shifts.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// isoWeekStart returns the Monday of t's week.
func isoWeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func syntheticCheckinByHour(src intSource, _ time.Time) []models.CheckinPoint {
	points := make([]models.CheckinPoint, 0, 24)
	for h := 0; h < 24; h++ {
		points = append(points, models.CheckinPoint{Label: fmt.Sprintf("%d:00", h), Checkin: between(src, 5, 20)})
	}
	return points
}

func syntheticCheckinByDay(src intSource, ref time.Time) []models.CheckinPoint {
	first := startOfDay(ref).AddDate(0, 0, -6)
	points := make([]models.CheckinPoint, 0, 7)
	for i := 0; i < 7; i++ {
		day := first.AddDate(0, 0, i)
		points = append(points, models.CheckinPoint{Label: day.Format("01-02"), Checkin: between(src, 100, 140)})
	}
	return points
}

func syntheticCheckinByWeekOfMonth(src intSource, ref time.Time) []models.CheckinPoint {
	weeks := weeksInMonth(ref)
	points := make([]models.CheckinPoint, 0, weeks)
	for w := 1; w <= weeks; w++ {
		points = append(points, models.CheckinPoint{Label: fmt.Sprintf("Week %d", w), Checkin: between(src, 450, 550)})
	}
	return points
}

func syntheticCheckinByMonth(src intSource, ref time.Time) []models.CheckinPoint {
	current := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	points := make([]models.CheckinPoint, 0, 3)
	for i := 2; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		points = append(points, models.CheckinPoint{Label: month.Format("Jan"), Checkin: between(src, 1200, 1500)})
	}
	return points
}

// syntheticLateEvents fabricates 30 sign-ins between 08:01 and 09:59 ordered by time.
func syntheticLateEvents(src intSource, _ time.Time) []models.LatePoint {
	minutes := make([]int, 0, 30)
	for i := 0; i < 30; i++ {
		minutes = append(minutes, between(src, 8*60+1, 10*60))
	}
	sort.Ints(minutes)
	points := make([]models.LatePoint, 0, len(minutes))
	for _, m := range minutes {
		points = append(points, models.LatePoint{
			Label: fmt.Sprintf("%02d:%02d", m/60, m%60),
			Value: between(src, 1, 61),
		})
	}
	return points
}

func syntheticLateByWeekday(src intSource, ref time.Time) []models.LatePoint {
	monday := isoWeekStart(ref)
	points := make([]models.LatePoint, 0, 7)
	for i := 0; i < 7; i++ {
		points = append(points, models.LatePoint{Label: monday.AddDate(0, 0, i).Format("Mon"), Value: between(src, 1, 11)})
	}
	return points
}

func syntheticLateByDayOfMonth(src intSource, ref time.Time) []models.LatePoint {
	return syntheticLateDays(src, ref.Day())
}

func syntheticLateByDayOfQuarter(src intSource, ref time.Time) []models.LatePoint {
	return syntheticLateDays(src, daysBetween(quarterStart(ref), ref)+1)
}

func syntheticLateDays(src intSource, days int) []models.LatePoint {
	points := make([]models.LatePoint, 0, days)
	for d := 1; d <= days; d++ {
		points = append(points, models.LatePoint{Label: fmt.Sprintf("%d", d), Value: between(src, 1, 9)})
	}
	return points
}

func syntheticOvertime(src intSource) []models.DepartmentOvertime {
	rows := make([]models.DepartmentOvertime, 0, len(syntheticDepartments))
	for _, dept := range syntheticDepartments {
		rows = append(rows, models.DepartmentOvertime{Department: dept, OvertimeHours: float64(between(src, 10, 60))})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OvertimeHours > rows[j].OvertimeHours })
	return rows
}

func syntheticBatchDistribution() []models.BatchCount {
	rows := make([]models.BatchCount, len(syntheticBatches))
	copy(rows, syntheticBatches)
	return rows
}

func syntheticSnapshot(src intSource) models.AttendanceSnapshot {
	return models.NewAttendanceSnapshot(between(src, 100, 150), between(src, 5, 25), 150)
}
