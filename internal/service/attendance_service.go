package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
	"github.com/noah-isme/attendance-dashboard-api/pkg/logger"
)

// Generator names used in logs, metrics and the degraded map of the payload.
const (
	GeneratorCheckinTrend      = "checkinTrend"
	GeneratorLateDistribution  = "lateDistribution"
	GeneratorOvertime          = "overtimeData"
	GeneratorBatchDistribution = "batchDistribution"
	GeneratorSnapshot          = "attendanceStats"
)

type attendanceMetricsRepository interface {
	CheckinByHour(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error)
	CheckinByDay(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error)
	CheckinByWeekOfMonth(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error)
	CheckinByMonth(ctx context.Context, ref time.Time) ([]models.CheckinPoint, error)
	LateEvents(ctx context.Context, ref time.Time) ([]models.LatePoint, error)
	LateByWeekday(ctx context.Context, ref time.Time) ([]models.LatePoint, error)
	LateByDayOfMonth(ctx context.Context, ref time.Time) ([]models.LatePoint, error)
	LateByDayOfQuarter(ctx context.Context, ref time.Time) ([]models.LatePoint, error)
	OvertimeByDepartment(ctx context.Context, ref time.Time) ([]models.DepartmentOvertime, error)
	BatchDistribution(ctx context.Context, ref time.Time) ([]models.BatchCount, error)
	Snapshot(ctx context.Context, ref time.Time) (models.AttendanceSnapshot, bool, error)
}

type generatorRecorder interface {
	RecordGenerator(generator, outcome string, duration time.Duration)
}

// rangeGenerator pairs the store query of one TimeRange with its synthetic stand-in.
type rangeGenerator[T any] struct {
	query     func(attendanceMetricsRepository, context.Context, time.Time) ([]T, error)
	synthetic func(intSource, time.Time) []T
}

var checkinGenerators = map[models.TimeRange]rangeGenerator[models.CheckinPoint]{
	models.TimeRangeToday:   {attendanceMetricsRepository.CheckinByHour, syntheticCheckinByHour},
	models.TimeRangeWeek:    {attendanceMetricsRepository.CheckinByDay, syntheticCheckinByDay},
	models.TimeRangeMonth:   {attendanceMetricsRepository.CheckinByWeekOfMonth, syntheticCheckinByWeekOfMonth},
	models.TimeRangeQuarter: {attendanceMetricsRepository.CheckinByMonth, syntheticCheckinByMonth},
}

var lateGenerators = map[models.TimeRange]rangeGenerator[models.LatePoint]{
	models.TimeRangeToday:   {attendanceMetricsRepository.LateEvents, syntheticLateEvents},
	models.TimeRangeWeek:    {attendanceMetricsRepository.LateByWeekday, syntheticLateByWeekday},
	models.TimeRangeMonth:   {attendanceMetricsRepository.LateByDayOfMonth, syntheticLateByDayOfMonth},
	models.TimeRangeQuarter: {attendanceMetricsRepository.LateByDayOfQuarter, syntheticLateByDayOfQuarter},
}

// AttendanceServiceConfig tunes the metrics engine.
type AttendanceServiceConfig struct {
	QueryTimeout      time.Duration
	SyntheticFallback bool
}

// AttendanceService computes the dashboard series. Generators never fail: a
// query error or an empty window yields a degraded series instead.
type AttendanceService struct {
	repo    attendanceMetricsRepository
	metrics generatorRecorder
	logger  *zap.Logger
	cfg     AttendanceServiceConfig
	now     func() time.Time
	rnd     intSource
}

// NewAttendanceService constructs the engine.
func NewAttendanceService(repo attendanceMetricsRepository, metrics generatorRecorder, logger *zap.Logger, cfg AttendanceServiceConfig) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	return &AttendanceService{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
		rnd:     newLockedSource(time.Now().UnixNano()),
	}
}

// CheckinTrend returns one check-in count per bucket of tr.
func (s *AttendanceService) CheckinTrend(ctx context.Context, tr models.TimeRange) models.Series[[]models.CheckinPoint] {
	return runRange(ctx, s, GeneratorCheckinTrend, checkinGenerators, tr)
}

// LateDistribution returns late events for today, or late counts per day otherwise.
func (s *AttendanceService) LateDistribution(ctx context.Context, tr models.TimeRange) models.Series[[]models.LatePoint] {
	return runRange(ctx, s, GeneratorLateDistribution, lateGenerators, tr)
}

// OvertimeByDepartment returns the six departments with most overtime in the last 30 days.
func (s *AttendanceService) OvertimeByDepartment(ctx context.Context) models.Series[[]models.DepartmentOvertime] {
	ref := s.now()
	return collect(ctx, s, GeneratorOvertime,
		func(ctx context.Context) ([]models.DepartmentOvertime, error) {
			return s.repo.OvertimeByDepartment(ctx, ref)
		},
		func() []models.DepartmentOvertime { return syntheticOvertime(s.rnd) },
	)
}

// BatchDistribution returns check-ins per batch on the most recent attendance date.
func (s *AttendanceService) BatchDistribution(ctx context.Context) models.Series[[]models.BatchCount] {
	ref := s.now()
	return collect(ctx, s, GeneratorBatchDistribution,
		func(ctx context.Context) ([]models.BatchCount, error) { return s.repo.BatchDistribution(ctx, ref) },
		syntheticBatchDistribution,
	)
}

// Snapshot summarises the most recent attendance date. Without any attendance
// date the snapshot is all zeros and never fabricated.
func (s *AttendanceService) Snapshot(ctx context.Context) models.Series[models.AttendanceSnapshot] {
	qctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	snapshot, found, err := s.repo.Snapshot(qctx, s.now())
	duration := time.Since(start)

	switch {
	case err != nil:
		s.degrade(ctx, GeneratorSnapshot, models.DegradedQueryFailed, s.cfg.SyntheticFallback, duration, err)
		if s.cfg.SyntheticFallback {
			return models.Series[models.AttendanceSnapshot]{
				Data:     syntheticSnapshot(s.rnd),
				Degraded: &models.Degradation{Reason: models.DegradedQueryFailed, Synthetic: true},
			}
		}
		return models.Series[models.AttendanceSnapshot]{
			Degraded: &models.Degradation{Reason: models.DegradedQueryFailed},
		}
	case !found:
		s.degrade(ctx, GeneratorSnapshot, models.DegradedNoRows, false, duration, nil)
		return models.Series[models.AttendanceSnapshot]{
			Degraded: &models.Degradation{Reason: models.DegradedNoRows},
		}
	}

	s.record(GeneratorSnapshot, OutcomeOK, duration)
	return models.Series[models.AttendanceSnapshot]{Data: snapshot}
}

// Dashboard runs all five generators concurrently and assembles the payload.
func (s *AttendanceService) Dashboard(ctx context.Context, tr models.TimeRange) (*models.AttendanceDashboard, error) {
	if _, ok := checkinGenerators[tr]; !ok {
		return nil, appErrors.ErrInvalidTimeRange
	}

	var (
		checkin  models.Series[[]models.CheckinPoint]
		late     models.Series[[]models.LatePoint]
		overtime models.Series[[]models.DepartmentOvertime]
		batches  models.Series[[]models.BatchCount]
		snapshot models.Series[models.AttendanceSnapshot]
	)

	var g errgroup.Group
	g.Go(func() error { checkin = s.CheckinTrend(ctx, tr); return nil })
	g.Go(func() error { late = s.LateDistribution(ctx, tr); return nil })
	g.Go(func() error { overtime = s.OvertimeByDepartment(ctx); return nil })
	g.Go(func() error { batches = s.BatchDistribution(ctx); return nil })
	g.Go(func() error { snapshot = s.Snapshot(ctx); return nil })
	if err := g.Wait(); err != nil {
		return nil, appErrors.With(appErrors.ErrInternal, err, "failed to build attendance dashboard")
	}
	if err := ctx.Err(); err != nil {
		return nil, appErrors.With(appErrors.ErrInternal, err, "attendance request cancelled")
	}

	dashboard := &models.AttendanceDashboard{
		CheckinTrend:      nonNil(checkin.Data),
		LateDistribution:  nonNil(late.Data),
		OvertimeData:      nonNil(overtime.Data),
		BatchDistribution: nonNil(batches.Data),
		AttendanceStats:   snapshot.Data,
		TimeRange:         tr,
	}

	degraded := map[string]*models.Degradation{}
	for name, d := range map[string]*models.Degradation{
		GeneratorCheckinTrend:      checkin.Degraded,
		GeneratorLateDistribution:  late.Degraded,
		GeneratorOvertime:          overtime.Degraded,
		GeneratorBatchDistribution: batches.Degraded,
		GeneratorSnapshot:          snapshot.Degraded,
	} {
		if d != nil {
			degraded[name] = d
		}
	}
	if len(degraded) > 0 {
		dashboard.Degraded = degraded
	}

	return dashboard, nil
}

func runRange[T any](ctx context.Context, s *AttendanceService, name string, table map[models.TimeRange]rangeGenerator[T], tr models.TimeRange) models.Series[[]T] {
	gen, ok := table[tr]
	if !ok {
		gen = table[models.TimeRangeToday]
	}
	ref := s.now()
	return collect(ctx, s, name,
		func(ctx context.Context) ([]T, error) { return gen.query(s.repo, ctx, ref) },
		func() []T { return gen.synthetic(s.rnd, ref) },
	)
}

// collect runs one slice generator under the query timeout and applies the
// degradation policy.
func collect[T any](ctx context.Context, s *AttendanceService, name string, query func(context.Context) ([]T, error), synthetic func() []T) models.Series[[]T] {
	qctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	data, err := query(qctx)
	duration := time.Since(start)

	var reason models.DegradedReason
	switch {
	case err != nil:
		reason = models.DegradedQueryFailed
	case len(data) == 0:
		reason = models.DegradedNoRows
	default:
		s.record(name, OutcomeOK, duration)
		return models.Series[[]T]{Data: data}
	}

	s.degrade(ctx, name, reason, s.cfg.SyntheticFallback, duration, err)
	if !s.cfg.SyntheticFallback {
		return models.Series[[]T]{Data: []T{}, Degraded: &models.Degradation{Reason: reason}}
	}
	return models.Series[[]T]{
		Data:     synthetic(),
		Degraded: &models.Degradation{Reason: reason, Synthetic: true},
	}
}

func (s *AttendanceService) degrade(ctx context.Context, name string, reason models.DegradedReason, synthetic bool, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("generator", name),
		zap.String("reason", string(reason)),
		zap.Bool("synthetic", synthetic),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.WithContext(ctx, s.logger).Warn("attendance generator degraded", fields...)
	s.record(name, string(reason), duration)
}

func (s *AttendanceService) record(name, outcome string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordGenerator(name, outcome, duration)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
