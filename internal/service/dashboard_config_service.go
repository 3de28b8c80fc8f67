package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard-api/internal/dto"
	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
)

const (
	defaultCardIcon  = "fa-chart-bar"
	defaultCardColor = "text-blue-600"
	defaultCardBg    = "bg-blue-50"
	defaultChartIcon = "fa-chart-line"
)

type dashboardConfigRepository interface {
	ListDimensions(ctx context.Context) ([]models.Dimension, error)
	ListCards(ctx context.Context) ([]models.KpiCardConfig, error)
	ListCharts(ctx context.Context) ([]models.ChartConfig, error)
	CreateDimension(ctx context.Context, dim *models.Dimension) (int64, error)
	UpdateDimension(ctx context.Context, dim *models.Dimension) error
	DeleteDimension(ctx context.Context, id int64) error
	CreateCard(ctx context.Context, card *models.KpiCardConfig) (int64, error)
	UpdateCard(ctx context.Context, card *models.KpiCardConfig) error
	DeleteCard(ctx context.Context, id int64) error
	CreateChart(ctx context.Context, chart *models.ChartConfig) (int64, error)
	UpdateChart(ctx context.Context, chart *models.ChartConfig) error
	DeleteChart(ctx context.Context, id int64) error
}

type mutationRecorder interface {
	RecordConfigMutation(mutationType string, err error)
}

// DashboardConfigService manages dimensions and the cards and charts they own.
type DashboardConfigService struct {
	repo      dashboardConfigRepository
	validator *validator.Validate
	metrics   mutationRecorder
	logger    *zap.Logger
	mutations map[string]func(context.Context, json.RawMessage) (int64, error)
}

// NewDashboardConfigService builds the config store service. metrics and logger are optional.
func NewDashboardConfigService(repo dashboardConfigRepository, validate *validator.Validate, metrics mutationRecorder, logger *zap.Logger) *DashboardConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DashboardConfigService{repo: repo, validator: validate, metrics: metrics, logger: logger}
	s.mutations = map[string]func(context.Context, json.RawMessage) (int64, error){
		dto.MutationCreateDimension: decodeInto(s.CreateDimension),
		dto.MutationCreateCard:      decodeInto(s.CreateCard),
		dto.MutationCreateChart:     decodeInto(s.CreateChart),
		dto.MutationUpdateDimension: decodeInto(withoutID(s.UpdateDimension)),
		dto.MutationUpdateCard:      decodeInto(withoutID(s.UpdateCard)),
		dto.MutationUpdateChart:     decodeInto(withoutID(s.UpdateChart)),
		dto.MutationDeleteDimension: decodeInto(withoutID(s.DeleteDimension)),
		dto.MutationDeleteCard:      decodeInto(withoutID(s.DeleteCard)),
		dto.MutationDeleteChart:     decodeInto(withoutID(s.DeleteChart)),
	}
	return s
}

// List returns every dimension ordered by sort_order with its cards and charts nested.
func (s *DashboardConfigService) List(ctx context.Context) ([]models.Dimension, error) {
	dims, err := s.repo.ListDimensions(ctx)
	if err != nil {
		return nil, appErrors.With(appErrors.ErrInternal, err, "failed to list dimensions")
	}
	cards, err := s.repo.ListCards(ctx)
	if err != nil {
		return nil, appErrors.With(appErrors.ErrInternal, err, "failed to list kpi cards")
	}
	charts, err := s.repo.ListCharts(ctx)
	if err != nil {
		return nil, appErrors.With(appErrors.ErrInternal, err, "failed to list charts")
	}

	index := make(map[int64]int, len(dims))
	for i := range dims {
		dims[i].Cards = []models.KpiCardConfig{}
		dims[i].Charts = []models.ChartConfig{}
		index[dims[i].ID] = i
	}
	for _, card := range cards {
		if i, ok := index[card.DimensionID]; ok {
			dims[i].Cards = append(dims[i].Cards, card)
		}
	}
	for _, chart := range charts {
		if i, ok := index[chart.DimensionID]; ok {
			dims[i].Charts = append(dims[i].Charts, chart)
		}
	}
	if dims == nil {
		dims = []models.Dimension{}
	}
	return dims, nil
}

// Apply dispatches one admin mutation by type. The returned id is set for inserts only.
func (s *DashboardConfigService) Apply(ctx context.Context, mutationType string, data json.RawMessage) (int64, error) {
	handler, ok := s.mutations[mutationType]
	if !ok {
		return 0, appErrors.ErrInvalidType
	}
	id, err := handler(ctx, data)
	if s.metrics != nil {
		s.metrics.RecordConfigMutation(mutationType, err)
	}
	if err != nil {
		s.logger.Warn("dashboard config mutation failed", zap.String("type", mutationType), zap.Error(err))
		return 0, err
	}
	s.logger.Info("dashboard config mutated", zap.String("type", mutationType), zap.Int64("id", id))
	return id, nil
}

// CreateDimension validates and stores a new dimension.
func (s *DashboardConfigService) CreateDimension(ctx context.Context, req dto.DimensionRequest) (int64, error) {
	if err := s.validate(req, "invalid dimension payload"); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateDimension(ctx, &models.Dimension{KeyName: req.KeyName, Label: req.Label, SortOrder: req.SortOrder})
	if err != nil {
		return 0, appErrors.FromStore(err, "dimension")
	}
	return id, nil
}

// UpdateDimension changes the label and sort order of a dimension.
func (s *DashboardConfigService) UpdateDimension(ctx context.Context, req dto.UpdateDimensionRequest) error {
	if err := s.validate(req, "invalid dimension payload"); err != nil {
		return err
	}
	err := s.repo.UpdateDimension(ctx, &models.Dimension{ID: req.ID, KeyName: req.KeyName, Label: req.Label, SortOrder: req.SortOrder})
	return appErrors.FromStore(err, "dimension")
}

// DeleteDimension also removes the dimension's cards and charts.
func (s *DashboardConfigService) DeleteDimension(ctx context.Context, req dto.DeleteRequest) error {
	if err := s.validate(req, "invalid delete payload"); err != nil {
		return err
	}
	return appErrors.FromStore(s.repo.DeleteDimension(ctx, req.ID), "dimension")
}

// CreateCard stores a KPI card, filling in the default icon and colours.
func (s *DashboardConfigService) CreateCard(ctx context.Context, req dto.CardRequest) (int64, error) {
	if err := s.validate(req, "invalid card payload"); err != nil {
		return 0, err
	}
	card := &models.KpiCardConfig{
		DimensionID: req.DimensionID,
		Title:       req.Title,
		Icon:        orDefault(req.Icon, defaultCardIcon),
		SQLQuery:    req.SQLQuery,
		ColorClass:  orDefault(req.ColorClass, defaultCardColor),
		BgClass:     orDefault(req.BgClass, defaultCardBg),
		SortOrder:   req.SortOrder,
	}
	id, err := s.repo.CreateCard(ctx, card)
	if err != nil {
		return 0, appErrors.FromStore(err, "card")
	}
	return id, nil
}

// UpdateCard replaces a card. Its dimension never changes.
func (s *DashboardConfigService) UpdateCard(ctx context.Context, req dto.UpdateCardRequest) error {
	if err := s.validate(req, "invalid card payload"); err != nil {
		return err
	}
	card := &models.KpiCardConfig{
		ID:         req.ID,
		Title:      req.Title,
		Icon:       orDefault(req.Icon, defaultCardIcon),
		SQLQuery:   req.SQLQuery,
		ColorClass: orDefault(req.ColorClass, defaultCardColor),
		BgClass:    orDefault(req.BgClass, defaultCardBg),
		SortOrder:  req.SortOrder,
	}
	return appErrors.FromStore(s.repo.UpdateCard(ctx, card), "card")
}

// DeleteCard removes a card by id.
func (s *DashboardConfigService) DeleteCard(ctx context.Context, req dto.DeleteRequest) error {
	if err := s.validate(req, "invalid delete payload"); err != nil {
		return err
	}
	return appErrors.FromStore(s.repo.DeleteCard(ctx, req.ID), "card")
}

// CreateChart stores a chart; chart_type defaults to line.
func (s *DashboardConfigService) CreateChart(ctx context.Context, req dto.ChartRequest) (int64, error) {
	if err := s.validate(req, "invalid chart payload"); err != nil {
		return 0, err
	}
	chart := &models.ChartConfig{
		DimensionID: req.DimensionID,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		ChartType:   models.ChartType(orDefault(req.ChartType, string(models.ChartTypeLine))),
		Icon:        orDefault(req.Icon, defaultChartIcon),
		SQLQuery:    req.SQLQuery,
		SortOrder:   req.SortOrder,
	}
	id, err := s.repo.CreateChart(ctx, chart)
	if err != nil {
		return 0, appErrors.FromStore(err, "chart")
	}
	return id, nil
}

// UpdateChart replaces a chart. Its dimension never changes.
func (s *DashboardConfigService) UpdateChart(ctx context.Context, req dto.UpdateChartRequest) error {
	if err := s.validate(req, "invalid chart payload"); err != nil {
		return err
	}
	chart := &models.ChartConfig{
		ID:        req.ID,
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		ChartType: models.ChartType(orDefault(req.ChartType, string(models.ChartTypeLine))),
		Icon:      orDefault(req.Icon, defaultChartIcon),
		SQLQuery:  req.SQLQuery,
		SortOrder: req.SortOrder,
	}
	return appErrors.FromStore(s.repo.UpdateChart(ctx, chart), "chart")
}

// DeleteChart removes a chart by id.
func (s *DashboardConfigService) DeleteChart(ctx context.Context, req dto.DeleteRequest) error {
	if err := s.validate(req, "invalid delete payload"); err != nil {
		return err
	}
	return appErrors.FromStore(s.repo.DeleteChart(ctx, req.ID), "chart")
}

func (s *DashboardConfigService) validate(req interface{}, message string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.With(appErrors.ErrValidation, err, message)
	}
	return nil
}

// decodeInto adapts a typed mutation to the raw JSON dispatch table.
func decodeInto[T any](fn func(context.Context, T) (int64, error)) func(context.Context, json.RawMessage) (int64, error) {
	return func(ctx context.Context, raw json.RawMessage) (int64, error) {
		var req T
		if len(raw) == 0 || string(raw) == "null" {
			return 0, appErrors.Clone(appErrors.ErrValidation, "data is required")
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			return 0, appErrors.With(appErrors.ErrValidation, err, "invalid data payload")
		}
		return fn(ctx, req)
	}
}

func withoutID[T any](fn func(context.Context, T) error) func(context.Context, T) (int64, error) {
	return func(ctx context.Context, req T) (int64, error) {
		return 0, fn(ctx, req)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
