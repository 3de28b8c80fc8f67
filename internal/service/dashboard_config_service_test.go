package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard-api/internal/dto"
	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
)

type dashboardConfigRepoStub struct {
	dims   []models.Dimension
	cards  []models.KpiCardConfig
	charts []models.ChartConfig
	nextID int64
	err    error
}

func (s *dashboardConfigRepoStub) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *dashboardConfigRepoStub) ListDimensions(ctx context.Context) ([]models.Dimension, error) {
	return s.dims, s.err
}

func (s *dashboardConfigRepoStub) ListCards(ctx context.Context) ([]models.KpiCardConfig, error) {
	return s.cards, s.err
}

func (s *dashboardConfigRepoStub) ListCharts(ctx context.Context) ([]models.ChartConfig, error) {
	return s.charts, s.err
}

func (s *dashboardConfigRepoStub) CreateDimension(ctx context.Context, dim *models.Dimension) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	dim.ID = s.id()
	s.dims = append(s.dims, *dim)
	return dim.ID, nil
}

func (s *dashboardConfigRepoStub) UpdateDimension(ctx context.Context, dim *models.Dimension) error {
	for i := range s.dims {
		if s.dims[i].ID == dim.ID {
			s.dims[i] = *dim
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *dashboardConfigRepoStub) DeleteDimension(ctx context.Context, id int64) error {
	for i := range s.dims {
		if s.dims[i].ID == id {
			s.dims = append(s.dims[:i], s.dims[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *dashboardConfigRepoStub) CreateCard(ctx context.Context, card *models.KpiCardConfig) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	card.ID = s.id()
	s.cards = append(s.cards, *card)
	return card.ID, nil
}

func (s *dashboardConfigRepoStub) UpdateCard(ctx context.Context, card *models.KpiCardConfig) error {
	for i := range s.cards {
		if s.cards[i].ID == card.ID {
			card.DimensionID = s.cards[i].DimensionID
			s.cards[i] = *card
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *dashboardConfigRepoStub) DeleteCard(ctx context.Context, id int64) error {
	return sql.ErrNoRows
}

func (s *dashboardConfigRepoStub) CreateChart(ctx context.Context, chart *models.ChartConfig) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	chart.ID = s.id()
	s.charts = append(s.charts, *chart)
	return chart.ID, nil
}

func (s *dashboardConfigRepoStub) UpdateChart(ctx context.Context, chart *models.ChartConfig) error {
	return s.err
}

func (s *dashboardConfigRepoStub) DeleteChart(ctx context.Context, id int64) error {
	return s.err
}

func newTestDashboardConfigService(repo dashboardConfigRepository) *DashboardConfigService {
	return NewDashboardConfigService(repo, validator.New(), nil, nil)
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestDashboardConfigCreateCardRequiresSQLQuery(t *testing.T) {
	repo := &dashboardConfigRepoStub{}
	svc := newTestDashboardConfigService(repo)

	_, err := svc.Apply(context.Background(), dto.MutationCreateCard, rawJSON(t, map[string]interface{}{
		"dimension_id": 1,
		"title":        "Check-ins",
	}))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.cards)
}

func TestDashboardConfigCreateCardAppliesDefaults(t *testing.T) {
	repo := &dashboardConfigRepoStub{}
	svc := newTestDashboardConfigService(repo)

	id, err := svc.Apply(context.Background(), dto.MutationCreateCard, rawJSON(t, dto.CardRequest{
		DimensionID: 1,
		Title:       "Check-ins",
		SQLQuery:    "SELECT COUNT(*) AS value FROM attendance_records",
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, repo.cards, 1)
	assert.Equal(t, "fa-chart-bar", repo.cards[0].Icon)
	assert.Equal(t, "text-blue-600", repo.cards[0].ColorClass)
	assert.Equal(t, "bg-blue-50", repo.cards[0].BgClass)
}

func TestDashboardConfigCreateChartDefaultsAndValidatesType(t *testing.T) {
	repo := &dashboardConfigRepoStub{}
	svc := newTestDashboardConfigService(repo)

	_, err := svc.Apply(context.Background(), dto.MutationCreateChart, rawJSON(t, dto.ChartRequest{
		DimensionID: 2, Title: "Trend", SQLQuery: "SELECT 1",
	}))
	require.NoError(t, err)
	assert.Equal(t, models.ChartTypeLine, repo.charts[0].ChartType)
	assert.Equal(t, "fa-chart-line", repo.charts[0].Icon)

	_, err = svc.Apply(context.Background(), dto.MutationCreateChart, rawJSON(t, dto.ChartRequest{
		DimensionID: 2, Title: "Trend", SQLQuery: "SELECT 1", ChartType: "pie",
	}))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestDashboardConfigDimensionKeyValidation(t *testing.T) {
	svc := newTestDashboardConfigService(&dashboardConfigRepoStub{})

	_, err := svc.Apply(context.Background(), dto.MutationCreateDimension, rawJSON(t, dto.DimensionRequest{KeyName: "year", Label: "Year"}))
	require.Error(t, err)

	id, err := svc.Apply(context.Background(), dto.MutationCreateDimension, rawJSON(t, dto.DimensionRequest{KeyName: "week", Label: "Week", SortOrder: 2}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestDashboardConfigApplyUnknownType(t *testing.T) {
	svc := newTestDashboardConfigService(&dashboardConfigRepoStub{})

	_, err := svc.Apply(context.Background(), "drop_everything", rawJSON(t, map[string]int{"id": 1}))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Invalid type", appErr.Message)
}

func TestDashboardConfigApplyRejectsMissingData(t *testing.T) {
	svc := newTestDashboardConfigService(&dashboardConfigRepoStub{})

	_, err := svc.Apply(context.Background(), dto.MutationDeleteDimension, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Apply(context.Background(), dto.MutationDeleteDimension, json.RawMessage(`{"id":"abc"}`))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDashboardConfigUpdateMissingRowIsNotFound(t *testing.T) {
	svc := newTestDashboardConfigService(&dashboardConfigRepoStub{})

	_, err := svc.Apply(context.Background(), dto.MutationUpdateCard, rawJSON(t, dto.UpdateCardRequest{ID: 9, Title: "x", SQLQuery: "SELECT 1"}))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "card not found", appErrors.FromError(err).Message)
}

func TestDashboardConfigStoreErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unique", &pq.Error{Code: "23505"}, http.StatusConflict},
		{"foreign key", &pq.Error{Code: "23503"}, http.StatusBadRequest},
		{"other", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestDashboardConfigService(&dashboardConfigRepoStub{err: tc.err})
			_, err := svc.Apply(context.Background(), dto.MutationCreateChart, rawJSON(t, dto.ChartRequest{
				DimensionID: 99, Title: "Trend", SQLQuery: "SELECT 1",
			}))
			require.Error(t, err)
			assert.Equal(t, tc.status, appErrors.FromError(err).Status)
		})
	}
}

func TestDashboardConfigListNestsCardsAndCharts(t *testing.T) {
	repo := &dashboardConfigRepoStub{
		dims: []models.Dimension{{ID: 1, KeyName: "day", SortOrder: 1}, {ID: 2, KeyName: "week", SortOrder: 2}},
		cards: []models.KpiCardConfig{
			{ID: 10, DimensionID: 1, Title: "a"},
			{ID: 11, DimensionID: 2, Title: "b"},
			{ID: 12, DimensionID: 2, Title: "c"},
		},
		charts: []models.ChartConfig{{ID: 20, DimensionID: 1, Title: "trend"}},
	}
	svc := newTestDashboardConfigService(repo)

	dims, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, dims, 2)
	assert.Len(t, dims[0].Cards, 1)
	assert.Len(t, dims[0].Charts, 1)
	assert.Len(t, dims[1].Cards, 2)
	assert.NotNil(t, dims[1].Charts)
	assert.Empty(t, dims[1].Charts)
}

func TestDashboardConfigDeleteDimension(t *testing.T) {
	repo := &dashboardConfigRepoStub{dims: []models.Dimension{{ID: 4, KeyName: "quarter"}}}
	svc := newTestDashboardConfigService(repo)

	_, err := svc.Apply(context.Background(), dto.MutationDeleteDimension, rawJSON(t, dto.DeleteRequest{ID: 4}))
	require.NoError(t, err)
	assert.Empty(t, repo.dims)

	_, err = svc.Apply(context.Background(), dto.MutationDeleteDimension, rawJSON(t, dto.DeleteRequest{ID: 4}))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
