package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard-api/internal/dto"
	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
	"github.com/noah-isme/attendance-dashboard-api/pkg/response"
)

type dashboardConfigService interface {
	List(ctx context.Context) ([]models.Dimension, error)
	Apply(ctx context.Context, mutationType string, data json.RawMessage) (int64, error)
}

// AdminConfigHandler exposes the dashboard configuration to the admin console.
type AdminConfigHandler struct {
	service dashboardConfigService
}

// NewAdminConfigHandler builds the admin configuration handler.
func NewAdminConfigHandler(svc dashboardConfigService) *AdminConfigHandler {
	return &AdminConfigHandler{service: svc}
}

// List godoc
// @Summary List dashboard configuration
// @Description Dimensions ordered by sort_order, each with its cards and charts.
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Dimension}
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/config [get]
func (h *AdminConfigHandler) List(c *gin.Context) {
	dims, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dims)
}

// Mutate godoc
// @Summary Change dashboard configuration
// @Description type is one of dimension, card, chart, update_dimension, update_card, update_chart, delete_dimension, delete_card or delete_chart. Deleting a dimension removes its cards and charts.
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.ConfigMutationRequest true "Mutation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/config [post]
func (h *AdminConfigHandler) Mutate(c *gin.Context) {
	var req dto.ConfigMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mutation payload"))
		return
	}

	id, err := h.service.Apply(c.Request.Context(), req.Type, req.Data)
	if err != nil {
		response.Error(c, err)
		return
	}
	if id == 0 {
		response.Ack(c, nil)
		return
	}
	response.Ack(c, id)
}
