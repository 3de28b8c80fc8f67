package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/attendance-dashboard-api/internal/models"
)

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.GET("/meta", WithResponseMeta(), func(c *gin.Context) {
		SetMeta(c, "degraded", 2)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meta", nil))

	assert.Equal(t, 2, meta["degraded"])
	assert.Contains(t, meta, processingTimeMs)
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
}

func TestAuditLogsSessionUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.POST("/config",
		func(c *gin.Context) { c.Set(ContextSessionKey, &models.Session{ID: "sid", Username: "admin"}) },
		Audit(zap.New(core), "config.mutate"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	r.POST("/denied", Audit(zap.New(core), "config.mutate"), func(c *gin.Context) { c.Status(http.StatusUnauthorized) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/config", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/denied", nil))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "admin action", entries[0].Message)
		assert.Equal(t, "admin", entries[0].ContextMap()["username"])
		assert.Equal(t, "admin action rejected", entries[1].Message)
	}
}
