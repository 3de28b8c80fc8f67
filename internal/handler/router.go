package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-dashboard-api/internal/middleware"
)

// Routes bundles the handlers mounted under the API prefix.
type Routes struct {
	Attendance  *AttendanceHandler
	AdminConfig *AdminConfigHandler
	Auth        *AuthHandler
	Metrics     *MetricsHandler

	Sessions         middleware.SessionValidator
	CookieName       string
	PublicConfigRead bool
	AuditLogger      *zap.Logger
}

// Register mounts health endpoints at the root and the API below prefix.
func (rt Routes) Register(r *gin.Engine, prefix string) {
	r.GET("/health", rt.Metrics.Health)
	r.GET("/ready", rt.Metrics.Ready)

	prefix = "/" + strings.Trim(prefix, "/")
	api := r.Group(prefix)

	api.GET("/attendance", middleware.WithResponseMeta(), rt.Attendance.Dashboard)
	api.GET("/attendance/export", rt.Attendance.Export)

	admin := api.Group("/admin")
	admin.POST("/login", middleware.Audit(rt.AuditLogger, "session.login"), rt.Auth.Login)
	admin.POST("/logout", middleware.Audit(rt.AuditLogger, "session.logout"), rt.Auth.Logout)
	admin.GET("/session", rt.Auth.Session)
	admin.GET("/config", middleware.RequireSessionUnless(rt.PublicConfigRead, rt.Sessions, rt.CookieName), rt.AdminConfig.List)
	admin.POST("/config",
		middleware.Audit(rt.AuditLogger, "config.mutate"),
		middleware.RequireSession(rt.Sessions, rt.CookieName),
		rt.AdminConfig.Mutate,
	)
}
