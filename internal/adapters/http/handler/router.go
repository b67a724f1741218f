package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ogurasousui/hr-attendance/internal/adapters/http/middleware"
	"github.com/ogurasousui/hr-attendance/internal/platform/logging"
)

// RouterConfig はルーター構築に必要な依存をまとめます。
type RouterConfig struct {
	TimeEntries    *TimeEntryHandler
	Employees      *EmployeeHandler
	Health         *HealthHandler
	Auth           *middleware.Auth
	Logger         *zap.Logger
	CORSOrigins    []string
	Middlewares    []gin.HandlerFunc
	MetricsHandler http.Handler
}

// NewRouter は REST API のルーティングを構築します。
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	logger = logging.OrNop(logger)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger, "/healthz", "/metrics"))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(cfg.Middlewares...)

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Healthz)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := r.Group("/v1", cfg.Auth.Authenticate())
	admin := cfg.Auth.RequireAdmin()

	if h := cfg.TimeEntries; h != nil {
		entries := v1.Group("/time-entries")
		entries.POST("", admin, h.Create)
		entries.GET("", h.List)
		entries.GET("/stats/overview", admin, h.Statistics)
		entries.GET("/export/template", h.Template)
		entries.GET("/date-range", h.ListByDateRange)
		entries.GET("/employee/:employeeId", h.ListByEmployee)
		entries.POST("/import/excel", admin, h.Import)
		entries.DELETE("/bulk", admin, h.BulkDelete)
		entries.GET("/:id", h.Get)
		entries.PUT("/:id", admin, h.Update)
		entries.DELETE("/:id", admin, h.Delete)
	}

	if h := cfg.Employees; h != nil {
		employees := v1.Group("/employees")
		employees.GET("", h.List)
		employees.GET("/:id", h.Get)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
