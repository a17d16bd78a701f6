package api

import (
	"errors"
	"fmt"
	"net/http"
	"stockscreener/internal/app"
	"stockscreener/internal/domain"
	"stockscreener/internal/logger"
	"stockscreener/internal/repository"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApiHandler struct {
	ScreenerApp      app.ScreenerApp
	ExportRepository repository.ExportRepository

	DefaultParams     domain.IndicatorParams
	DefaultThresholds domain.Thresholds
	// RunTimeout bounds a single screening run. Zero means no bound.
	RunTimeout time.Duration
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to the stock screener"})
	})
	router.GET("/fields", m.fields)
	router.POST("/screen", m.screen)
	router.POST("/screen/csv", m.screenCsv)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	router := m.InitializeRouterEngine()
	return router.Run(fmt.Sprintf(":%d", port))
}

// errorStatus maps run failures to HTTP codes. An unusable market data
// source is an upstream failure.
func errorStatus(err error) int {
	var unavailable domain.DataUnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, errorStatus(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	log := logger.FromContext(c.Request.Context())
	log.Errorw("request failed", "status", code, "error", err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := uuid.New().String()
	log := logger.FromContext(c.Request.Context()).With("requestId", requestID)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
	c.Header("X-Request-Id", requestID)

	start := time.Now().UTC()
	c.Next()

	log.Infow(
		"request",
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
		"ip", c.ClientIP(),
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
