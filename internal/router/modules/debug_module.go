package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/tourism-booking-api/internal/interface/http"
)

// HealthModule exposes GET /health.
type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", handlers.Health)
}

// DebugModule exposes the Prometheus scrape endpoint at GET /metrics.
type DebugModule struct {
	Metrics http.Handler
}

func NewDebugModule(h http.Handler) *DebugModule { return &DebugModule{Metrics: h} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/metrics", gin.WrapH(m.Metrics))
}
