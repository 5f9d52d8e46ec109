package controller

import (
	"context"
	"net/http"
	"time"

	"roboquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// Pinger 任何可以探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Components map[string]Pinger
}

func NewHealthController(components map[string]Pinger) *HealthController {
	return &HealthController{Components: components}
}

// @Summary 健康检查
// @Description 检查服务及依赖状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for name, p := range c.Components {
		if err := p.Ping(pingCtx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	data := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": status,
	}
	if !healthy {
		data["status"] = "degraded"
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "dependency unavailable",
			Data:    data,
		})
		return
	}
	util.Success(ctx, data)
}
