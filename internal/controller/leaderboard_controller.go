package controller

import (
	"roboquest_backend/internal/service"
	"roboquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	ProgressService *service.ProgressService
}

func NewLeaderboardController(progressService *service.ProgressService) *LeaderboardController {
	return &LeaderboardController{ProgressService: progressService}
}

// @Summary 排行榜
// @Description 按总经验值排序的前 N 名
// @Tags 排行榜
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	entries, err := c.ProgressService.Leaderboard(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"leaderboard": entries})
}
