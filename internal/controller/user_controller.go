package controller

import (
	"roboquest_backend/internal/model"
	"roboquest_backend/internal/service"
	"roboquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	AuthService     *service.AuthService
	ProgressService *service.ProgressService
}

func NewUserController(authService *service.AuthService, progressService *service.ProgressService) *UserController {
	return &UserController{
		AuthService:     authService,
		ProgressService: progressService,
	}
}

// GetProgress godoc
// @Summary 获取学习进度
// @Description 返回当前用户、进度和设置；跨天时重置当日进度
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/user/progress [get]
func (c *UserController) GetProgress(ctx *gin.Context) {
	identity := util.GetIdentityFromContext(ctx)

	view, err := c.ProgressService.GetOrInitProgress(ctx.Request.Context(), identity.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), identity)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"user":      user,
		"progress":  view.Progress,
		"settings":  view.Settings,
		"levelInfo": view.Level,
	})
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfilePatch true "要修改的字段"
// @Success 200 {object} util.Response{data=model.UserView} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req service.ProfilePatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.UpdateProfile(ctx.Request.Context(), util.GetIdentityFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "Profile updated", user)
}

// UpdateSettings godoc
// @Summary 更新偏好设置
// @Description 合并提交的字段；dailyGoal 会同步到学习进度
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body model.SettingsPatch true "要修改的设置"
// @Success 200 {object} util.Response{data=model.UserSettings} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/user/settings [put]
func (c *UserController) UpdateSettings(ctx *gin.Context) {
	var req model.SettingsPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	settings, err := c.ProgressService.UpdateSettings(ctx.Request.Context(), util.GetIdentityFromContext(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "Settings updated", gin.H{"settings": settings})
}

// GetAchievements godoc
// @Summary 成就徽章
// @Description 根据当前进度计算徽章
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.AchievementSummary} "成功"
// @Router /api/user/achievements [get]
func (c *UserController) GetAchievements(ctx *gin.Context) {
	summary, err := c.ProgressService.Achievements(ctx.Request.Context(), util.GetIdentityFromContext(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}
