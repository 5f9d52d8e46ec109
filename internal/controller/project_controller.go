package controller

import (
	"roboquest_backend/internal/service"
	"roboquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProjectController struct {
	CatalogService  *service.CatalogService
	ProgressService *service.ProgressService
}

func NewProjectController(catalogService *service.CatalogService, progressService *service.ProgressService) *ProjectController {
	return &ProjectController{
		CatalogService:  catalogService,
		ProgressService: progressService,
	}
}

// @Summary 练习项目列表
// @Tags 练习项目
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	projects, err := c.CatalogService.ListProjects(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"projects": projects})
}

// @Summary 练习项目详情
// @Tags 练习项目
// @Produce json
// @Param id path string true "项目ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/project/{id} [get]
func (c *ProjectController) GetProject(ctx *gin.Context) {
	project, err := c.CatalogService.GetProject(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"project": project})
}

// CompleteProjectRequest 用户提交的代码不会保存
type CompleteProjectRequest struct {
	TimeSpent *int   `json:"timeSpent"`
	UserCode  string `json:"userCode"`
}

// CompleteProject godoc
// @Summary 完成练习项目
// @Description 记录项目完成，不发放经验值
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "项目ID"
// @Param   body body CompleteProjectRequest false "耗时与代码"
// @Success 200 {object} util.Response{data=service.CompletionResult} "成功"
// @Failure 404 {object} util.Response "项目不存在"
// @Router /api/project/{id}/complete [post]
func (c *ProjectController) CompleteProject(ctx *gin.Context) {
	var req CompleteProjectRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.ProgressService.CompleteProject(ctx.Request.Context(), util.GetIdentityFromContext(ctx).UserID, ctx.Param("id"), req.TimeSpent)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	message := "Project completion recorded (no XP awarded)."
	if result.AlreadyCompleted {
		message = "Project already completed"
	}
	util.SuccessWithMessage(ctx, message, result)
}
