package controller

import (
	"roboquest_backend/internal/model"
	"roboquest_backend/internal/service"
	"roboquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService  *service.ContentService
	ProgressService *service.ProgressService
}

func NewContentController(contentService *service.ContentService, progressService *service.ProgressService) *ContentController {
	return &ContentController{
		ContentService:  contentService,
		ProgressService: progressService,
	}
}

// UploadContent godoc
// @Summary 上传内容（管理员）
// @Description isOurContent 为 true 时创建"我们的项目"，否则创建教程
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.UploadContentInput true "内容信息"
// @Success 201 {object} util.Response{data=model.ContentItem} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未授权"
// @Failure 403 {object} util.Response "需要管理员权限"
// @Router /api/content/upload [post]
func (c *ContentController) UploadContent(ctx *gin.Context) {
	var req service.UploadContentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.ContentService.Upload(ctx.Request.Context(), util.GetIdentityFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"content": item})
}

// UpdateContent godoc
// @Summary 修改内容（管理员）
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "内容ID"
// @Param   body body model.ContentPatch true "要修改的字段"
// @Success 200 {object} util.Response{data=model.ContentItem} "成功"
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/content/{id} [put]
func (c *ContentController) UpdateContent(ctx *gin.Context) {
	var req model.ContentPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.ContentService.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "Content updated successfully", gin.H{"content": item})
}

// DeleteContent godoc
// @Summary 删除内容（管理员）
// @Description 教程和"我们的项目"都可以删除
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "内容ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/content/{id} [delete]
func (c *ContentController) DeleteContent(ctx *gin.Context) {
	if err := c.ContentService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Content deleted successfully", nil)
}

// UploadThumbnail godoc
// @Summary 上传缩略图（管理员）
// @Tags 内容管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "内容ID"
// @Param   file formData file true "图片文件"
// @Success 200 {object} util.Response{data=model.ContentItem} "成功"
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /api/content/{id}/thumbnail [post]
func (c *ContentController) UploadThumbnail(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	item, err := c.ContentService.UploadThumbnail(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"content": item})
}

// ListTutorials godoc
// @Summary 教程列表
// @Tags 内容
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/content [get]
func (c *ContentController) ListTutorials(ctx *gin.Context) {
	items, err := c.ContentService.ListTutorials(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"content": items})
}

// ListOurContent godoc
// @Summary "我们的项目"列表
// @Tags 内容
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/our-content [get]
func (c *ContentController) ListOurContent(ctx *gin.Context) {
	items, err := c.ContentService.ListShowcase(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"content": items})
}

// RecordView godoc
// @Summary 记录一次观看
// @Tags 内容
// @Produce  json
// @Param   id path string true "内容ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/content/{id}/view [post]
func (c *ContentController) RecordView(ctx *gin.Context) {
	views, err := c.ContentService.RecordView(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "View recorded", gin.H{"views": views})
}

// CompleteTutorial godoc
// @Summary 完成教程
// @Description 首次完成时发放经验值；重复完成不再发放
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "教程ID"
// @Success 200 {object} util.Response{data=service.CompletionResult} "成功"
// @Failure 404 {object} util.Response "教程不存在"
// @Router /api/tutorial/{id}/complete [post]
func (c *ContentController) CompleteTutorial(ctx *gin.Context) {
	result, err := c.ProgressService.CompleteTutorial(ctx.Request.Context(), util.GetIdentityFromContext(ctx).UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	message := "Tutorial completed successfully"
	if result.AlreadyCompleted {
		message = "Tutorial already completed"
	}
	util.SuccessWithMessage(ctx, message, result)
}
