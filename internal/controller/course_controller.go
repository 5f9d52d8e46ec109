package controller

import (
	"strconv"

	"roboquest_backend/internal/service"
	"roboquest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService  *service.CatalogService
	ProgressService *service.ProgressService
}

func NewCourseController(catalogService *service.CatalogService, progressService *service.ProgressService) *CourseController {
	return &CourseController{
		CatalogService:  catalogService,
		ProgressService: progressService,
	}
}

// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"courses": courses})
}

// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/course/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CatalogService.GetCourse(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"course": course})
}

// CompleteModule godoc
// @Summary 完成课程模块
// @Description 记录模块完成情况，全部完成时标记课程完成。不发放经验值
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path string true "课程ID"
// @Param   moduleId path int true "模块ID"
// @Success 200 {object} util.Response{data=service.CompletionResult} "成功"
// @Failure 400 {object} util.Response "模块ID无效"
// @Failure 404 {object} util.Response "课程或模块不存在"
// @Router /api/course/{courseId}/module/{moduleId}/complete [post]
func (c *CourseController) CompleteModule(ctx *gin.Context) {
	moduleID, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil || moduleID < 1 {
		util.BadRequest(ctx, "Invalid module ID")
		return
	}

	result, err := c.ProgressService.CompleteCourseModule(ctx.Request.Context(), util.GetIdentityFromContext(ctx).UserID, ctx.Param("courseId"), moduleID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	message := "Module completion recorded (no XP awarded)."
	if result.AlreadyCompleted {
		message = "Module already completed"
	}
	util.SuccessWithMessage(ctx, message, result)
}
