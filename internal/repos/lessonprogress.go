package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type LessonProgressRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.LessonProgress) ([]*types.LessonProgress, error)
  GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.LessonProgress, error)
  GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) ([]*types.LessonProgress, error)
  Update(ctx context.Context, tx *gorm.DB, record *types.LessonProgress) error
  CountCompleted(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (int64, error)
  DeleteByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) error
}

type lessonProgressRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
  repoLog := baseLog.With("repo", "LessonProgressRepo")
  return &lessonProgressRepo{db: db, log: repoLog}
}

func (r *lessonProgressRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.LessonProgress) ([]*types.LessonProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(records) == 0 {
    return []*types.LessonProgress{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (r *lessonProgressRepo) GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.LessonProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.LessonProgress
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *lessonProgressRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) ([]*types.LessonProgress, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.LessonProgress
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND course_id = ?", studentID, courseID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *lessonProgressRepo) Update(ctx context.Context, tx *gorm.DB, record *types.LessonProgress) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(record).Error
}

func (r *lessonProgressRepo) CountCompleted(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.LessonProgress{}).
    Where("student_id = ? AND course_id = ? AND is_completed = ?", studentID, courseID, true).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *lessonProgressRepo) DeleteByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Unscoped().
    Where("student_id = ? AND course_id = ?", studentID, courseID).
    Delete(&types.LessonProgress{}).Error
}
