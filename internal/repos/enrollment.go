package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type EnrollmentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.Enrollment, error)
  GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error)
  GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.Enrollment, error)
  GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Enrollment, error)
  Update(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) error
  CountByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type enrollmentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
  repoLog := baseLog.With("repo", "EnrollmentRepo")
  return &enrollmentRepo{db: db, log: repoLog}
}

// Create relies on the unique (student_id, course_id) index: a duplicate
// enrollment surfaces as gorm.ErrDuplicatedKey for the service to map.
func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(enrollments) == 0 {
    return []*types.Enrollment{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&enrollments).Error; err != nil {
    return nil, err
  }
  return enrollments, nil
}

func (r *enrollmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Enrollment
  if len(enrollmentIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", enrollmentIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *enrollmentRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.Enrollment
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND course_id = ?", studentID, courseID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *enrollmentRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Enrollment
  if len(studentIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("student_id IN ?", studentIDs).
    Order("enrolled_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *enrollmentRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Enrollment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Enrollment
  if len(courseIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("course_id IN ?", courseIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *enrollmentRepo) Update(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(enrollment).Error
}

func (r *enrollmentRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(enrollmentIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Unscoped().
    Where("id IN ?", enrollmentIDs).
    Delete(&types.Enrollment{}).Error
}

func (r *enrollmentRepo) CountByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  counts := make(map[uuid.UUID]int64, len(courseIDs))
  if len(courseIDs) == 0 {
    return counts, nil
  }

  type row struct {
    CourseID uuid.UUID
    Total    int64
  }
  var rows []row
  if err := transaction.WithContext(ctx).
    Model(&types.Enrollment{}).
    Select("course_id, COUNT(*) AS total").
    Where("course_id IN ?", courseIDs).
    Group("course_id").
    Scan(&rows).Error; err != nil {
    return nil, err
  }
  for _, rw := range rows {
    counts[rw.CourseID] = rw.Total
  }
  return counts, nil
}

func (r *enrollmentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Enrollment{}).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
