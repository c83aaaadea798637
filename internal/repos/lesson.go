package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type LessonRepo interface {
  Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Lesson, error)
  GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Lesson, error)
  CountByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error)
  OrderExists(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) (bool, error)
  Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error
  DeleteByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error
}

type lessonRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
  repoLog := baseLog.With("repo", "LessonRepo")
  return &lessonRepo{db: db, log: repoLog}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(lessons) == 0 {
    return []*types.Lesson{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&lessons).Error; err != nil {
    return nil, err
  }
  return lessons, nil
}

func (r *lessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Lesson, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Lesson
  if len(lessonIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", lessonIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// GetByCourseIDs returns lessons ordered by course then lesson_order so a
// single course's list comes back in presentation order.
func (r *lessonRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Lesson, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Lesson
  if len(courseIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("course_id IN ?", courseIDs).
    Order("course_id ASC, lesson_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *lessonRepo) CountByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
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
    Model(&types.Lesson{}).
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

func (r *lessonRepo) OrderExists(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Lesson{}).
    Where("course_id = ? AND lesson_order = ?", courseID, order).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *lessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(lessonIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", lessonIDs).
    Delete(&types.Lesson{}).Error
}
