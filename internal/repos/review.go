package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type CourseReviewRepo interface {
  Create(ctx context.Context, tx *gorm.DB, reviews []*types.CourseReview) ([]*types.CourseReview, error)
  GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseReview, error)
  GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.CourseReview, error)
  Update(ctx context.Context, tx *gorm.DB, review *types.CourseReview) error
  AverageByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (avg float64, count int64, err error)
}

type courseReviewRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseReviewRepo(db *gorm.DB, baseLog *logger.Logger) CourseReviewRepo {
  repoLog := baseLog.With("repo", "CourseReviewRepo")
  return &courseReviewRepo{db: db, log: repoLog}
}

func (r *courseReviewRepo) Create(ctx context.Context, tx *gorm.DB, reviews []*types.CourseReview) ([]*types.CourseReview, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(reviews) == 0 {
    return []*types.CourseReview{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&reviews).Error; err != nil {
    return nil, err
  }
  return reviews, nil
}

func (r *courseReviewRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.CourseReview, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CourseReview
  if len(courseIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("course_id IN ?", courseIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *courseReviewRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.CourseReview, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.CourseReview
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND course_id = ?", studentID, courseID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *courseReviewRepo) Update(ctx context.Context, tx *gorm.DB, review *types.CourseReview) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(review).Error
}

func (r *courseReviewRepo) AverageByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (float64, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  type row struct {
    Avg   float64
    Total int64
  }
  var rw row
  if err := transaction.WithContext(ctx).
    Model(&types.CourseReview{}).
    Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
    Where("course_id = ?", courseID).
    Scan(&rw).Error; err != nil {
    return 0, 0, err
  }
  return rw.Avg, rw.Total, nil
}
