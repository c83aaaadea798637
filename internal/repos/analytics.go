package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type StudentAnalyticsRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.StudentAnalytics) ([]*types.StudentAnalytics, error)
  GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.StudentAnalytics, error)
  GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.StudentAnalytics, error)
  Update(ctx context.Context, tx *gorm.DB, record *types.StudentAnalytics) error
  PlatformTotals(ctx context.Context, tx *gorm.DB) (*PlatformTotals, error)
}

// PlatformTotals aggregates activity across all students for the admin view.
type PlatformTotals struct {
  TotalWatchTimeMinutes int64
  TotalLessonsCompleted int64
  TotalQuizzesAttempted int64
  TotalQuizzesPassed    int64
  AvgQuizScore          float64
}

type studentAnalyticsRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStudentAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) StudentAnalyticsRepo {
  repoLog := baseLog.With("repo", "StudentAnalyticsRepo")
  return &studentAnalyticsRepo{db: db, log: repoLog}
}

func (r *studentAnalyticsRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.StudentAnalytics) ([]*types.StudentAnalytics, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(records) == 0 {
    return []*types.StudentAnalytics{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (r *studentAnalyticsRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.StudentAnalytics, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.StudentAnalytics
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND course_id = ?", studentID, courseID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *studentAnalyticsRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.StudentAnalytics, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.StudentAnalytics
  if len(studentIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("student_id IN ?", studentIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *studentAnalyticsRepo) Update(ctx context.Context, tx *gorm.DB, record *types.StudentAnalytics) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(record).Error
}

func (r *studentAnalyticsRepo) PlatformTotals(ctx context.Context, tx *gorm.DB) (*PlatformTotals, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var totals PlatformTotals
  if err := transaction.WithContext(ctx).
    Model(&types.StudentAnalytics{}).
    Select(`COALESCE(SUM(watch_time_minutes), 0) AS total_watch_time_minutes,
            COALESCE(SUM(lessons_completed), 0) AS total_lessons_completed,
            COALESCE(SUM(quizzes_attempted), 0) AS total_quizzes_attempted,
            COALESCE(SUM(quizzes_passed), 0) AS total_quizzes_passed,
            COALESCE(AVG(avg_quiz_score), 0) AS avg_quiz_score`).
    Scan(&totals).Error; err != nil {
    return nil, err
  }
  return &totals, nil
}
