package repos

import (
  "context"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

// CourseFilter narrows List. Zero values mean "no filter".
type CourseFilter struct {
  Search       string
  Category     string
  Difficulty   string
  FeaturedOnly bool
  SortBy       string // "newest" | "popular" | "rating"
  Limit        int
  Offset       int
}

type CourseRepo interface {
  Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Course, error)
  List(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error)
  ListCategories(ctx context.Context, tx *gorm.DB) ([]string, error)
  Update(ctx context.Context, tx *gorm.DB, course *types.Course) error
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
  AddEnrollmentCount(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, delta int) error
  SetRating(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, rating float64, ratingCount int) error
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type courseRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
  repoLog := baseLog.With("repo", "CourseRepo")
  return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(courses) == 0 {
    return []*types.Course{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
    return nil, err
  }
  return courses, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Course
  if len(courseIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", courseIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB, filter CourseFilter) ([]*types.Course, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  q := transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("is_active = ?", true)

  if s := strings.TrimSpace(filter.Search); s != "" {
    pattern := "%" + strings.ToLower(s) + "%"
    q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(instructor) LIKE ?", pattern, pattern, pattern)
  }
  if filter.Category != "" {
    q = q.Where("category = ?", filter.Category)
  }
  if filter.Difficulty != "" {
    q = q.Where("difficulty_level = ?", filter.Difficulty)
  }
  if filter.FeaturedOnly {
    q = q.Where("is_featured = ?", true)
  }

  switch filter.SortBy {
  case "popular":
    q = q.Order("enrollment_count DESC")
  case "rating":
    q = q.Order("rating DESC")
  default:
    q = q.Order("created_at DESC")
  }

  if filter.Limit > 0 {
    q = q.Limit(filter.Limit)
  }
  if filter.Offset > 0 {
    q = q.Offset(filter.Offset)
  }

  var results []*types.Course
  if err := q.Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *courseRepo) ListCategories(ctx context.Context, tx *gorm.DB) ([]string, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []string
  if err := transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("is_active = ? AND category <> ''", true).
    Distinct("category").
    Order("category ASC").
    Pluck("category", &results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, course *types.Course) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(course).Error
}

func (r *courseRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(courseIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", courseIDs).
    Delete(&types.Course{}).Error
}

// AddEnrollmentCount adjusts the cached counter atomically in SQL so
// concurrent enroll/unenroll calls do not lose updates.
func (r *courseRepo) AddEnrollmentCount(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, delta int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("id = ?", courseID).
    UpdateColumn("enrollment_count", gorm.Expr("GREATEST(enrollment_count + ?, 0)", delta)).Error
}

func (r *courseRepo) SetRating(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, rating float64, ratingCount int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("id = ?", courseID).
    UpdateColumns(map[string]interface{}{"rating": rating, "rating_count": ratingCount}).Error
}

func (r *courseRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Course{}).
    Where("is_active = ?", true).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
