package services

import (
  "context"
  "errors"
  "fmt"
  "math"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

// CourseSummary is a catalog row enriched with the caller's enrollment state.
type CourseSummary struct {
  Course       *types.Course `json:"course"`
  LessonCount  int64         `json:"lesson_count"`
  Enrolled     bool          `json:"enrolled"`
  UserProgress float64       `json:"user_progress"`
}

type CourseDetail struct {
  Course       *types.Course   `json:"course"`
  Lessons      []*types.Lesson `json:"lessons"`
  Quizzes      []*types.Quiz   `json:"quizzes"`
  Enrolled     bool            `json:"enrolled"`
  UserProgress float64         `json:"user_progress"`
}

type CourseService interface {
  List(ctx context.Context, filter repos.CourseFilter, userID uuid.UUID) ([]*CourseSummary, error)
  GetDetail(ctx context.Context, courseID, userID uuid.UUID) (*CourseDetail, error)
  Create(ctx context.Context, course *types.Course, createdBy uuid.UUID) (*types.Course, error)
  Update(ctx context.Context, courseID uuid.UUID, apply func(*types.Course)) (*types.Course, error)
  Delete(ctx context.Context, courseID uuid.UUID) error
  ListCategories(ctx context.Context) ([]string, error)
  AddReview(ctx context.Context, studentID, courseID uuid.UUID, rating int, reviewText string) (*types.CourseReview, error)
  GetReviews(ctx context.Context, courseID uuid.UUID) ([]*types.CourseReview, error)
}

type courseService struct {
  db             *gorm.DB
  log            *logger.Logger
  courseRepo     repos.CourseRepo
  lessonRepo     repos.LessonRepo
  quizRepo       repos.QuizRepo
  enrollmentRepo repos.EnrollmentRepo
  reviewRepo     repos.CourseReviewRepo
}

func NewCourseService(
  db *gorm.DB,
  log *logger.Logger,
  courseRepo repos.CourseRepo,
  lessonRepo repos.LessonRepo,
  quizRepo repos.QuizRepo,
  enrollmentRepo repos.EnrollmentRepo,
  reviewRepo repos.CourseReviewRepo,
) CourseService {
  serviceLog := log.With("service", "CourseService")
  return &courseService{
    db:             db,
    log:            serviceLog,
    courseRepo:     courseRepo,
    lessonRepo:     lessonRepo,
    quizRepo:       quizRepo,
    enrollmentRepo: enrollmentRepo,
    reviewRepo:     reviewRepo,
  }
}

func (cs *courseService) List(ctx context.Context, filter repos.CourseFilter, userID uuid.UUID) ([]*CourseSummary, error) {
  courses, err := cs.courseRepo.List(ctx, nil, filter)
  if err != nil {
    return nil, fmt.Errorf("failed to list courses: %w", err)
  }

  courseIDs := make([]uuid.UUID, 0, len(courses))
  for _, c := range courses {
    courseIDs = append(courseIDs, c.ID)
  }

  lessonCounts, lcErr := cs.lessonRepo.CountByCourseIDs(ctx, nil, courseIDs)
  if lcErr != nil {
    return nil, fmt.Errorf("failed to count lessons: %w", lcErr)
  }

  // Anonymous callers get no enrollment overlay.
  enrollmentsByCourse := make(map[uuid.UUID]*types.Enrollment)
  if userID != uuid.Nil {
    enrollments, eErr := cs.enrollmentRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{userID})
    if eErr != nil {
      return nil, fmt.Errorf("failed to load enrollments: %w", eErr)
    }
    for _, e := range enrollments {
      enrollmentsByCourse[e.CourseID] = e
    }
  }

  results := make([]*CourseSummary, 0, len(courses))
  for _, c := range courses {
    summary := &CourseSummary{
      Course:      c,
      LessonCount: lessonCounts[c.ID],
    }
    if e, ok := enrollmentsByCourse[c.ID]; ok {
      summary.Enrolled = true
      summary.UserProgress = e.ProgressPercentage
    }
    results = append(results, summary)
  }
  return results, nil
}

func (cs *courseService) GetDetail(ctx context.Context, courseID, userID uuid.UUID) (*CourseDetail, error) {
  courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, fmt.Errorf("failed to load course: %w", err)
  }
  if len(courses) == 0 || !courses[0].IsActive {
    return nil, apperr.NotFound("course_not_found", "course not found")
  }
  course := courses[0]

  lessons, lErr := cs.lessonRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
  if lErr != nil {
    return nil, fmt.Errorf("failed to load lessons: %w", lErr)
  }
  quizzes, qErr := cs.quizRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
  if qErr != nil {
    return nil, fmt.Errorf("failed to load quizzes: %w", qErr)
  }

  detail := &CourseDetail{Course: course, Lessons: lessons, Quizzes: quizzes}
  if userID != uuid.Nil {
    enrollment, eErr := cs.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, courseID)
    if eErr != nil && !errors.Is(eErr, gorm.ErrRecordNotFound) {
      return nil, fmt.Errorf("failed to load enrollment: %w", eErr)
    }
    if enrollment != nil {
      detail.Enrolled = true
      detail.UserProgress = enrollment.ProgressPercentage
    }
  }
  if !detail.Enrolled {
    // Non-enrolled callers only see content of preview lessons.
    for _, lesson := range detail.Lessons {
      if !lesson.IsPreview {
        lesson.Content = ""
        lesson.VideoURL = ""
      }
    }
  }
  return detail, nil
}

func (cs *courseService) Create(ctx context.Context, course *types.Course, createdBy uuid.UUID) (*types.Course, error) {
  if course.Title == "" {
    return nil, apperr.Validation("invalid_course", "title is required", map[string]string{"title": "required"})
  }
  switch course.DifficultyLevel {
  case types.DifficultyBeginner, types.DifficultyIntermediate, types.DifficultyAdvanced:
  default:
    return nil, apperr.Validation("invalid_course", "invalid difficulty level", map[string]string{"difficulty_level": "must be beginner, intermediate or advanced"})
  }

  course.ID = uuid.New()
  course.IsActive = true
  if createdBy != uuid.Nil {
    course.CreatedBy = &createdBy
  }
  if course.Price == 0 {
    course.IsFree = true
  }
  if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
    return nil, fmt.Errorf("failed to create course: %w", err)
  }
  return course, nil
}

func (cs *courseService) Update(ctx context.Context, courseID uuid.UUID, apply func(*types.Course)) (*types.Course, error) {
  courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, fmt.Errorf("failed to load course: %w", err)
  }
  if len(courses) == 0 {
    return nil, apperr.NotFound("course_not_found", "course not found")
  }
  course := courses[0]
  apply(course)
  if err := cs.courseRepo.Update(ctx, nil, course); err != nil {
    return nil, fmt.Errorf("failed to update course: %w", err)
  }
  return course, nil
}

func (cs *courseService) Delete(ctx context.Context, courseID uuid.UUID) error {
  courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return fmt.Errorf("failed to load course: %w", err)
  }
  if len(courses) == 0 {
    return apperr.NotFound("course_not_found", "course not found")
  }
  if err := cs.courseRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{courseID}); err != nil {
    return fmt.Errorf("failed to delete course: %w", err)
  }
  return nil
}

func (cs *courseService) ListCategories(ctx context.Context) ([]string, error) {
  categories, err := cs.courseRepo.ListCategories(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("failed to list categories: %w", err)
  }
  return categories, nil
}

func (cs *courseService) AddReview(ctx context.Context, studentID, courseID uuid.UUID, rating int, reviewText string) (*types.CourseReview, error) {
  if rating < 1 || rating > 5 {
    return nil, apperr.Validation("invalid_review", "rating must be between 1 and 5", map[string]string{"rating": "must be 1-5"})
  }

  courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, fmt.Errorf("failed to load course: %w", err)
  }
  if len(courses) == 0 {
    return nil, apperr.NotFound("course_not_found", "course not found")
  }

  review := &types.CourseReview{
    ID:         uuid.New(),
    CourseID:   courseID,
    StudentID:  studentID,
    Rating:     rating,
    ReviewText: reviewText,
  }
  err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, cErr := cs.reviewRepo.Create(ctx, tx, []*types.CourseReview{review}); cErr != nil {
      if errors.Is(cErr, gorm.ErrDuplicatedKey) {
        return apperr.Conflict("already_reviewed", "student already reviewed this course")
      }
      return fmt.Errorf("failed to create review: %w", cErr)
    }
    avg, count, aErr := cs.reviewRepo.AverageByCourse(ctx, tx, courseID)
    if aErr != nil {
      return fmt.Errorf("failed to recompute rating: %w", aErr)
    }
    rounded := math.Round(avg*100) / 100
    if sErr := cs.courseRepo.SetRating(ctx, tx, courseID, rounded, int(count)); sErr != nil {
      return fmt.Errorf("failed to store rating: %w", sErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return review, nil
}

func (cs *courseService) GetReviews(ctx context.Context, courseID uuid.UUID) ([]*types.CourseReview, error) {
  reviews, err := cs.reviewRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, fmt.Errorf("failed to load reviews: %w", err)
  }
  return reviews, nil
}
