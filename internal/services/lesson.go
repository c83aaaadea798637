package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type LessonService interface {
  GetByCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error)
  Create(ctx context.Context, lesson *types.Lesson) (*types.Lesson, error)
  Update(ctx context.Context, courseID, lessonID uuid.UUID, apply func(*types.Lesson)) (*types.Lesson, error)
  Delete(ctx context.Context, courseID, lessonID uuid.UUID) error
}

type lessonService struct {
  db         *gorm.DB
  log        *logger.Logger
  courseRepo repos.CourseRepo
  lessonRepo repos.LessonRepo
}

func NewLessonService(db *gorm.DB, log *logger.Logger, courseRepo repos.CourseRepo, lessonRepo repos.LessonRepo) LessonService {
  serviceLog := log.With("service", "LessonService")
  return &lessonService{db: db, log: serviceLog, courseRepo: courseRepo, lessonRepo: lessonRepo}
}

func (ls *lessonService) GetByCourse(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
  courses, err := ls.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, fmt.Errorf("failed to load course: %w", err)
  }
  if len(courses) == 0 {
    return nil, apperr.NotFound("course_not_found", "course not found")
  }
  lessons, lErr := ls.lessonRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
  if lErr != nil {
    return nil, fmt.Errorf("failed to load lessons: %w", lErr)
  }
  return lessons, nil
}

func (ls *lessonService) Create(ctx context.Context, lesson *types.Lesson) (*types.Lesson, error) {
  courses, err := ls.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{lesson.CourseID})
  if err != nil {
    return nil, fmt.Errorf("failed to load course: %w", err)
  }
  if len(courses) == 0 {
    return nil, apperr.NotFound("course_not_found", "course not found")
  }
  if lesson.Title == "" {
    return nil, apperr.Validation("invalid_lesson", "title is required", map[string]string{"title": "required"})
  }
  switch lesson.LessonType {
  case "":
    lesson.LessonType = types.LessonTypeVideo
  case types.LessonTypeVideo, types.LessonTypeText, types.LessonTypeQuiz:
  default:
    return nil, apperr.Validation("invalid_lesson", "invalid lesson type", map[string]string{"lesson_type": "must be video, text or quiz"})
  }

  taken, oErr := ls.lessonRepo.OrderExists(ctx, nil, lesson.CourseID, lesson.Order)
  if oErr != nil {
    return nil, fmt.Errorf("failed to check lesson order: %w", oErr)
  }
  if taken {
    return nil, apperr.Validation("duplicate_order",
      fmt.Sprintf("lesson order %d already used in this course", lesson.Order),
      map[string]string{"order": "already in use"})
  }

  lesson.ID = uuid.New()
  if _, cErr := ls.lessonRepo.Create(ctx, nil, []*types.Lesson{lesson}); cErr != nil {
    return nil, fmt.Errorf("failed to create lesson: %w", cErr)
  }
  return lesson, nil
}

func (ls *lessonService) Update(ctx context.Context, courseID, lessonID uuid.UUID, apply func(*types.Lesson)) (*types.Lesson, error) {
  lessons, err := ls.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
  if err != nil {
    return nil, fmt.Errorf("failed to load lesson: %w", err)
  }
  if len(lessons) == 0 || lessons[0].CourseID != courseID {
    return nil, apperr.NotFound("lesson_not_found", "lesson not part of course")
  }
  lesson := lessons[0]
  oldOrder := lesson.Order
  apply(lesson)
  if lesson.Order != oldOrder {
    taken, oErr := ls.lessonRepo.OrderExists(ctx, nil, courseID, lesson.Order)
    if oErr != nil {
      return nil, fmt.Errorf("failed to check lesson order: %w", oErr)
    }
    if taken {
      return nil, apperr.Validation("duplicate_order",
        fmt.Sprintf("lesson order %d already used in this course", lesson.Order),
        map[string]string{"order": "already in use"})
    }
  }
  if uErr := ls.lessonRepo.Update(ctx, nil, lesson); uErr != nil {
    return nil, fmt.Errorf("failed to update lesson: %w", uErr)
  }
  return lesson, nil
}

func (ls *lessonService) Delete(ctx context.Context, courseID, lessonID uuid.UUID) error {
  lessons, err := ls.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
  if err != nil {
    return fmt.Errorf("failed to load lesson: %w", err)
  }
  if len(lessons) == 0 || lessons[0].CourseID != courseID {
    return apperr.NotFound("lesson_not_found", "lesson not part of course")
  }
  if dErr := ls.lessonRepo.DeleteByIDs(ctx, nil, []uuid.UUID{lessonID}); dErr != nil {
    return fmt.Errorf("failed to delete lesson: %w", dErr)
  }
  return nil
}
