package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

// EnrollmentStatus is the full per-course state a client needs to render
// enrollment. Not-enrolled is a value, never an error.
type EnrollmentStatus struct {
  Enrolled           bool        `json:"enrolled"`
  Status             string      `json:"status,omitempty"`
  Progress           float64     `json:"progress"`
  IsCompleted        bool        `json:"is_completed"`
  CompletedLessonIDs []uuid.UUID `json:"completed_lesson_ids"`
  CompletedQuizIDs   []uuid.UUID `json:"completed_quiz_ids"`
  EnrolledAt         *time.Time  `json:"enrolled_at,omitempty"`
}

// EventPublisher decouples the service from the hub so tests can observe
// published events.
type EventPublisher interface {
  Broadcast(msg events.Message)
}

type EnrollmentService interface {
  Enroll(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
  Unenroll(ctx context.Context, userID, courseID uuid.UUID) error
  MarkLessonComplete(ctx context.Context, userID, courseID, lessonID uuid.UUID) (*types.Enrollment, error)
  GetEnrollmentStatus(ctx context.Context, userID, courseID uuid.UUID) (*EnrollmentStatus, error)
  RecordWatchTime(ctx context.Context, userID, courseID, lessonID uuid.UUID, seconds, positionSeconds int) error
  GetStudentEnrollments(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error)
}

type enrollmentService struct {
  db             *gorm.DB
  log            *logger.Logger
  userRepo       repos.UserRepo
  courseRepo     repos.CourseRepo
  lessonRepo     repos.LessonRepo
  enrollmentRepo repos.EnrollmentRepo
  progressRepo   repos.LessonProgressRepo
  attemptRepo    repos.QuizAttemptRepo
  publisher      EventPublisher
}

func NewEnrollmentService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  courseRepo repos.CourseRepo,
  lessonRepo repos.LessonRepo,
  enrollmentRepo repos.EnrollmentRepo,
  progressRepo repos.LessonProgressRepo,
  attemptRepo repos.QuizAttemptRepo,
  publisher EventPublisher,
) EnrollmentService {
  serviceLog := log.With("service", "EnrollmentService")
  return &enrollmentService{
    db:             db,
    log:            serviceLog,
    userRepo:       userRepo,
    courseRepo:     courseRepo,
    lessonRepo:     lessonRepo,
    enrollmentRepo: enrollmentRepo,
    progressRepo:   progressRepo,
    attemptRepo:    attemptRepo,
    publisher:      publisher,
  }
}

// Enroll creates the enrollment atomically. The unique (student_id,
// course_id) index turns a concurrent duplicate insert into
// gorm.ErrDuplicatedKey, which maps to the same AlreadyEnrolled conflict
// as the fast-path check.
func (es *enrollmentService) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
  users, uErr := es.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if uErr != nil {
    return nil, fmt.Errorf("failed to load user: %w", uErr)
  }
  if len(users) == 0 {
    return nil, apperr.NotFound("user_not_found", "user not found")
  }
  courses, cErr := es.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if cErr != nil {
    return nil, fmt.Errorf("failed to load course: %w", cErr)
  }
  if len(courses) == 0 || !courses[0].IsActive {
    return nil, apperr.NotFound("course_not_found", "course not found")
  }

  existing, exErr := es.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, courseID)
  if exErr != nil && !errors.Is(exErr, gorm.ErrRecordNotFound) {
    return nil, fmt.Errorf("failed to check enrollment: %w", exErr)
  }
  if existing != nil {
    return nil, apperr.Conflict("already_enrolled", "student already enrolled in course")
  }

  enrollment := &types.Enrollment{
    ID:                 uuid.New(),
    StudentID:          userID,
    CourseID:           courseID,
    Status:             types.EnrollmentStatusActive,
    ProgressPercentage: 0,
    EnrolledAt:         time.Now(),
  }
  err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, crErr := es.enrollmentRepo.Create(ctx, tx, []*types.Enrollment{enrollment}); crErr != nil {
      if errors.Is(crErr, gorm.ErrDuplicatedKey) {
        return apperr.Conflict("already_enrolled", "student already enrolled in course")
      }
      return fmt.Errorf("failed to create enrollment: %w", crErr)
    }
    if incErr := es.courseRepo.AddEnrollmentCount(ctx, tx, courseID, 1); incErr != nil {
      return fmt.Errorf("failed to increment enrollment count: %w", incErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }

  es.publish(events.Message{
    Channel: events.UserChannel(userID),
    Event:   events.EventEnrolled,
    Data:    map[string]any{"course_id": courseID, "enrollment_id": enrollment.ID},
  })
  return enrollment, nil
}

// Unenroll hard-deletes the enrollment and its lesson progress. Progress is
// discarded; re-enrolling starts fresh.
func (es *enrollmentService) Unenroll(ctx context.Context, userID, courseID uuid.UUID) error {
  enrollment, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, courseID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return apperr.NotFound("not_enrolled", "no enrollment for this course")
    }
    return fmt.Errorf("failed to load enrollment: %w", err)
  }

  txErr := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if dErr := es.enrollmentRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{enrollment.ID}); dErr != nil {
      return fmt.Errorf("failed to delete enrollment: %w", dErr)
    }
    if pErr := es.progressRepo.DeleteByStudentAndCourse(ctx, tx, userID, courseID); pErr != nil {
      return fmt.Errorf("failed to delete lesson progress: %w", pErr)
    }
    if decErr := es.courseRepo.AddEnrollmentCount(ctx, tx, courseID, -1); decErr != nil {
      return fmt.Errorf("failed to decrement enrollment count: %w", decErr)
    }
    return nil
  })
  if txErr != nil {
    return txErr
  }

  es.publish(events.Message{
    Channel: events.UserChannel(userID),
    Event:   events.EventUnenrolled,
    Data:    map[string]any{"course_id": courseID},
  })
  return nil
}

// MarkLessonComplete is idempotent: completing an already-completed lesson
// changes nothing and recomputes the same progress.
func (es *enrollmentService) MarkLessonComplete(ctx context.Context, userID, courseID, lessonID uuid.UUID) (*types.Enrollment, error) {
  enrollment, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, courseID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, apperr.NotFound("not_enrolled", "no enrollment for this course")
    }
    return nil, fmt.Errorf("failed to load enrollment: %w", err)
  }

  lessons, lErr := es.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
  if lErr != nil {
    return nil, fmt.Errorf("failed to load lesson: %w", lErr)
  }
  if len(lessons) == 0 || lessons[0].CourseID != courseID {
    return nil, apperr.NotFound("lesson_not_found", "lesson not part of course")
  }

  now := time.Now()
  txErr := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    progress, pErr := es.progressRepo.GetByStudentAndLesson(ctx, tx, userID, lessonID)
    if pErr != nil && !errors.Is(pErr, gorm.ErrRecordNotFound) {
      return fmt.Errorf("failed to load lesson progress: %w", pErr)
    }
    if progress == nil {
      progress = &types.LessonProgress{
        ID:            uuid.New(),
        StudentID:     userID,
        LessonID:      lessonID,
        CourseID:      courseID,
        FirstAccessed: now,
      }
      if _, cErr := es.progressRepo.Create(ctx, tx, []*types.LessonProgress{progress}); cErr != nil {
        return fmt.Errorf("failed to create lesson progress: %w", cErr)
      }
    }
    if !progress.IsCompleted {
      progress.IsCompleted = true
      progress.CompletionPercent = 100
      progress.CompletedAt = &now
    }
    progress.LastAccessed = now
    if upErr := es.progressRepo.Update(ctx, tx, progress); upErr != nil {
      return fmt.Errorf("failed to update lesson progress: %w", upErr)
    }
    return es.recomputeProgress(ctx, tx, enrollment, now)
  })
  if txErr != nil {
    return nil, txErr
  }

  es.publish(events.Message{
    Channel: events.UserChannel(userID),
    Event:   events.EventLessonCompleted,
    Data:    map[string]any{"course_id": courseID, "lesson_id": lessonID, "progress": enrollment.ProgressPercentage},
  })
  if enrollment.IsCompleted {
    es.publish(events.Message{
      Channel: events.UserChannel(userID),
      Event:   events.EventCourseCompleted,
      Data:    map[string]any{"course_id": courseID},
    })
  }
  return enrollment, nil
}

// recomputeProgress derives progress from completed/total at full float
// precision. An empty course stays at 0 rather than dividing by zero.
func (es *enrollmentService) recomputeProgress(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment, now time.Time) error {
  counts, tErr := es.lessonRepo.CountByCourseIDs(ctx, tx, []uuid.UUID{enrollment.CourseID})
  if tErr != nil {
    return fmt.Errorf("failed to count lessons: %w", tErr)
  }
  total := counts[enrollment.CourseID]

  completed, cErr := es.progressRepo.CountCompleted(ctx, tx, enrollment.StudentID, enrollment.CourseID)
  if cErr != nil {
    return fmt.Errorf("failed to count completed lessons: %w", cErr)
  }

  if total > 0 {
    enrollment.ProgressPercentage = float64(completed) / float64(total) * 100
  } else {
    enrollment.ProgressPercentage = 0
  }
  if total > 0 && completed >= total {
    if !enrollment.IsCompleted {
      enrollment.IsCompleted = true
      enrollment.Status = types.EnrollmentStatusCompleted
      enrollment.CompletedAt = &now
    }
  }
  enrollment.LastAccessed = &now
  if err := es.enrollmentRepo.Update(ctx, tx, enrollment); err != nil {
    return fmt.Errorf("failed to update enrollment: %w", err)
  }
  return nil
}

func (es *enrollmentService) GetEnrollmentStatus(ctx context.Context, userID, courseID uuid.UUID) (*EnrollmentStatus, error) {
  enrollment, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, courseID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return &EnrollmentStatus{
        Enrolled:           false,
        CompletedLessonIDs: []uuid.UUID{},
        CompletedQuizIDs:   []uuid.UUID{},
      }, nil
    }
    return nil, fmt.Errorf("failed to load enrollment: %w", err)
  }

  progressRecords, pErr := es.progressRepo.GetByStudentAndCourse(ctx, nil, userID, courseID)
  if pErr != nil {
    return nil, fmt.Errorf("failed to load lesson progress: %w", pErr)
  }
  completedLessons := make([]uuid.UUID, 0, len(progressRecords))
  for _, p := range progressRecords {
    if p.IsCompleted {
      completedLessons = append(completedLessons, p.LessonID)
    }
  }

  attempts, aErr := es.attemptRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{userID})
  if aErr != nil {
    return nil, fmt.Errorf("failed to load quiz attempts: %w", aErr)
  }
  seenQuiz := make(map[uuid.UUID]bool)
  completedQuizzes := make([]uuid.UUID, 0)
  for _, a := range attempts {
    if a.IsPassed && !seenQuiz[a.QuizID] {
      seenQuiz[a.QuizID] = true
      completedQuizzes = append(completedQuizzes, a.QuizID)
    }
  }

  return &EnrollmentStatus{
    Enrolled:           true,
    Status:             enrollment.Status,
    Progress:           enrollment.ProgressPercentage,
    IsCompleted:        enrollment.IsCompleted,
    CompletedLessonIDs: completedLessons,
    CompletedQuizIDs:   completedQuizzes,
    EnrolledAt:         &enrollment.EnrolledAt,
  }, nil
}

func (es *enrollmentService) RecordWatchTime(ctx context.Context, userID, courseID, lessonID uuid.UUID, seconds, positionSeconds int) error {
  if seconds < 0 || positionSeconds < 0 {
    return apperr.Validation("invalid_watch_time", "watch time must be non-negative", map[string]string{"seconds": "must be >= 0"})
  }
  enrollment, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, courseID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return apperr.NotFound("not_enrolled", "no enrollment for this course")
    }
    return fmt.Errorf("failed to load enrollment: %w", err)
  }

  lessons, lErr := es.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
  if lErr != nil {
    return fmt.Errorf("failed to load lesson: %w", lErr)
  }
  if len(lessons) == 0 || lessons[0].CourseID != courseID {
    return apperr.NotFound("lesson_not_found", "lesson not part of course")
  }

  now := time.Now()
  return es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    progress, pErr := es.progressRepo.GetByStudentAndLesson(ctx, tx, userID, lessonID)
    if pErr != nil && !errors.Is(pErr, gorm.ErrRecordNotFound) {
      return fmt.Errorf("failed to load lesson progress: %w", pErr)
    }
    if progress == nil {
      progress = &types.LessonProgress{
        ID:            uuid.New(),
        StudentID:     userID,
        LessonID:      lessonID,
        CourseID:      courseID,
        FirstAccessed: now,
      }
      if _, cErr := es.progressRepo.Create(ctx, tx, []*types.LessonProgress{progress}); cErr != nil {
        return fmt.Errorf("failed to create lesson progress: %w", cErr)
      }
    }
    progress.WatchTimeSeconds += seconds
    if positionSeconds > progress.LastPositionSeconds {
      progress.LastPositionSeconds = positionSeconds
    }
    progress.LastAccessed = now
    if upErr := es.progressRepo.Update(ctx, tx, progress); upErr != nil {
      return fmt.Errorf("failed to update lesson progress: %w", upErr)
    }

    enrollment.TotalWatchTime += seconds / 60
    enrollment.LastAccessed = &now
    if eErr := es.enrollmentRepo.Update(ctx, tx, enrollment); eErr != nil {
      return fmt.Errorf("failed to update enrollment: %w", eErr)
    }
    return nil
  })
}

func (es *enrollmentService) GetStudentEnrollments(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
  enrollments, err := es.enrollmentRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    return nil, fmt.Errorf("failed to load enrollments: %w", err)
  }
  return enrollments, nil
}

func (es *enrollmentService) publish(msg events.Message) {
  if es.publisher == nil {
    return
  }
  es.publisher.Broadcast(msg)
}
