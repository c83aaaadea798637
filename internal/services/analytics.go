package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type StudentDashboard struct {
  TotalEnrollments int                       `json:"total_enrollments"`
  CompletedCourses int                       `json:"completed_courses"`
  Enrollments      []*types.Enrollment       `json:"enrollments"`
  QuizzesAttempted int                       `json:"quizzes_attempted"`
  QuizzesPassed    int                       `json:"quizzes_passed"`
  AvgQuizScore     float64                   `json:"avg_quiz_score"`
  WatchTimeMinutes float64                   `json:"watch_time_minutes"`
  RecentAttempts   []*types.QuizAttempt      `json:"recent_attempts"`
  PerCourse        []*types.StudentAnalytics `json:"per_course"`
}

type CourseStats struct {
  Course         *types.Course `json:"course"`
  Enrollments    int64         `json:"enrollments"`
  Completions    int64         `json:"completions"`
  CompletionRate float64       `json:"completion_rate"`
}

type AdminDashboard struct {
  TotalStudents         int64          `json:"total_students"`
  TotalCourses          int64          `json:"total_courses"`
  TotalEnrollments      int64          `json:"total_enrollments"`
  TotalQuizzesAttempted int64          `json:"total_quizzes_attempted"`
  TotalQuizzesPassed    int64          `json:"total_quizzes_passed"`
  QuizPassRate          float64        `json:"quiz_pass_rate"`
  AvgQuizScore          float64        `json:"avg_quiz_score"`
  Courses               []*CourseStats `json:"courses"`
}

type AnalyticsService interface {
  StudentDashboard(ctx context.Context, userID uuid.UUID) (*StudentDashboard, error)
  AdminDashboard(ctx context.Context) (*AdminDashboard, error)
  RecordProgress(ctx context.Context, userID, courseID uuid.UUID, watchMinutes float64, lessonCompleted bool) error
}

type analyticsService struct {
  db             *gorm.DB
  log            *logger.Logger
  userRepo       repos.UserRepo
  courseRepo     repos.CourseRepo
  enrollmentRepo repos.EnrollmentRepo
  attemptRepo    repos.QuizAttemptRepo
  analyticsRepo  repos.StudentAnalyticsRepo
}

func NewAnalyticsService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  courseRepo repos.CourseRepo,
  enrollmentRepo repos.EnrollmentRepo,
  attemptRepo repos.QuizAttemptRepo,
  analyticsRepo repos.StudentAnalyticsRepo,
) AnalyticsService {
  serviceLog := log.With("service", "AnalyticsService")
  return &analyticsService{
    db:             db,
    log:            serviceLog,
    userRepo:       userRepo,
    courseRepo:     courseRepo,
    enrollmentRepo: enrollmentRepo,
    attemptRepo:    attemptRepo,
    analyticsRepo:  analyticsRepo,
  }
}

func (as *analyticsService) StudentDashboard(ctx context.Context, userID uuid.UUID) (*StudentDashboard, error) {
  enrollments, eErr := as.enrollmentRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{userID})
  if eErr != nil {
    return nil, fmt.Errorf("failed to load enrollments: %w", eErr)
  }
  completed := 0
  for _, e := range enrollments {
    if e.IsCompleted {
      completed++
    }
  }

  attempts, aErr := as.attemptRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{userID})
  if aErr != nil {
    return nil, fmt.Errorf("failed to load quiz attempts: %w", aErr)
  }
  passed := 0
  var scoreSum float64
  for _, a := range attempts {
    if a.IsPassed {
      passed++
    }
    scoreSum += a.Percentage
  }
  avgScore := 0.0
  if len(attempts) > 0 {
    avgScore = scoreSum / float64(len(attempts))
  }
  recent := attempts
  if len(recent) > 10 {
    recent = recent[:10]
  }

  perCourse, pcErr := as.analyticsRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{userID})
  if pcErr != nil {
    return nil, fmt.Errorf("failed to load analytics rows: %w", pcErr)
  }
  var watchMinutes float64
  for _, rec := range perCourse {
    watchMinutes += rec.WatchTimeMinutes
  }

  return &StudentDashboard{
    TotalEnrollments: len(enrollments),
    CompletedCourses: completed,
    Enrollments:      enrollments,
    QuizzesAttempted: len(attempts),
    QuizzesPassed:    passed,
    AvgQuizScore:     avgScore,
    WatchTimeMinutes: watchMinutes,
    RecentAttempts:   recent,
    PerCourse:        perCourse,
  }, nil
}

func (as *analyticsService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
  students, sErr := as.userRepo.CountByRole(ctx, nil, types.RoleStudent)
  if sErr != nil {
    return nil, fmt.Errorf("failed to count students: %w", sErr)
  }
  courseTotal, cErr := as.courseRepo.Count(ctx, nil)
  if cErr != nil {
    return nil, fmt.Errorf("failed to count courses: %w", cErr)
  }
  enrollmentTotal, eErr := as.enrollmentRepo.Count(ctx, nil)
  if eErr != nil {
    return nil, fmt.Errorf("failed to count enrollments: %w", eErr)
  }
  totals, tErr := as.analyticsRepo.PlatformTotals(ctx, nil)
  if tErr != nil {
    return nil, fmt.Errorf("failed to aggregate platform totals: %w", tErr)
  }

  courses, clErr := as.courseRepo.List(ctx, nil, repos.CourseFilter{SortBy: "popular"})
  if clErr != nil {
    return nil, fmt.Errorf("failed to list courses: %w", clErr)
  }
  courseIDs := make([]uuid.UUID, 0, len(courses))
  for _, c := range courses {
    courseIDs = append(courseIDs, c.ID)
  }
  enrollCounts, ecErr := as.enrollmentRepo.CountByCourseIDs(ctx, nil, courseIDs)
  if ecErr != nil {
    return nil, fmt.Errorf("failed to count course enrollments: %w", ecErr)
  }
  allEnrollments, aeErr := as.enrollmentRepo.GetByCourseIDs(ctx, nil, courseIDs)
  if aeErr != nil {
    return nil, fmt.Errorf("failed to load enrollments: %w", aeErr)
  }
  completionsByCourse := make(map[uuid.UUID]int64)
  for _, e := range allEnrollments {
    if e.IsCompleted {
      completionsByCourse[e.CourseID]++
    }
  }

  stats := make([]*CourseStats, 0, len(courses))
  for _, c := range courses {
    cs := &CourseStats{
      Course:      c,
      Enrollments: enrollCounts[c.ID],
      Completions: completionsByCourse[c.ID],
    }
    if cs.Enrollments > 0 {
      cs.CompletionRate = float64(cs.Completions) / float64(cs.Enrollments) * 100
    }
    stats = append(stats, cs)
  }

  passRate := 0.0
  if totals.TotalQuizzesAttempted > 0 {
    passRate = float64(totals.TotalQuizzesPassed) / float64(totals.TotalQuizzesAttempted) * 100
  }

  return &AdminDashboard{
    TotalStudents:         students,
    TotalCourses:          courseTotal,
    TotalEnrollments:      enrollmentTotal,
    TotalQuizzesAttempted: totals.TotalQuizzesAttempted,
    TotalQuizzesPassed:    totals.TotalQuizzesPassed,
    QuizPassRate:          passRate,
    AvgQuizScore:          totals.AvgQuizScore,
    Courses:               stats,
  }, nil
}

// RecordProgress upserts the per-course analytics row after a watch-time
// or completion update.
func (as *analyticsService) RecordProgress(ctx context.Context, userID, courseID uuid.UUID, watchMinutes float64, lessonCompleted bool) error {
  now := time.Now()
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    record, err := as.analyticsRepo.GetByStudentAndCourse(ctx, tx, userID, courseID)
    if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
      return fmt.Errorf("failed to load analytics: %w", err)
    }
    if record == nil {
      record = &types.StudentAnalytics{
        ID:            uuid.New(),
        StudentID:     userID,
        CourseID:      courseID,
        FirstActivity: now,
      }
      if _, cErr := as.analyticsRepo.Create(ctx, tx, []*types.StudentAnalytics{record}); cErr != nil {
        return fmt.Errorf("failed to create analytics: %w", cErr)
      }
    }
    record.WatchTimeMinutes += watchMinutes
    if lessonCompleted {
      record.LessonsCompleted++
    }
    record.LastActivity = now
    if uErr := as.analyticsRepo.Update(ctx, tx, record); uErr != nil {
      return fmt.Errorf("failed to update analytics: %w", uErr)
    }
    return nil
  })
}
