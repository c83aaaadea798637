package services

import (
  "context"
  "testing"

  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type enrollmentFixture struct {
  svc         EnrollmentService
  users       *fakeUserRepo
  courses     *fakeCourseRepo
  lessons     *fakeLessonRepo
  enrollments *fakeEnrollmentRepo
  progress    *fakeLessonProgressRepo
  attempts    *fakeQuizAttemptRepo
  publisher   *fakePublisher
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
  t.Helper()
  f := &enrollmentFixture{
    users:       newFakeUserRepo(),
    courses:     newFakeCourseRepo(),
    lessons:     newFakeLessonRepo(),
    enrollments: newFakeEnrollmentRepo(),
    progress:    newFakeLessonProgressRepo(),
    attempts:    newFakeQuizAttemptRepo(),
    publisher:   &fakePublisher{},
  }
  f.svc = NewEnrollmentService(
    testDB(), testLogger(),
    f.users, f.courses, f.lessons, f.enrollments, f.progress, f.attempts,
    f.publisher,
  )
  return f
}

func (f *enrollmentFixture) addUser() uuid.UUID {
  id := uuid.New()
  f.users.users[id] = &types.User{ID: id, Email: id.String() + "@example.com", Role: types.RoleStudent, IsActive: true}
  return id
}

func (f *enrollmentFixture) addCourse(lessonCount int) (uuid.UUID, []uuid.UUID) {
  courseID := uuid.New()
  f.courses.courses[courseID] = &types.Course{ID: courseID, Title: "Go Fundamentals", IsActive: true}
  lessonIDs := make([]uuid.UUID, 0, lessonCount)
  for i := 0; i < lessonCount; i++ {
    lid := uuid.New()
    f.lessons.lessons[lid] = &types.Lesson{ID: lid, CourseID: courseID, Order: i + 1, Title: "Lesson"}
    lessonIDs = append(lessonIDs, lid)
  }
  return courseID, lessonIDs
}

func TestEnrollCreatesActiveEnrollment(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, _ := f.addCourse(3)

  enrollment, err := f.svc.Enroll(ctx, userID, courseID)
  if err != nil {
    t.Fatalf("Enroll returned error: %v", err)
  }
  if enrollment.Status != types.EnrollmentStatusActive {
    t.Errorf("status = %q, want %q", enrollment.Status, types.EnrollmentStatusActive)
  }
  if enrollment.ProgressPercentage != 0 {
    t.Errorf("progress = %v, want 0", enrollment.ProgressPercentage)
  }
  if got := f.courses.courses[courseID].EnrollmentCount; got != 1 {
    t.Errorf("enrollment count = %d, want 1", got)
  }
  if msgs := f.publisher.byEvent(events.EventEnrolled); len(msgs) != 1 {
    t.Errorf("enrolled events = %d, want 1", len(msgs))
  }
}

func TestEnrollDuplicateConflicts(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, _ := f.addCourse(1)

  if _, err := f.svc.Enroll(ctx, userID, courseID); err != nil {
    t.Fatalf("first Enroll returned error: %v", err)
  }
  _, err := f.svc.Enroll(ctx, userID, courseID)
  ae := apperr.As(err)
  if ae.Kind != apperr.KindConflict || ae.Code != "already_enrolled" {
    t.Fatalf("second Enroll = %v, want already_enrolled conflict", err)
  }
  if got := f.courses.courses[courseID].EnrollmentCount; got != 1 {
    t.Errorf("enrollment count = %d, want 1 after rejected duplicate", got)
  }
}

func TestEnrollUnknownTargets(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, _ := f.addCourse(1)

  cases := []struct {
    name     string
    userID   uuid.UUID
    courseID uuid.UUID
    code     string
  }{
    {"missing user", uuid.New(), courseID, "user_not_found"},
    {"missing course", userID, uuid.New(), "course_not_found"},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      _, err := f.svc.Enroll(ctx, tc.userID, tc.courseID)
      ae := apperr.As(err)
      if ae.Kind != apperr.KindNotFound || ae.Code != tc.code {
        t.Fatalf("Enroll = %v, want %s not-found", err, tc.code)
      }
    })
  }
}

func TestEnrollInactiveCourseNotFound(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, _ := f.addCourse(1)
  f.courses.courses[courseID].IsActive = false

  _, err := f.svc.Enroll(ctx, userID, courseID)
  if !apperr.IsKind(err, apperr.KindNotFound) {
    t.Fatalf("Enroll on inactive course = %v, want not-found", err)
  }
}

func TestUnenrollDiscardsProgressAndAllowsReEnroll(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, lessonIDs := f.addCourse(2)

  if _, err := f.svc.Enroll(ctx, userID, courseID); err != nil {
    t.Fatalf("Enroll returned error: %v", err)
  }
  if _, err := f.svc.MarkLessonComplete(ctx, userID, courseID, lessonIDs[0]); err != nil {
    t.Fatalf("MarkLessonComplete returned error: %v", err)
  }
  if err := f.svc.Unenroll(ctx, userID, courseID); err != nil {
    t.Fatalf("Unenroll returned error: %v", err)
  }
  if got := f.courses.courses[courseID].EnrollmentCount; got != 0 {
    t.Errorf("enrollment count = %d, want 0", got)
  }

  status, err := f.svc.GetEnrollmentStatus(ctx, userID, courseID)
  if err != nil {
    t.Fatalf("GetEnrollmentStatus returned error: %v", err)
  }
  if status.Enrolled {
    t.Error("still enrolled after Unenroll")
  }

  // Progress starts over on re-enrollment.
  enrollment, err := f.svc.Enroll(ctx, userID, courseID)
  if err != nil {
    t.Fatalf("re-Enroll returned error: %v", err)
  }
  if enrollment.ProgressPercentage != 0 {
    t.Errorf("progress after re-enroll = %v, want 0", enrollment.ProgressPercentage)
  }
}

func TestUnenrollWithoutEnrollmentNotFound(t *testing.T) {
  f := newEnrollmentFixture(t)
  userID := f.addUser()
  courseID, _ := f.addCourse(1)

  err := f.svc.Unenroll(context.Background(), userID, courseID)
  ae := apperr.As(err)
  if ae.Kind != apperr.KindNotFound || ae.Code != "not_enrolled" {
    t.Fatalf("Unenroll = %v, want not_enrolled", err)
  }
}

func TestMarkLessonCompleteProgressAndCompletion(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, lessonIDs := f.addCourse(3)

  if _, err := f.svc.Enroll(ctx, userID, courseID); err != nil {
    t.Fatalf("Enroll returned error: %v", err)
  }

  enrollment, err := f.svc.MarkLessonComplete(ctx, userID, courseID, lessonIDs[0])
  if err != nil {
    t.Fatalf("MarkLessonComplete returned error: %v", err)
  }
  want := 100.0 / 3.0
  if diff := enrollment.ProgressPercentage - want; diff > 1e-9 || diff < -1e-9 {
    t.Errorf("progress = %v, want %v", enrollment.ProgressPercentage, want)
  }
  if enrollment.IsCompleted {
    t.Error("course marked completed after one of three lessons")
  }

  for _, lid := range lessonIDs[1:] {
    if enrollment, err = f.svc.MarkLessonComplete(ctx, userID, courseID, lid); err != nil {
      t.Fatalf("MarkLessonComplete returned error: %v", err)
    }
  }
  if enrollment.ProgressPercentage != 100 {
    t.Errorf("progress = %v, want 100", enrollment.ProgressPercentage)
  }
  if !enrollment.IsCompleted || enrollment.Status != types.EnrollmentStatusCompleted {
    t.Errorf("enrollment not completed: %+v", enrollment)
  }
  if enrollment.CompletedAt == nil {
    t.Error("CompletedAt not set")
  }
  if msgs := f.publisher.byEvent(events.EventCourseCompleted); len(msgs) != 1 {
    t.Errorf("course completed events = %d, want 1", len(msgs))
  }
}

func TestMarkLessonCompleteIdempotent(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, lessonIDs := f.addCourse(2)

  if _, err := f.svc.Enroll(ctx, userID, courseID); err != nil {
    t.Fatalf("Enroll returned error: %v", err)
  }
  first, err := f.svc.MarkLessonComplete(ctx, userID, courseID, lessonIDs[0])
  if err != nil {
    t.Fatalf("MarkLessonComplete returned error: %v", err)
  }
  second, err := f.svc.MarkLessonComplete(ctx, userID, courseID, lessonIDs[0])
  if err != nil {
    t.Fatalf("repeat MarkLessonComplete returned error: %v", err)
  }
  if first.ProgressPercentage != second.ProgressPercentage {
    t.Errorf("progress changed on repeat: %v -> %v", first.ProgressPercentage, second.ProgressPercentage)
  }

  status, err := f.svc.GetEnrollmentStatus(ctx, userID, courseID)
  if err != nil {
    t.Fatalf("GetEnrollmentStatus returned error: %v", err)
  }
  if len(status.CompletedLessonIDs) != 1 {
    t.Errorf("completed lessons = %d, want 1", len(status.CompletedLessonIDs))
  }
}

func TestMarkLessonCompleteForeignLesson(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, _ := f.addCourse(1)
  _, otherLessons := f.addCourse(1)

  if _, err := f.svc.Enroll(ctx, userID, courseID); err != nil {
    t.Fatalf("Enroll returned error: %v", err)
  }
  _, err := f.svc.MarkLessonComplete(ctx, userID, courseID, otherLessons[0])
  ae := apperr.As(err)
  if ae.Kind != apperr.KindNotFound || ae.Code != "lesson_not_found" {
    t.Fatalf("MarkLessonComplete = %v, want lesson_not_found", err)
  }
}

func TestEmptyCourseProgressStaysZero(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, _ := f.addCourse(0)

  enrollment, err := f.svc.Enroll(ctx, userID, courseID)
  if err != nil {
    t.Fatalf("Enroll returned error: %v", err)
  }
  if enrollment.ProgressPercentage != 0 {
    t.Errorf("progress = %v, want 0 for empty course", enrollment.ProgressPercentage)
  }

  if _, err := f.svc.MarkLessonComplete(ctx, userID, courseID, uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
    t.Fatalf("MarkLessonComplete on empty course = %v, want not-found", err)
  }
  if err := f.svc.Unenroll(ctx, userID, courseID); err != nil {
    t.Fatalf("Unenroll of empty course returned error: %v", err)
  }
}

func TestGetEnrollmentStatusSentinel(t *testing.T) {
  f := newEnrollmentFixture(t)
  userID := f.addUser()
  courseID, _ := f.addCourse(1)

  status, err := f.svc.GetEnrollmentStatus(context.Background(), userID, courseID)
  if err != nil {
    t.Fatalf("GetEnrollmentStatus returned error: %v", err)
  }
  if status.Enrolled {
    t.Error("Enrolled = true for never-enrolled student")
  }
  if status.CompletedLessonIDs == nil || status.CompletedQuizIDs == nil {
    t.Error("sentinel slices must be non-nil")
  }
  if len(status.CompletedLessonIDs) != 0 || len(status.CompletedQuizIDs) != 0 {
    t.Error("sentinel slices must be empty")
  }
}

func TestRecordWatchTime(t *testing.T) {
  f := newEnrollmentFixture(t)
  ctx := context.Background()
  userID := f.addUser()
  courseID, lessonIDs := f.addCourse(1)

  if _, err := f.svc.Enroll(ctx, userID, courseID); err != nil {
    t.Fatalf("Enroll returned error: %v", err)
  }
  if err := f.svc.RecordWatchTime(ctx, userID, courseID, lessonIDs[0], 90, 95); err != nil {
    t.Fatalf("RecordWatchTime returned error: %v", err)
  }
  if err := f.svc.RecordWatchTime(ctx, userID, courseID, lessonIDs[0], 30, 40); err != nil {
    t.Fatalf("RecordWatchTime returned error: %v", err)
  }

  progress, err := f.progress.GetByStudentAndLesson(ctx, nil, userID, lessonIDs[0])
  if err != nil {
    t.Fatalf("progress lookup failed: %v", err)
  }
  if progress.WatchTimeSeconds != 120 {
    t.Errorf("watch time = %d, want 120", progress.WatchTimeSeconds)
  }
  // Position only moves forward.
  if progress.LastPositionSeconds != 95 {
    t.Errorf("position = %d, want 95", progress.LastPositionSeconds)
  }

  if err := f.svc.RecordWatchTime(ctx, userID, courseID, lessonIDs[0], -1, 0); !apperr.IsKind(err, apperr.KindValidation) {
    t.Fatalf("negative watch time = %v, want validation error", err)
  }
}
