package services

import (
  "context"
  "sync"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

// testDB is a bare in-memory database used only as the transaction
// carrier; the fakes below hold all state.
func testDB() *gorm.DB {
  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
  if err != nil {
    panic(err)
  }
  return db
}

func testLogger() *logger.Logger {
  log, err := logger.New("test")
  if err != nil {
    panic(err)
  }
  return log
}

type fakePublisher struct {
  mu       sync.Mutex
  messages []events.Message
}

func (p *fakePublisher) Broadcast(msg events.Message) {
  p.mu.Lock()
  defer p.mu.Unlock()
  p.messages = append(p.messages, msg)
}

func (p *fakePublisher) byEvent(ev events.Event) []events.Message {
  p.mu.Lock()
  defer p.mu.Unlock()
  var out []events.Message
  for _, m := range p.messages {
    if m.Event == ev {
      out = append(out, m)
    }
  }
  return out
}

type fakeUserRepo struct {
  users map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
  return &fakeUserRepo{users: make(map[uuid.UUID]*types.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  for _, u := range users {
    r.users[u.ID] = u
  }
  return users, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error) {
  var out []*types.User
  for _, id := range ids {
    if u, ok := r.users[id]; ok {
      out = append(out, u)
    }
  }
  return out, nil
}

func (r *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
  var out []*types.User
  for _, u := range r.users {
    for _, e := range emails {
      if u.Email == e {
        out = append(out, u)
      }
    }
  }
  return out, nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
  for _, u := range r.users {
    if u.Email == email {
      return true, nil
    }
  }
  return false, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *types.User) error {
  r.users[user.ID] = user
  return nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, tx *gorm.DB, role string) (int64, error) {
  var n int64
  for _, u := range r.users {
    if u.Role == role {
      n++
    }
  }
  return n, nil
}

type fakeUserTokenRepo struct {
  tokens map[uuid.UUID]*types.UserToken
}

func newFakeUserTokenRepo() *fakeUserTokenRepo {
  return &fakeUserTokenRepo{tokens: make(map[uuid.UUID]*types.UserToken)}
}

func (r *fakeUserTokenRepo) Create(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) ([]*types.UserToken, error) {
  for _, t := range userTokens {
    r.tokens[t.ID] = t
  }
  return userTokens, nil
}

func (r *fakeUserTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error) {
  var out []*types.UserToken
  for _, t := range r.tokens {
    for _, id := range userIDs {
      if t.UserID == id {
        out = append(out, t)
      }
    }
  }
  return out, nil
}

func (r *fakeUserTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error) {
  var out []*types.UserToken
  for _, t := range r.tokens {
    for _, at := range accessTokens {
      if t.AccessToken == at {
        out = append(out, t)
      }
    }
  }
  return out, nil
}

func (r *fakeUserTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error) {
  var out []*types.UserToken
  for _, t := range r.tokens {
    for _, rt := range refreshTokens {
      if t.RefreshToken == rt {
        out = append(out, t)
      }
    }
  }
  return out, nil
}

func (r *fakeUserTokenRepo) FullDeleteByTokens(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) error {
  for _, t := range userTokens {
    delete(r.tokens, t.ID)
  }
  return nil
}

func (r *fakeUserTokenRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
  for id, t := range r.tokens {
    for _, uid := range userIDs {
      if t.UserID == uid {
        delete(r.tokens, id)
      }
    }
  }
  return nil
}

type fakeCourseRepo struct {
  courses map[uuid.UUID]*types.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
  return &fakeCourseRepo{courses: make(map[uuid.UUID]*types.Course)}
}

func (r *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
  for _, c := range courses {
    r.courses[c.ID] = c
  }
  return courses, nil
}

func (r *fakeCourseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
  var out []*types.Course
  for _, id := range ids {
    if c, ok := r.courses[id]; ok {
      out = append(out, c)
    }
  }
  return out, nil
}

func (r *fakeCourseRepo) List(ctx context.Context, tx *gorm.DB, filter repos.CourseFilter) ([]*types.Course, error) {
  var out []*types.Course
  for _, c := range r.courses {
    if c.IsActive {
      out = append(out, c)
    }
  }
  return out, nil
}

func (r *fakeCourseRepo) ListCategories(ctx context.Context, tx *gorm.DB) ([]string, error) {
  seen := make(map[string]bool)
  var out []string
  for _, c := range r.courses {
    if c.Category != "" && !seen[c.Category] {
      seen[c.Category] = true
      out = append(out, c.Category)
    }
  }
  return out, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *types.Course) error {
  r.courses[course.ID] = course
  return nil
}

func (r *fakeCourseRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  for _, id := range ids {
    if c, ok := r.courses[id]; ok {
      c.IsActive = false
    }
  }
  return nil
}

func (r *fakeCourseRepo) AddEnrollmentCount(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, delta int) error {
  if c, ok := r.courses[courseID]; ok {
    c.EnrollmentCount += delta
    if c.EnrollmentCount < 0 {
      c.EnrollmentCount = 0
    }
  }
  return nil
}

func (r *fakeCourseRepo) SetRating(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, rating float64, ratingCount int) error {
  if c, ok := r.courses[courseID]; ok {
    c.Rating = rating
    c.RatingCount = ratingCount
  }
  return nil
}

func (r *fakeCourseRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  var n int64
  for _, c := range r.courses {
    if c.IsActive {
      n++
    }
  }
  return n, nil
}

type fakeLessonRepo struct {
  lessons map[uuid.UUID]*types.Lesson
}

func newFakeLessonRepo() *fakeLessonRepo {
  return &fakeLessonRepo{lessons: make(map[uuid.UUID]*types.Lesson)}
}

func (r *fakeLessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
  for _, l := range lessons {
    r.lessons[l.ID] = l
  }
  return lessons, nil
}

func (r *fakeLessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error) {
  var out []*types.Lesson
  for _, id := range ids {
    if l, ok := r.lessons[id]; ok {
      out = append(out, l)
    }
  }
  return out, nil
}

func (r *fakeLessonRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Lesson, error) {
  var out []*types.Lesson
  for _, l := range r.lessons {
    for _, cid := range courseIDs {
      if l.CourseID == cid {
        out = append(out, l)
      }
    }
  }
  return out, nil
}

func (r *fakeLessonRepo) CountByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
  counts := make(map[uuid.UUID]int64)
  for _, l := range r.lessons {
    counts[l.CourseID]++
  }
  out := make(map[uuid.UUID]int64)
  for _, cid := range courseIDs {
    out[cid] = counts[cid]
  }
  return out, nil
}

func (r *fakeLessonRepo) OrderExists(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) (bool, error) {
  for _, l := range r.lessons {
    if l.CourseID == courseID && l.Order == order {
      return true, nil
    }
  }
  return false, nil
}

func (r *fakeLessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error {
  r.lessons[lesson.ID] = lesson
  return nil
}

func (r *fakeLessonRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  for _, id := range ids {
    delete(r.lessons, id)
  }
  return nil
}

type enrollKey struct {
  student uuid.UUID
  course  uuid.UUID
}

type fakeEnrollmentRepo struct {
  byPair map[enrollKey]*types.Enrollment
  byID   map[uuid.UUID]*types.Enrollment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
  return &fakeEnrollmentRepo{
    byPair: make(map[enrollKey]*types.Enrollment),
    byID:   make(map[uuid.UUID]*types.Enrollment),
  }
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error) {
  for _, e := range enrollments {
    key := enrollKey{e.StudentID, e.CourseID}
    if _, exists := r.byPair[key]; exists {
      return nil, gorm.ErrDuplicatedKey
    }
    r.byPair[key] = e
    r.byID[e.ID] = e
  }
  return enrollments, nil
}

func (r *fakeEnrollmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Enrollment, error) {
  var out []*types.Enrollment
  for _, id := range ids {
    if e, ok := r.byID[id]; ok {
      out = append(out, e)
    }
  }
  return out, nil
}

func (r *fakeEnrollmentRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
  if e, ok := r.byPair[enrollKey{studentID, courseID}]; ok {
    return e, nil
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeEnrollmentRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.Enrollment, error) {
  var out []*types.Enrollment
  for _, e := range r.byID {
    for _, sid := range studentIDs {
      if e.StudentID == sid {
        out = append(out, e)
      }
    }
  }
  return out, nil
}

func (r *fakeEnrollmentRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Enrollment, error) {
  var out []*types.Enrollment
  for _, e := range r.byID {
    for _, cid := range courseIDs {
      if e.CourseID == cid {
        out = append(out, e)
      }
    }
  }
  return out, nil
}

func (r *fakeEnrollmentRepo) Update(ctx context.Context, tx *gorm.DB, enrollment *types.Enrollment) error {
  r.byID[enrollment.ID] = enrollment
  r.byPair[enrollKey{enrollment.StudentID, enrollment.CourseID}] = enrollment
  return nil
}

func (r *fakeEnrollmentRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  for _, id := range ids {
    if e, ok := r.byID[id]; ok {
      delete(r.byPair, enrollKey{e.StudentID, e.CourseID})
      delete(r.byID, id)
    }
  }
  return nil
}

func (r *fakeEnrollmentRepo) CountByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
  out := make(map[uuid.UUID]int64)
  for _, e := range r.byID {
    out[e.CourseID]++
  }
  filtered := make(map[uuid.UUID]int64)
  for _, cid := range courseIDs {
    filtered[cid] = out[cid]
  }
  return filtered, nil
}

func (r *fakeEnrollmentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  return int64(len(r.byID)), nil
}

type progressKey struct {
  student uuid.UUID
  lesson  uuid.UUID
}

type fakeLessonProgressRepo struct {
  byPair map[progressKey]*types.LessonProgress
}

func newFakeLessonProgressRepo() *fakeLessonProgressRepo {
  return &fakeLessonProgressRepo{byPair: make(map[progressKey]*types.LessonProgress)}
}

func (r *fakeLessonProgressRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.LessonProgress) ([]*types.LessonProgress, error) {
  for _, p := range records {
    r.byPair[progressKey{p.StudentID, p.LessonID}] = p
  }
  return records, nil
}

func (r *fakeLessonProgressRepo) GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.LessonProgress, error) {
  if p, ok := r.byPair[progressKey{studentID, lessonID}]; ok {
    return p, nil
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeLessonProgressRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) ([]*types.LessonProgress, error) {
  var out []*types.LessonProgress
  for _, p := range r.byPair {
    if p.StudentID == studentID && p.CourseID == courseID {
      out = append(out, p)
    }
  }
  return out, nil
}

func (r *fakeLessonProgressRepo) Update(ctx context.Context, tx *gorm.DB, record *types.LessonProgress) error {
  r.byPair[progressKey{record.StudentID, record.LessonID}] = record
  return nil
}

func (r *fakeLessonProgressRepo) CountCompleted(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (int64, error) {
  var n int64
  for _, p := range r.byPair {
    if p.StudentID == studentID && p.CourseID == courseID && p.IsCompleted {
      n++
    }
  }
  return n, nil
}

func (r *fakeLessonProgressRepo) DeleteByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) error {
  for k, p := range r.byPair {
    if p.StudentID == studentID && p.CourseID == courseID {
      delete(r.byPair, k)
    }
  }
  return nil
}

type fakeQuizRepo struct {
  quizzes map[uuid.UUID]*types.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
  return &fakeQuizRepo{quizzes: make(map[uuid.UUID]*types.Quiz)}
}

func (r *fakeQuizRepo) Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error) {
  for _, q := range quizzes {
    r.quizzes[q.ID] = q
  }
  return quizzes, nil
}

func (r *fakeQuizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error) {
  var out []*types.Quiz
  for _, id := range ids {
    if q, ok := r.quizzes[id]; ok {
      out = append(out, q)
    }
  }
  return out, nil
}

func (r *fakeQuizRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Quiz, error) {
  var out []*types.Quiz
  for _, q := range r.quizzes {
    for _, cid := range courseIDs {
      if q.CourseID == cid {
        out = append(out, q)
      }
    }
  }
  return out, nil
}

func (r *fakeQuizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error {
  r.quizzes[quiz.ID] = quiz
  return nil
}

func (r *fakeQuizRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  for _, id := range ids {
    delete(r.quizzes, id)
  }
  return nil
}

type fakeQuizAttemptRepo struct {
  attempts []*types.QuizAttempt
}

func newFakeQuizAttemptRepo() *fakeQuizAttemptRepo {
  return &fakeQuizAttemptRepo{}
}

func (r *fakeQuizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error) {
  r.attempts = append(r.attempts, attempts...)
  return attempts, nil
}

func (r *fakeQuizAttemptRepo) CountByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID, quizID uuid.UUID) (int64, error) {
  var n int64
  for _, a := range r.attempts {
    if a.StudentID == studentID && a.QuizID == quizID {
      n++
    }
  }
  return n, nil
}

func (r *fakeQuizAttemptRepo) GetByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
  var out []*types.QuizAttempt
  for _, a := range r.attempts {
    if a.StudentID == studentID && a.QuizID == quizID {
      out = append(out, a)
    }
  }
  return out, nil
}

func (r *fakeQuizAttemptRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.QuizAttempt, error) {
  var out []*types.QuizAttempt
  for _, a := range r.attempts {
    for _, sid := range studentIDs {
      if a.StudentID == sid {
        out = append(out, a)
      }
    }
  }
  return out, nil
}

type analyticsKey struct {
  student uuid.UUID
  course  uuid.UUID
}

type fakeAnalyticsRepo struct {
  byPair map[analyticsKey]*types.StudentAnalytics
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
  return &fakeAnalyticsRepo{byPair: make(map[analyticsKey]*types.StudentAnalytics)}
}

func (r *fakeAnalyticsRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.StudentAnalytics) ([]*types.StudentAnalytics, error) {
  for _, rec := range records {
    r.byPair[analyticsKey{rec.StudentID, rec.CourseID}] = rec
  }
  return records, nil
}

func (r *fakeAnalyticsRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.StudentAnalytics, error) {
  if rec, ok := r.byPair[analyticsKey{studentID, courseID}]; ok {
    return rec, nil
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakeAnalyticsRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.StudentAnalytics, error) {
  var out []*types.StudentAnalytics
  for _, rec := range r.byPair {
    for _, sid := range studentIDs {
      if rec.StudentID == sid {
        out = append(out, rec)
      }
    }
  }
  return out, nil
}

func (r *fakeAnalyticsRepo) Update(ctx context.Context, tx *gorm.DB, record *types.StudentAnalytics) error {
  r.byPair[analyticsKey{record.StudentID, record.CourseID}] = record
  return nil
}

func (r *fakeAnalyticsRepo) PlatformTotals(ctx context.Context, tx *gorm.DB) (*repos.PlatformTotals, error) {
  totals := &repos.PlatformTotals{}
  var scoreSum float64
  for _, rec := range r.byPair {
    totals.TotalWatchTimeMinutes += int64(rec.WatchTimeMinutes)
    totals.TotalLessonsCompleted += int64(rec.LessonsCompleted)
    totals.TotalQuizzesAttempted += int64(rec.QuizzesAttempted)
    totals.TotalQuizzesPassed += int64(rec.QuizzesPassed)
    scoreSum += rec.AvgQuizScore
  }
  if len(r.byPair) > 0 {
    totals.AvgQuizScore = scoreSum / float64(len(r.byPair))
  }
  return totals, nil
}

type fakeQuestionBankRepo struct {
  questions map[uuid.UUID]*types.QuestionBank
}

func newFakeQuestionBankRepo() *fakeQuestionBankRepo {
  return &fakeQuestionBankRepo{questions: make(map[uuid.UUID]*types.QuestionBank)}
}

func (r *fakeQuestionBankRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.QuestionBank) ([]*types.QuestionBank, error) {
  for _, q := range questions {
    r.questions[q.ID] = q
  }
  return questions, nil
}

func (r *fakeQuestionBankRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.QuestionBank, error) {
  var out []*types.QuestionBank
  for _, id := range ids {
    if q, ok := r.questions[id]; ok {
      out = append(out, q)
    }
  }
  return out, nil
}

func (r *fakeQuestionBankRepo) PickRandom(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, difficulty string, excludeIDs []uuid.UUID, limit int) ([]*types.QuestionBank, error) {
  excluded := make(map[uuid.UUID]bool, len(excludeIDs))
  for _, id := range excludeIDs {
    excluded[id] = true
  }
  var out []*types.QuestionBank
  for _, q := range r.questions {
    if q.LessonID != nil && *q.LessonID == lessonID && q.DifficultyLevel == difficulty && q.IsActive && !excluded[q.ID] {
      out = append(out, q)
      if limit > 0 && len(out) >= limit {
        break
      }
    }
  }
  return out, nil
}

func (r *fakeQuestionBankRepo) RecordUsage(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, correct bool) error {
  if q, ok := r.questions[questionID]; ok {
    q.TimesUsed++
    if correct {
      q.TimesCorrect++
    }
  }
  return nil
}

func (r *fakeQuestionBankRepo) CountByLessonAndDifficulty(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, difficulty string) (int64, error) {
  var n int64
  for _, q := range r.questions {
    if q.LessonID != nil && *q.LessonID == lessonID && q.DifficultyLevel == difficulty && q.IsActive {
      n++
    }
  }
  return n, nil
}

func (r *fakeQuestionBankRepo) ListByLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) ([]*types.QuestionBank, error) {
  var out []*types.QuestionBank
  for _, q := range r.questions {
    if q.LessonID != nil && *q.LessonID == lessonID && q.IsActive {
      out = append(out, q)
    }
  }
  return out, nil
}

func (r *fakeQuestionBankRepo) Update(ctx context.Context, tx *gorm.DB, question *types.QuestionBank) error {
  r.questions[question.ID] = question
  return nil
}

func (r *fakeQuestionBankRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  for _, id := range ids {
    if q, ok := r.questions[id]; ok {
      q.IsActive = false
    }
  }
  return nil
}

type performanceKey struct {
  student uuid.UUID
  lesson  uuid.UUID
}

type fakePerformanceRepo struct {
  byPair map[performanceKey]*types.StudentPerformance
}

func newFakePerformanceRepo() *fakePerformanceRepo {
  return &fakePerformanceRepo{byPair: make(map[performanceKey]*types.StudentPerformance)}
}

func (r *fakePerformanceRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.StudentPerformance) ([]*types.StudentPerformance, error) {
  for _, p := range records {
    r.byPair[performanceKey{p.StudentID, p.LessonID}] = p
  }
  return records, nil
}

func (r *fakePerformanceRepo) GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.StudentPerformance, error) {
  if p, ok := r.byPair[performanceKey{studentID, lessonID}]; ok {
    return p, nil
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *fakePerformanceRepo) Update(ctx context.Context, tx *gorm.DB, record *types.StudentPerformance) error {
  r.byPair[performanceKey{record.StudentID, record.LessonID}] = record
  return nil
}

type fakeDynamicQuizRepo struct {
  quizzes map[uuid.UUID]*types.DynamicQuiz
}

func newFakeDynamicQuizRepo() *fakeDynamicQuizRepo {
  return &fakeDynamicQuizRepo{quizzes: make(map[uuid.UUID]*types.DynamicQuiz)}
}

func (r *fakeDynamicQuizRepo) Create(ctx context.Context, tx *gorm.DB, quizzes []*types.DynamicQuiz) ([]*types.DynamicQuiz, error) {
  for _, q := range quizzes {
    r.quizzes[q.ID] = q
  }
  return quizzes, nil
}

func (r *fakeDynamicQuizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.DynamicQuiz, error) {
  var out []*types.DynamicQuiz
  for _, id := range ids {
    if q, ok := r.quizzes[id]; ok {
      out = append(out, q)
    }
  }
  return out, nil
}

func (r *fakeDynamicQuizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *types.DynamicQuiz) error {
  r.quizzes[quiz.ID] = quiz
  return nil
}

type fakeQuestionAttemptRepo struct {
  attempts []*types.QuestionAttempt
}

func newFakeQuestionAttemptRepo() *fakeQuestionAttemptRepo {
  return &fakeQuestionAttemptRepo{}
}

func (r *fakeQuestionAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempts []*types.QuestionAttempt) ([]*types.QuestionAttempt, error) {
  r.attempts = append(r.attempts, attempts...)
  return attempts, nil
}

func (r *fakeQuestionAttemptRepo) GetByDynamicQuizIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.QuestionAttempt, error) {
  var out []*types.QuestionAttempt
  for _, a := range r.attempts {
    for _, id := range ids {
      if a.DynamicQuizID == id {
        out = append(out, a)
      }
    }
  }
  return out, nil
}
