package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type QuestionResult struct {
  Question      string `json:"question"`
  YourAnswer    string `json:"your_answer"`
  CorrectAnswer string `json:"correct_answer,omitempty"`
  IsCorrect     bool   `json:"is_correct"`
  Explanation   string `json:"explanation,omitempty"`
  Points        int    `json:"points"`
  PointsEarned  int    `json:"points_earned"`
  Topic         string `json:"topic,omitempty"`
}

type QuizResult struct {
  AttemptID       uuid.UUID         `json:"attempt_id"`
  AttemptNumber   int               `json:"attempt_number"`
  Score           float64           `json:"score"`
  MaxScore        float64           `json:"max_score"`
  Percentage      float64           `json:"percentage"`
  Passed          bool              `json:"passed"`
  Results         []*QuestionResult `json:"results,omitempty"`
  WeakAreas       []string          `json:"weak_areas,omitempty"`
  Recommendations []string          `json:"recommendations,omitempty"`
}

type QuizService interface {
  GetByID(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error)
  Create(ctx context.Context, quiz *types.Quiz) (*types.Quiz, error)
  AttemptQuiz(ctx context.Context, userID, quizID uuid.UUID, answers []string, timeTakenMinutes float64) (*QuizResult, error)
  GetQuizAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error)
}

type quizService struct {
  db             *gorm.DB
  log            *logger.Logger
  quizRepo       repos.QuizRepo
  attemptRepo    repos.QuizAttemptRepo
  courseRepo     repos.CourseRepo
  enrollmentRepo repos.EnrollmentRepo
  analyticsRepo  repos.StudentAnalyticsRepo
  publisher      EventPublisher
}

func NewQuizService(
  db *gorm.DB,
  log *logger.Logger,
  quizRepo repos.QuizRepo,
  attemptRepo repos.QuizAttemptRepo,
  courseRepo repos.CourseRepo,
  enrollmentRepo repos.EnrollmentRepo,
  analyticsRepo repos.StudentAnalyticsRepo,
  publisher EventPublisher,
) QuizService {
  serviceLog := log.With("service", "QuizService")
  return &quizService{
    db:             db,
    log:            serviceLog,
    quizRepo:       quizRepo,
    attemptRepo:    attemptRepo,
    courseRepo:     courseRepo,
    enrollmentRepo: enrollmentRepo,
    analyticsRepo:  analyticsRepo,
    publisher:      publisher,
  }
}

func (qs *quizService) GetByID(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error) {
  quizzes, err := qs.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{quizID})
  if err != nil {
    return nil, fmt.Errorf("failed to load quiz: %w", err)
  }
  if len(quizzes) == 0 {
    return nil, apperr.NotFound("quiz_not_found", "quiz not found")
  }
  return quizzes[0], nil
}

func (qs *quizService) Create(ctx context.Context, quiz *types.Quiz) (*types.Quiz, error) {
  var questions []types.QuizQuestionDoc
  if err := json.Unmarshal(quiz.Questions, &questions); err != nil {
    return nil, apperr.Validation("invalid_quiz", "questions must be a JSON array", map[string]string{"questions": "malformed"})
  }
  if len(questions) == 0 {
    return nil, apperr.Validation("invalid_quiz", "quiz must have at least one question", map[string]string{"questions": "empty"})
  }
  total := 0
  for i, q := range questions {
    if q.Question == "" || q.CorrectAnswer == "" {
      return nil, apperr.Validation("invalid_quiz", "question and correct_answer are required", map[string]string{fmt.Sprintf("questions[%d]", i): "incomplete"})
    }
    if len(q.Options) > 0 {
      // Scoring is exact-match, so an answer outside the options set
      // would be unanswerable. Reject it up front.
      found := false
      for _, opt := range q.Options {
        if opt == q.CorrectAnswer {
          found = true
          break
        }
      }
      if !found {
        return nil, apperr.Validation("invalid_quiz", "correct_answer must be one of the options", map[string]string{fmt.Sprintf("questions[%d]", i): "correct_answer not in options"})
      }
    }
    if q.Points <= 0 {
      questions[i].Points = 1
    }
    total += questions[i].Points
  }
  raw, mErr := json.Marshal(questions)
  if mErr != nil {
    return nil, fmt.Errorf("failed to marshal questions: %w", mErr)
  }
  quiz.Questions = datatypes.JSON(raw)
  quiz.TotalPoints = total
  quiz.ID = uuid.New()
  if quiz.PassingScore == 0 {
    quiz.PassingScore = 70
  }
  if quiz.AttemptsAllowed == 0 {
    quiz.AttemptsAllowed = 3
  }
  if _, err := qs.quizRepo.Create(ctx, nil, []*types.Quiz{quiz}); err != nil {
    return nil, fmt.Errorf("failed to create quiz: %w", err)
  }
  return quiz, nil
}

// AttemptQuiz scores by exact string equality against the stored correct
// answer. No trimming or case folding happens here; stored answers are
// authoritative byte-for-byte.
func (qs *quizService) AttemptQuiz(ctx context.Context, userID, quizID uuid.UUID, answers []string, timeTakenMinutes float64) (*QuizResult, error) {
  quiz, err := qs.GetByID(ctx, quizID)
  if err != nil {
    return nil, err
  }

  if _, eErr := qs.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, quiz.CourseID); eErr != nil {
    if errors.Is(eErr, gorm.ErrRecordNotFound) {
      return nil, apperr.Forbidden("not_enrolled", "must be enrolled in the course to attempt its quizzes")
    }
    return nil, fmt.Errorf("failed to check enrollment: %w", eErr)
  }

  priorAttempts, paErr := qs.attemptRepo.CountByStudentAndQuiz(ctx, nil, userID, quizID)
  if paErr != nil {
    return nil, fmt.Errorf("failed to count attempts: %w", paErr)
  }
  if quiz.AttemptsAllowed > 0 && priorAttempts >= int64(quiz.AttemptsAllowed) {
    return nil, apperr.Conflict("attempts_exceeded", "maximum of %d attempts reached", quiz.AttemptsAllowed)
  }

  var questions []types.QuizQuestionDoc
  if uErr := json.Unmarshal(quiz.Questions, &questions); uErr != nil {
    return nil, fmt.Errorf("failed to decode quiz questions: %w", uErr)
  }
  if len(answers) != len(questions) {
    return nil, apperr.Validation("answer_count_mismatch",
      fmt.Sprintf("expected %d answers, got %d", len(questions), len(answers)),
      map[string]string{"answers": "count must match question count"})
  }

  var score float64
  maxScore := float64(quiz.TotalPoints)
  correctCount := 0
  results := make([]*QuestionResult, 0, len(questions))
  topicMisses := make(map[string]int)
  for i, q := range questions {
    correct := answers[i] == q.CorrectAnswer
    earned := 0
    if correct {
      correctCount++
      earned = q.Points
      score += float64(q.Points)
    } else if q.Topic != "" {
      topicMisses[q.Topic]++
    }
    qr := &QuestionResult{
      Question:     q.Question,
      YourAnswer:   answers[i],
      IsCorrect:    correct,
      Points:       q.Points,
      PointsEarned: earned,
      Topic:        q.Topic,
    }
    if quiz.ShowCorrectAnswers {
      qr.CorrectAnswer = q.CorrectAnswer
      qr.Explanation = q.Explanation
    }
    results = append(results, qr)
  }

  percentage := float64(correctCount) / float64(len(questions)) * 100
  passed := percentage >= float64(quiz.PassingScore)

  now := time.Now()
  rawAnswers, mErr := json.Marshal(answers)
  if mErr != nil {
    return nil, fmt.Errorf("failed to marshal answers: %w", mErr)
  }
  attempt := &types.QuizAttempt{
    ID:               uuid.New(),
    StudentID:        userID,
    QuizID:           quizID,
    AttemptNumber:    int(priorAttempts) + 1,
    Answers:          datatypes.JSON(rawAnswers),
    Score:            score,
    MaxScore:         maxScore,
    Percentage:       percentage,
    IsPassed:         passed,
    TimeTakenMinutes: timeTakenMinutes,
    AttemptedAt:      now,
    SubmittedAt:      &now,
  }
  txErr := qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, cErr := qs.attemptRepo.Create(ctx, tx, []*types.QuizAttempt{attempt}); cErr != nil {
      return fmt.Errorf("failed to record attempt: %w", cErr)
    }
    return qs.upsertAnalytics(ctx, tx, userID, quiz.CourseID, percentage, passed, now)
  })
  if txErr != nil {
    return nil, txErr
  }

  weakAreas := make([]string, 0, len(topicMisses))
  recommendations := make([]string, 0, len(topicMisses))
  for topic := range topicMisses {
    weakAreas = append(weakAreas, topic)
    recommendations = append(recommendations, fmt.Sprintf("Review the material on %s", topic))
  }
  if !passed {
    recommendations = append(recommendations, "Revisit the lesson content before retrying")
  }

  if qs.publisher != nil {
    qs.publisher.Broadcast(events.Message{
      Channel: events.UserChannel(userID),
      Event:   events.EventQuizAttempted,
      Data:    map[string]any{"quiz_id": quizID, "percentage": percentage, "passed": passed},
    })
  }

  return &QuizResult{
    AttemptID:       attempt.ID,
    AttemptNumber:   attempt.AttemptNumber,
    Score:           score,
    MaxScore:        maxScore,
    Percentage:      percentage,
    Passed:          passed,
    Results:         results,
    WeakAreas:       weakAreas,
    Recommendations: recommendations,
  }, nil
}

func (qs *quizService) upsertAnalytics(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, percentage float64, passed bool, now time.Time) error {
  record, err := qs.analyticsRepo.GetByStudentAndCourse(ctx, tx, userID, courseID)
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
    if _, cErr := qs.analyticsRepo.Create(ctx, tx, []*types.StudentAnalytics{record}); cErr != nil {
      return fmt.Errorf("failed to create analytics: %w", cErr)
    }
  }
  prevTotal := record.AvgQuizScore * float64(record.QuizzesAttempted)
  record.QuizzesAttempted++
  record.AvgQuizScore = (prevTotal + percentage) / float64(record.QuizzesAttempted)
  if passed {
    record.QuizzesPassed++
  }
  if percentage > record.BestQuizScore {
    record.BestQuizScore = percentage
  }
  record.LastActivity = now
  if uErr := qs.analyticsRepo.Update(ctx, tx, record); uErr != nil {
    return fmt.Errorf("failed to update analytics: %w", uErr)
  }
  return nil
}

func (qs *quizService) GetQuizAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
  attempts, err := qs.attemptRepo.GetByStudentAndQuiz(ctx, nil, userID, quizID)
  if err != nil {
    return nil, fmt.Errorf("failed to load attempts: %w", err)
  }
  // newest first
  for i, j := 0, len(attempts)-1; i < j; i, j = i+1, j-1 {
    attempts[i], attempts[j] = attempts[j], attempts[i]
  }
  return attempts, nil
}
