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
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

// AdaptiveConfig holds the hysteresis thresholds. PromoteStreak consecutive
// correct answers raise the difficulty one tier; DemoteStreak consecutive
// incorrect answers lower it. Both counters reset whenever the tier moves.
type AdaptiveConfig struct {
  PromoteStreak int
  DemoteStreak  int
}

func DefaultAdaptiveConfig() AdaptiveConfig {
  return AdaptiveConfig{PromoteStreak: 3, DemoteStreak: 2}
}

type AnswerResult struct {
  IsCorrect         bool    `json:"is_correct"`
  CorrectAnswer     string  `json:"correct_answer"`
  Explanation       string  `json:"explanation,omitempty"`
  PointsEarned      int     `json:"points_earned"`
  CurrentStreak     int     `json:"current_streak"`
  DifficultyChanged bool    `json:"difficulty_changed"`
  NewDifficulty     string  `json:"new_difficulty,omitempty"`
  QuizProgress      float64 `json:"quiz_progress"`
}

type NextQuestionView struct {
  QuestionID     uuid.UUID       `json:"question_id"`
  QuestionText   string          `json:"question_text"`
  QuestionType   string          `json:"question_type"`
  Options        json.RawMessage `json:"options,omitempty"`
  Difficulty     string          `json:"difficulty"`
  Points         int             `json:"points"`
  QuestionNumber int             `json:"question_number"`
  TotalQuestions int             `json:"total_questions"`
  Finished       bool            `json:"finished"`
}

type DynamicQuizSummary struct {
  QuizID             uuid.UUID `json:"quiz_id"`
  FinalScore         float64   `json:"final_score"`
  QuestionsAnswered  int       `json:"questions_answered"`
  CorrectAnswers     int       `json:"correct_answers"`
  StartingDifficulty string    `json:"starting_difficulty"`
  EndingDifficulty   string    `json:"ending_difficulty"`
  AdaptiveChanges    int       `json:"adaptive_changes"`
}

type AdaptiveQuizService interface {
  StartDynamicQuiz(ctx context.Context, userID, courseID, lessonID uuid.UUID, totalQuestions int) (*types.DynamicQuiz, error)
  NextQuestion(ctx context.Context, userID, quizID uuid.UUID) (*NextQuestionView, error)
  SubmitAnswer(ctx context.Context, userID, quizID, questionID uuid.UUID, answer string, timeTakenSeconds float64) (*AnswerResult, error)
  CompleteQuiz(ctx context.Context, userID, quizID uuid.UUID) (*DynamicQuizSummary, error)
}

type adaptiveQuizService struct {
  db              *gorm.DB
  log             *logger.Logger
  questionRepo    repos.QuestionBankRepo
  performanceRepo repos.StudentPerformanceRepo
  dynamicQuizRepo repos.DynamicQuizRepo
  attemptRepo     repos.QuestionAttemptRepo
  enrollmentRepo  repos.EnrollmentRepo
  cfg             AdaptiveConfig
}

func NewAdaptiveQuizService(
  db *gorm.DB,
  log *logger.Logger,
  questionRepo repos.QuestionBankRepo,
  performanceRepo repos.StudentPerformanceRepo,
  dynamicQuizRepo repos.DynamicQuizRepo,
  attemptRepo repos.QuestionAttemptRepo,
  enrollmentRepo repos.EnrollmentRepo,
  cfg AdaptiveConfig,
) AdaptiveQuizService {
  serviceLog := log.With("service", "AdaptiveQuizService")
  if cfg.PromoteStreak <= 0 {
    cfg.PromoteStreak = 3
  }
  if cfg.DemoteStreak <= 0 {
    cfg.DemoteStreak = 2
  }
  return &adaptiveQuizService{
    db:              db,
    log:             serviceLog,
    questionRepo:    questionRepo,
    performanceRepo: performanceRepo,
    dynamicQuizRepo: dynamicQuizRepo,
    attemptRepo:     attemptRepo,
    enrollmentRepo:  enrollmentRepo,
    cfg:             cfg,
  }
}

var difficultyOrder = []string{
  types.QuestionDifficultyEasy,
  types.QuestionDifficultyMedium,
  types.QuestionDifficultyHard,
}

func promote(difficulty string) string {
  for i, d := range difficultyOrder {
    if d == difficulty && i < len(difficultyOrder)-1 {
      return difficultyOrder[i+1]
    }
  }
  return difficulty
}

func demote(difficulty string) string {
  for i, d := range difficultyOrder {
    if d == difficulty && i > 0 {
      return difficultyOrder[i-1]
    }
  }
  return difficulty
}

func (s *adaptiveQuizService) StartDynamicQuiz(ctx context.Context, userID, courseID, lessonID uuid.UUID, totalQuestions int) (*types.DynamicQuiz, error) {
  if totalQuestions <= 0 {
    totalQuestions = 10
  }

  if _, eErr := s.enrollmentRepo.GetByStudentAndCourse(ctx, nil, userID, courseID); eErr != nil {
    if errors.Is(eErr, gorm.ErrRecordNotFound) {
      return nil, apperr.Forbidden("not_enrolled", "must be enrolled in the course to start an adaptive quiz")
    }
    return nil, fmt.Errorf("failed to check enrollment: %w", eErr)
  }

  starting := types.QuestionDifficultyEasy
  perf, pErr := s.performanceRepo.GetByStudentAndLesson(ctx, nil, userID, lessonID)
  if pErr != nil && !errors.Is(pErr, gorm.ErrRecordNotFound) {
    return nil, fmt.Errorf("failed to load performance: %w", pErr)
  }
  if perf != nil && perf.RecommendedDifficulty != "" {
    starting = perf.RecommendedDifficulty
  }

  available, cErr := s.questionRepo.CountByLessonAndDifficulty(ctx, nil, lessonID, starting)
  if cErr != nil {
    return nil, fmt.Errorf("failed to count questions: %w", cErr)
  }
  if available == 0 {
    return nil, apperr.NotFound("no_questions", "no questions available for this lesson")
  }

  now := time.Now()
  quiz := &types.DynamicQuiz{
    ID:                 uuid.New(),
    StudentID:          userID,
    CourseID:           courseID,
    LessonID:           lessonID,
    TotalQuestions:     totalQuestions,
    SelectedQuestions:  datatypes.JSON([]byte("[]")),
    StartingDifficulty: starting,
    StartedAt:          &now,
  }
  if _, err := s.dynamicQuizRepo.Create(ctx, nil, []*types.DynamicQuiz{quiz}); err != nil {
    return nil, fmt.Errorf("failed to create dynamic quiz: %w", err)
  }
  return quiz, nil
}

func (s *adaptiveQuizService) loadSession(ctx context.Context, tx *gorm.DB, userID, quizID uuid.UUID) (*types.DynamicQuiz, error) {
  quizzes, err := s.dynamicQuizRepo.GetByIDs(ctx, tx, []uuid.UUID{quizID})
  if err != nil {
    return nil, fmt.Errorf("failed to load dynamic quiz: %w", err)
  }
  if len(quizzes) == 0 {
    return nil, apperr.NotFound("quiz_not_found", "dynamic quiz not found")
  }
  quiz := quizzes[0]
  if quiz.StudentID != userID {
    return nil, apperr.Forbidden("not_owner", "dynamic quiz belongs to another student")
  }
  return quiz, nil
}

func usedQuestionIDs(quiz *types.DynamicQuiz) ([]uuid.UUID, error) {
  var ids []uuid.UUID
  if len(quiz.SelectedQuestions) == 0 {
    return ids, nil
  }
  if err := json.Unmarshal(quiz.SelectedQuestions, &ids); err != nil {
    return nil, fmt.Errorf("failed to decode selected questions: %w", err)
  }
  return ids, nil
}

// NextQuestion serves the next question at the tier the hysteresis state
// machine currently recommends. When the tier has no unused questions left
// it falls back to adjacent tiers rather than ending the session early.
func (s *adaptiveQuizService) NextQuestion(ctx context.Context, userID, quizID uuid.UUID) (*NextQuestionView, error) {
  quiz, err := s.loadSession(ctx, nil, userID, quizID)
  if err != nil {
    return nil, err
  }
  if quiz.IsCompleted || quiz.QuestionsAnswered >= quiz.TotalQuestions {
    return &NextQuestionView{Finished: true, TotalQuestions: quiz.TotalQuestions}, nil
  }

  difficulty := quiz.StartingDifficulty
  perf, pErr := s.performanceRepo.GetByStudentAndLesson(ctx, nil, userID, quiz.LessonID)
  if pErr != nil && !errors.Is(pErr, gorm.ErrRecordNotFound) {
    return nil, fmt.Errorf("failed to load performance: %w", pErr)
  }
  if perf != nil && perf.RecommendedDifficulty != "" {
    difficulty = perf.RecommendedDifficulty
  }

  used, uErr := usedQuestionIDs(quiz)
  if uErr != nil {
    return nil, uErr
  }

  candidates := []string{difficulty, demote(difficulty), promote(difficulty)}
  var question *types.QuestionBank
  for _, tier := range candidates {
    picked, qErr := s.questionRepo.PickRandom(ctx, nil, quiz.LessonID, tier, used, 1)
    if qErr != nil {
      return nil, fmt.Errorf("failed to pick question: %w", qErr)
    }
    if len(picked) > 0 {
      question = picked[0]
      break
    }
  }
  if question == nil {
    return &NextQuestionView{Finished: true, TotalQuestions: quiz.TotalQuestions}, nil
  }

  used = append(used, question.ID)
  raw, mErr := json.Marshal(used)
  if mErr != nil {
    return nil, fmt.Errorf("failed to marshal selected questions: %w", mErr)
  }
  quiz.SelectedQuestions = datatypes.JSON(raw)
  quiz.CurrentIndex = len(used)
  if updErr := s.dynamicQuizRepo.Update(ctx, nil, quiz); updErr != nil {
    return nil, fmt.Errorf("failed to update dynamic quiz: %w", updErr)
  }

  return &NextQuestionView{
    QuestionID:     question.ID,
    QuestionText:   question.QuestionText,
    QuestionType:   question.QuestionType,
    Options:        json.RawMessage(question.Options),
    Difficulty:     question.DifficultyLevel,
    Points:         question.Points,
    QuestionNumber: quiz.QuestionsAnswered + 1,
    TotalQuestions: quiz.TotalQuestions,
  }, nil
}

// SubmitAnswer scores exact-match and advances the hysteresis state:
// promote after cfg.PromoteStreak consecutive correct, demote after
// cfg.DemoteStreak consecutive incorrect, counters reset on any tier
// change, saturating at easy and hard.
func (s *adaptiveQuizService) SubmitAnswer(ctx context.Context, userID, quizID, questionID uuid.UUID, answer string, timeTakenSeconds float64) (*AnswerResult, error) {
  quiz, err := s.loadSession(ctx, nil, userID, quizID)
  if err != nil {
    return nil, err
  }
  if quiz.IsCompleted {
    return nil, apperr.Conflict("quiz_completed", "dynamic quiz already completed")
  }
  if quiz.QuestionsAnswered >= quiz.TotalQuestions {
    return nil, apperr.Conflict("quiz_finished", "all questions in this quiz have been answered")
  }

  // Only questions this session actually served are answerable; the
  // session is the source of truth, not the submitted ID.
  served, sErr := usedQuestionIDs(quiz)
  if sErr != nil {
    return nil, sErr
  }
  inSession := false
  for _, id := range served {
    if id == questionID {
      inSession = true
      break
    }
  }
  if !inSession {
    return nil, apperr.Validation("question_not_served", "question was not served in this quiz", map[string]string{"question_id": "not part of this quiz"})
  }

  questions, qErr := s.questionRepo.GetByIDs(ctx, nil, []uuid.UUID{questionID})
  if qErr != nil {
    return nil, fmt.Errorf("failed to load question: %w", qErr)
  }
  if len(questions) == 0 {
    return nil, apperr.NotFound("question_not_found", "question not found")
  }
  question := questions[0]

  correct := answer == question.CorrectAnswer
  earned := 0
  if correct {
    earned = question.Points
  }

  now := time.Now()
  var result *AnswerResult
  txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    perf, pErr := s.performanceRepo.GetByStudentAndLesson(ctx, tx, userID, quiz.LessonID)
    if pErr != nil && !errors.Is(pErr, gorm.ErrRecordNotFound) {
      return fmt.Errorf("failed to load performance: %w", pErr)
    }
    if perf == nil {
      perf = &types.StudentPerformance{
        ID:                    uuid.New(),
        StudentID:             userID,
        LessonID:              quiz.LessonID,
        CourseID:              quiz.CourseID,
        RecommendedDifficulty: quiz.StartingDifficulty,
        FirstAttempt:          now,
      }
      if _, cErr := s.performanceRepo.Create(ctx, tx, []*types.StudentPerformance{perf}); cErr != nil {
        return fmt.Errorf("failed to create performance: %w", cErr)
      }
    }

    switch question.DifficultyLevel {
    case types.QuestionDifficultyEasy:
      perf.EasyAttempts++
      if correct {
        perf.EasyCorrect++
      }
    case types.QuestionDifficultyMedium:
      perf.MediumAttempts++
      if correct {
        perf.MediumCorrect++
      }
    case types.QuestionDifficultyHard:
      perf.HardAttempts++
      if correct {
        perf.HardCorrect++
      }
    }

    if correct {
      perf.CurrentStreak++
      if perf.CurrentStreak > perf.BestStreak {
        perf.BestStreak = perf.CurrentStreak
      }
      perf.ConsecutiveCorrect++
      perf.ConsecutiveIncorrect = 0
    } else {
      perf.CurrentStreak = 0
      perf.ConsecutiveIncorrect++
      perf.ConsecutiveCorrect = 0
    }

    changed := false
    newDifficulty := perf.RecommendedDifficulty
    if perf.ConsecutiveCorrect >= s.cfg.PromoteStreak {
      next := promote(perf.RecommendedDifficulty)
      if next != perf.RecommendedDifficulty {
        newDifficulty = next
        changed = true
      }
      perf.ConsecutiveCorrect = 0
      perf.ConsecutiveIncorrect = 0
    } else if perf.ConsecutiveIncorrect >= s.cfg.DemoteStreak {
      next := demote(perf.RecommendedDifficulty)
      if next != perf.RecommendedDifficulty {
        newDifficulty = next
        changed = true
      }
      perf.ConsecutiveCorrect = 0
      perf.ConsecutiveIncorrect = 0
    }
    perf.RecommendedDifficulty = newDifficulty
    perf.LastUpdated = now
    if upErr := s.performanceRepo.Update(ctx, tx, perf); upErr != nil {
      return fmt.Errorf("failed to update performance: %w", upErr)
    }

    attempt := &types.QuestionAttempt{
      ID:                 uuid.New(),
      DynamicQuizID:      quiz.ID,
      QuestionID:         question.ID,
      StudentID:          userID,
      QuestionOrder:      quiz.QuestionsAnswered + 1,
      SelectedAnswer:     answer,
      IsCorrect:          correct,
      TimeTakenSeconds:   timeTakenSeconds,
      PointsEarned:       earned,
      QuestionDifficulty: question.DifficultyLevel,
      WasAdaptiveChange:  changed,
      StartedAt:          now,
      AnsweredAt:         &now,
    }
    if _, aErr := s.attemptRepo.Create(ctx, tx, []*types.QuestionAttempt{attempt}); aErr != nil {
      return fmt.Errorf("failed to record question attempt: %w", aErr)
    }

    if ruErr := s.questionRepo.RecordUsage(ctx, tx, question.ID, correct); ruErr != nil {
      return fmt.Errorf("failed to record question usage: %w", ruErr)
    }

    quiz.QuestionsAnswered++
    if changed {
      quiz.AdaptiveChanges++
    }
    if quErr := s.dynamicQuizRepo.Update(ctx, tx, quiz); quErr != nil {
      return fmt.Errorf("failed to update dynamic quiz: %w", quErr)
    }

    result = &AnswerResult{
      IsCorrect:         correct,
      CorrectAnswer:     question.CorrectAnswer,
      Explanation:       question.Explanation,
      PointsEarned:      earned,
      CurrentStreak:     perf.CurrentStreak,
      DifficultyChanged: changed,
      QuizProgress:      float64(quiz.QuestionsAnswered) / float64(quiz.TotalQuestions) * 100,
    }
    if changed {
      result.NewDifficulty = newDifficulty
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }
  return result, nil
}

func (s *adaptiveQuizService) CompleteQuiz(ctx context.Context, userID, quizID uuid.UUID) (*DynamicQuizSummary, error) {
  quiz, err := s.loadSession(ctx, nil, userID, quizID)
  if err != nil {
    return nil, err
  }
  if quiz.IsCompleted {
    return nil, apperr.Conflict("quiz_completed", "dynamic quiz already completed")
  }

  attempts, aErr := s.attemptRepo.GetByDynamicQuizIDs(ctx, nil, []uuid.UUID{quiz.ID})
  if aErr != nil {
    return nil, fmt.Errorf("failed to load question attempts: %w", aErr)
  }
  correctCount := 0
  for _, a := range attempts {
    if a.IsCorrect {
      correctCount++
    }
  }
  finalScore := 0.0
  if len(attempts) > 0 {
    finalScore = float64(correctCount) / float64(len(attempts)) * 100
  }

  ending := quiz.StartingDifficulty
  perf, pErr := s.performanceRepo.GetByStudentAndLesson(ctx, nil, userID, quiz.LessonID)
  if pErr != nil && !errors.Is(pErr, gorm.ErrRecordNotFound) {
    return nil, fmt.Errorf("failed to load performance: %w", pErr)
  }
  if perf != nil && perf.RecommendedDifficulty != "" {
    ending = perf.RecommendedDifficulty
  }

  now := time.Now()
  quiz.IsCompleted = true
  quiz.FinalScore = finalScore
  quiz.EndingDifficulty = ending
  quiz.CompletedAt = &now
  if uErr := s.dynamicQuizRepo.Update(ctx, nil, quiz); uErr != nil {
    return nil, fmt.Errorf("failed to complete dynamic quiz: %w", uErr)
  }

  return &DynamicQuizSummary{
    QuizID:             quiz.ID,
    FinalScore:         finalScore,
    QuestionsAnswered:  len(attempts),
    CorrectAnswers:     correctCount,
    StartingDifficulty: quiz.StartingDifficulty,
    EndingDifficulty:   ending,
    AdaptiveChanges:    quiz.AdaptiveChanges,
  }, nil
}
