package services

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type QuestionBankService interface {
  CreateQuestion(ctx context.Context, createdBy uuid.UUID, question *types.QuestionBank) (*types.QuestionBank, error)
  ListQuestions(ctx context.Context, lessonID uuid.UUID) ([]*types.QuestionBank, error)
  UpdateQuestion(ctx context.Context, question *types.QuestionBank) (*types.QuestionBank, error)
  DeleteQuestion(ctx context.Context, questionID uuid.UUID) error
}

type questionBankService struct {
  db           *gorm.DB
  log          *logger.Logger
  questionRepo repos.QuestionBankRepo
  lessonRepo   repos.LessonRepo
}

func NewQuestionBankService(
  db *gorm.DB,
  log *logger.Logger,
  questionRepo repos.QuestionBankRepo,
  lessonRepo repos.LessonRepo,
) QuestionBankService {
  serviceLog := log.With("service", "QuestionBankService")
  return &questionBankService{
    db:           db,
    log:          serviceLog,
    questionRepo: questionRepo,
    lessonRepo:   lessonRepo,
  }
}

func validDifficulty(difficulty string) bool {
  for _, d := range difficultyOrder {
    if d == difficulty {
      return true
    }
  }
  return false
}

// validateQuestion enforces the same answerability invariant as quiz
// creation: when options exist, the correct answer must be one of them.
func validateQuestion(q *types.QuestionBank) error {
  if !validDifficulty(q.DifficultyLevel) {
    return apperr.Validation("invalid_question", "difficulty_level must be easy, medium or hard", map[string]string{"difficulty_level": "unknown tier"})
  }
  if len(q.Options) > 0 {
    var options []string
    if err := json.Unmarshal(q.Options, &options); err != nil {
      return apperr.Validation("invalid_question", "options must be a JSON array of strings", map[string]string{"options": "malformed"})
    }
    if len(options) > 0 {
      found := false
      for _, opt := range options {
        if opt == q.CorrectAnswer {
          found = true
          break
        }
      }
      if !found {
        return apperr.Validation("invalid_question", "correct_answer must be one of the options", map[string]string{"correct_answer": "not in options"})
      }
    }
  }
  return nil
}

func (s *questionBankService) CreateQuestion(ctx context.Context, createdBy uuid.UUID, question *types.QuestionBank) (*types.QuestionBank, error) {
  if question.LessonID == nil {
    return nil, apperr.Validation("invalid_question", "lesson_id is required", map[string]string{"lesson_id": "required"})
  }
  lessons, lErr := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{*question.LessonID})
  if lErr != nil {
    return nil, fmt.Errorf("failed to load lesson: %w", lErr)
  }
  if len(lessons) == 0 {
    return nil, apperr.NotFound("lesson_not_found", "lesson not found")
  }
  question.CourseID = lessons[0].CourseID

  if question.QuestionType == "" {
    question.QuestionType = "multiple_choice"
  }
  if question.Points <= 0 {
    question.Points = 1
  }
  if question.EstimatedTimeS <= 0 {
    question.EstimatedTimeS = 60
  }
  if vErr := validateQuestion(question); vErr != nil {
    return nil, vErr
  }

  question.ID = uuid.New()
  question.CreatedBy = &createdBy
  question.IsActive = true
  question.TimesUsed = 0
  question.TimesCorrect = 0
  if _, err := s.questionRepo.Create(ctx, nil, []*types.QuestionBank{question}); err != nil {
    return nil, fmt.Errorf("failed to create question: %w", err)
  }
  return question, nil
}

func (s *questionBankService) ListQuestions(ctx context.Context, lessonID uuid.UUID) ([]*types.QuestionBank, error) {
  questions, err := s.questionRepo.ListByLesson(ctx, nil, lessonID)
  if err != nil {
    return nil, fmt.Errorf("failed to list questions: %w", err)
  }
  if questions == nil {
    questions = []*types.QuestionBank{}
  }
  return questions, nil
}

func (s *questionBankService) loadQuestion(ctx context.Context, questionID uuid.UUID) (*types.QuestionBank, error) {
  questions, err := s.questionRepo.GetByIDs(ctx, nil, []uuid.UUID{questionID})
  if err != nil {
    return nil, fmt.Errorf("failed to load question: %w", err)
  }
  if len(questions) == 0 || !questions[0].IsActive {
    return nil, apperr.NotFound("question_not_found", "question not found")
  }
  return questions[0], nil
}

func (s *questionBankService) UpdateQuestion(ctx context.Context, question *types.QuestionBank) (*types.QuestionBank, error) {
  existing, err := s.loadQuestion(ctx, question.ID)
  if err != nil {
    return nil, err
  }

  if question.QuestionText != "" {
    existing.QuestionText = question.QuestionText
  }
  if question.QuestionType != "" {
    existing.QuestionType = question.QuestionType
  }
  if len(question.Options) > 0 {
    existing.Options = question.Options
  }
  if question.CorrectAnswer != "" {
    existing.CorrectAnswer = question.CorrectAnswer
  }
  if question.Explanation != "" {
    existing.Explanation = question.Explanation
  }
  if question.DifficultyLevel != "" {
    existing.DifficultyLevel = question.DifficultyLevel
  }
  if len(question.TopicTags) > 0 {
    existing.TopicTags = question.TopicTags
  }
  if question.Points > 0 {
    existing.Points = question.Points
  }
  if question.EstimatedTimeS > 0 {
    existing.EstimatedTimeS = question.EstimatedTimeS
  }
  if vErr := validateQuestion(existing); vErr != nil {
    return nil, vErr
  }

  if uErr := s.questionRepo.Update(ctx, nil, existing); uErr != nil {
    return nil, fmt.Errorf("failed to update question: %w", uErr)
  }
  return existing, nil
}

func (s *questionBankService) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
  if _, err := s.loadQuestion(ctx, questionID); err != nil {
    return err
  }
  if dErr := s.questionRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{questionID}); dErr != nil {
    return fmt.Errorf("failed to delete question: %w", dErr)
  }
  return nil
}
