package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type QuestionBankRepo interface {
  Create(ctx context.Context, tx *gorm.DB, questions []*types.QuestionBank) ([]*types.QuestionBank, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.QuestionBank, error)
  PickRandom(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, difficulty string, excludeIDs []uuid.UUID, limit int) ([]*types.QuestionBank, error)
  RecordUsage(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, correct bool) error
  CountByLessonAndDifficulty(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, difficulty string) (int64, error)
  ListByLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) ([]*types.QuestionBank, error)
  Update(ctx context.Context, tx *gorm.DB, question *types.QuestionBank) error
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error
}

type questionBankRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuestionBankRepo(db *gorm.DB, baseLog *logger.Logger) QuestionBankRepo {
  repoLog := baseLog.With("repo", "QuestionBankRepo")
  return &questionBankRepo{db: db, log: repoLog}
}

func (r *questionBankRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.QuestionBank) ([]*types.QuestionBank, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(questions) == 0 {
    return []*types.QuestionBank{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&questions).Error; err != nil {
    return nil, err
  }
  return questions, nil
}

func (r *questionBankRepo) GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.QuestionBank, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.QuestionBank
  if len(questionIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", questionIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// PickRandom selects active questions at the given difficulty, skipping ones
// already served in the session. RANDOM() works on both postgres and sqlite.
func (r *questionBankRepo) PickRandom(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, difficulty string, excludeIDs []uuid.UUID, limit int) ([]*types.QuestionBank, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  q := transaction.WithContext(ctx).
    Where("lesson_id = ? AND difficulty_level = ? AND is_active = ?", lessonID, difficulty, true)
  if len(excludeIDs) > 0 {
    q = q.Where("id NOT IN ?", excludeIDs)
  }
  if limit > 0 {
    q = q.Limit(limit)
  }

  var results []*types.QuestionBank
  if err := q.Order("RANDOM()").Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *questionBankRepo) RecordUsage(ctx context.Context, tx *gorm.DB, questionID uuid.UUID, correct bool) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  updates := map[string]interface{}{
    "times_used": gorm.Expr("times_used + 1"),
  }
  if correct {
    updates["times_correct"] = gorm.Expr("times_correct + 1")
  }
  return transaction.WithContext(ctx).
    Model(&types.QuestionBank{}).
    Where("id = ?", questionID).
    UpdateColumns(updates).Error
}

func (r *questionBankRepo) CountByLessonAndDifficulty(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, difficulty string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.QuestionBank{}).
    Where("lesson_id = ? AND difficulty_level = ? AND is_active = ?", lessonID, difficulty, true).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *questionBankRepo) ListByLesson(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) ([]*types.QuestionBank, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.QuestionBank
  if err := transaction.WithContext(ctx).
    Where("lesson_id = ? AND is_active = ?", lessonID, true).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *questionBankRepo) Update(ctx context.Context, tx *gorm.DB, question *types.QuestionBank) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(question).Error
}

func (r *questionBankRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(questionIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.QuestionBank{}).
    Where("id IN ?", questionIDs).
    UpdateColumn("is_active", false).Error
}

type StudentPerformanceRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.StudentPerformance) ([]*types.StudentPerformance, error)
  GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.StudentPerformance, error)
  Update(ctx context.Context, tx *gorm.DB, record *types.StudentPerformance) error
}

type studentPerformanceRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStudentPerformanceRepo(db *gorm.DB, baseLog *logger.Logger) StudentPerformanceRepo {
  repoLog := baseLog.With("repo", "StudentPerformanceRepo")
  return &studentPerformanceRepo{db: db, log: repoLog}
}

func (r *studentPerformanceRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.StudentPerformance) ([]*types.StudentPerformance, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(records) == 0 {
    return []*types.StudentPerformance{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }
  return records, nil
}

func (r *studentPerformanceRepo) GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.StudentPerformance, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.StudentPerformance
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
    First(&result).Error; err != nil {
    return nil, err
  }
  return &result, nil
}

func (r *studentPerformanceRepo) Update(ctx context.Context, tx *gorm.DB, record *types.StudentPerformance) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(record).Error
}

type DynamicQuizRepo interface {
  Create(ctx context.Context, tx *gorm.DB, quizzes []*types.DynamicQuiz) ([]*types.DynamicQuiz, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]*types.DynamicQuiz, error)
  Update(ctx context.Context, tx *gorm.DB, quiz *types.DynamicQuiz) error
}

type dynamicQuizRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDynamicQuizRepo(db *gorm.DB, baseLog *logger.Logger) DynamicQuizRepo {
  repoLog := baseLog.With("repo", "DynamicQuizRepo")
  return &dynamicQuizRepo{db: db, log: repoLog}
}

func (r *dynamicQuizRepo) Create(ctx context.Context, tx *gorm.DB, quizzes []*types.DynamicQuiz) ([]*types.DynamicQuiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(quizzes) == 0 {
    return []*types.DynamicQuiz{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&quizzes).Error; err != nil {
    return nil, err
  }
  return quizzes, nil
}

func (r *dynamicQuizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]*types.DynamicQuiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.DynamicQuiz
  if len(quizIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", quizIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *dynamicQuizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *types.DynamicQuiz) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(quiz).Error
}

type QuestionAttemptRepo interface {
  Create(ctx context.Context, tx *gorm.DB, attempts []*types.QuestionAttempt) ([]*types.QuestionAttempt, error)
  GetByDynamicQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]*types.QuestionAttempt, error)
}

type questionAttemptRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuestionAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuestionAttemptRepo {
  repoLog := baseLog.With("repo", "QuestionAttemptRepo")
  return &questionAttemptRepo{db: db, log: repoLog}
}

func (r *questionAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempts []*types.QuestionAttempt) ([]*types.QuestionAttempt, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(attempts) == 0 {
    return []*types.QuestionAttempt{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&attempts).Error; err != nil {
    return nil, err
  }
  return attempts, nil
}

func (r *questionAttemptRepo) GetByDynamicQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]*types.QuestionAttempt, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.QuestionAttempt
  if len(quizIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("dynamic_quiz_id IN ?", quizIDs).
    Order("question_order ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
