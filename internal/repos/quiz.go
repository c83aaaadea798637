package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type QuizRepo interface {
  Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]*types.Quiz, error)
  GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Quiz, error)
  Update(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error
  DeleteByIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) error
}

type quizRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
  repoLog := baseLog.With("repo", "QuizRepo")
  return &quizRepo{db: db, log: repoLog}
}

func (r *quizRepo) Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(quizzes) == 0 {
    return []*types.Quiz{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&quizzes).Error; err != nil {
    return nil, err
  }
  return quizzes, nil
}

func (r *quizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Quiz
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

func (r *quizRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Quiz
  if len(courseIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("course_id IN ?", courseIDs).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *quizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  return transaction.WithContext(ctx).Save(quiz).Error
}

func (r *quizRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(quizIDs) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id IN ?", quizIDs).
    Delete(&types.Quiz{}).Error
}

type QuizAttemptRepo interface {
  Create(ctx context.Context, tx *gorm.DB, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error)
  CountByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID, quizID uuid.UUID) (int64, error)
  GetByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID, quizID uuid.UUID) ([]*types.QuizAttempt, error)
  GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.QuizAttempt, error)
}

type quizAttemptRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
  repoLog := baseLog.With("repo", "QuizAttemptRepo")
  return &quizAttemptRepo{db: db, log: repoLog}
}

func (r *quizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(attempts) == 0 {
    return []*types.QuizAttempt{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&attempts).Error; err != nil {
    return nil, err
  }
  return attempts, nil
}

func (r *quizAttemptRepo) CountByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID, quizID uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.QuizAttempt{}).
    Where("student_id = ? AND quiz_id = ?", studentID, quizID).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *quizAttemptRepo) GetByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.QuizAttempt
  if err := transaction.WithContext(ctx).
    Where("student_id = ? AND quiz_id = ?", studentID, quizID).
    Order("attempt_number ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *quizAttemptRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.QuizAttempt, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.QuizAttempt
  if len(studentIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("student_id IN ?", studentIDs).
    Order("attempted_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
