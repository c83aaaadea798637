package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  QuestionDifficultyEasy   = "easy"
  QuestionDifficultyMedium = "medium"
  QuestionDifficultyHard   = "hard"
)

const (
  QuestionTypeMultipleChoice = "multiple_choice"
  QuestionTypeTrueFalse      = "true_false"
  QuestionTypeShortAnswer    = "short_answer"
)

// QuestionBank holds the pool the adaptive engine draws from. Questions
// can be lesson-scoped or course-wide (nil LessonID).
type QuestionBank struct {
  ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CourseID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_question_course_difficulty" json:"course_id"`
  Course           *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  LessonID         *uuid.UUID     `gorm:"type:uuid;index:idx_question_lesson_difficulty" json:"lesson_id,omitempty"`
  Lesson           *Lesson        `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
  QuestionText     string         `gorm:"column:question_text;not null" json:"question_text"`
  QuestionType     string         `gorm:"column:question_type;not null" json:"question_type"`
  Options          datatypes.JSON `gorm:"type:jsonb;column:options" json:"options,omitempty"`
  CorrectAnswer    string         `gorm:"column:correct_answer;not null" json:"correct_answer"`
  Explanation      string         `gorm:"column:explanation" json:"explanation,omitempty"`
  DifficultyLevel  string         `gorm:"column:difficulty_level;not null;index:idx_question_course_difficulty;index:idx_question_lesson_difficulty" json:"difficulty_level"`
  TopicTags        datatypes.JSON `gorm:"type:jsonb;column:topic_tags" json:"topic_tags,omitempty"`
  Points           int            `gorm:"column:points;not null;default:1" json:"points"`
  EstimatedTimeS   int            `gorm:"column:estimated_time_s;not null;default:60" json:"estimated_time_s"`
  TimesUsed        int            `gorm:"column:times_used;not null;default:0" json:"times_used"`
  TimesCorrect     int            `gorm:"column:times_correct;not null;default:0" json:"times_correct"`
  IsActive         bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
  CreatedBy        *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
  CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestionBank) TableName() string { return "question_bank" }

// StudentPerformance carries the per-(student, lesson) adaptive state,
// including the consecutive-answer counters the hysteresis runs on.
type StudentPerformance struct {
  ID                    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  StudentID             uuid.UUID `gorm:"type:uuid;not null;index:idx_performance_student_lesson,unique" json:"student_id"`
  Student               *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
  LessonID              uuid.UUID `gorm:"type:uuid;not null;index:idx_performance_student_lesson,unique" json:"lesson_id"`
  Lesson                *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
  CourseID              uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
  EasyAttempts          int       `gorm:"column:easy_attempts;not null;default:0" json:"easy_attempts"`
  EasyCorrect           int       `gorm:"column:easy_correct;not null;default:0" json:"easy_correct"`
  MediumAttempts        int       `gorm:"column:medium_attempts;not null;default:0" json:"medium_attempts"`
  MediumCorrect         int       `gorm:"column:medium_correct;not null;default:0" json:"medium_correct"`
  HardAttempts          int       `gorm:"column:hard_attempts;not null;default:0" json:"hard_attempts"`
  HardCorrect           int       `gorm:"column:hard_correct;not null;default:0" json:"hard_correct"`
  CurrentStreak         int       `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
  BestStreak            int       `gorm:"column:best_streak;not null;default:0" json:"best_streak"`
  ConsecutiveCorrect    int       `gorm:"column:consecutive_correct;not null;default:0" json:"consecutive_correct"`
  ConsecutiveIncorrect  int       `gorm:"column:consecutive_incorrect;not null;default:0" json:"consecutive_incorrect"`
  RecommendedDifficulty string    `gorm:"column:recommended_difficulty;not null;default:'easy'" json:"recommended_difficulty"`
  FirstAttempt          time.Time `gorm:"column:first_attempt;not null;default:now()" json:"first_attempt"`
  LastUpdated           time.Time `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`
}

func (StudentPerformance) TableName() string { return "student_performance" }

func (p *StudentPerformance) OverallAccuracy() float64 {
  attempts := p.EasyAttempts + p.MediumAttempts + p.HardAttempts
  if attempts == 0 {
    return 0
  }
  correct := p.EasyCorrect + p.MediumCorrect + p.HardCorrect
  return float64(correct) / float64(attempts) * 100
}

// DynamicQuiz is one adaptive quiz session for a student.
type DynamicQuiz struct {
  ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  StudentID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
  Student            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
  CourseID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
  LessonID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"lesson_id"`
  TotalQuestions     int            `gorm:"column:total_questions;not null" json:"total_questions"`
  TimeLimitMinutes   int            `gorm:"column:time_limit_minutes;not null;default:15" json:"time_limit_minutes"`
  SelectedQuestions  datatypes.JSON `gorm:"type:jsonb;column:selected_questions" json:"selected_questions"`
  CurrentIndex       int            `gorm:"column:current_index;not null;default:0" json:"current_index"`
  IsCompleted        bool           `gorm:"column:is_completed;not null;default:false;index" json:"is_completed"`
  FinalScore         float64        `gorm:"column:final_score;not null;default:0" json:"final_score"`
  QuestionsAnswered  int            `gorm:"column:questions_answered;not null;default:0" json:"questions_answered"`
  StartingDifficulty string         `gorm:"column:starting_difficulty;not null" json:"starting_difficulty"`
  EndingDifficulty   string         `gorm:"column:ending_difficulty" json:"ending_difficulty,omitempty"`
  AdaptiveChanges    int            `gorm:"column:adaptive_changes;not null;default:0" json:"adaptive_changes"`
  CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
  StartedAt          *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
  CompletedAt        *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (DynamicQuiz) TableName() string { return "dynamic_quiz" }

type QuestionAttempt struct {
  ID                 uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  DynamicQuizID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"dynamic_quiz_id"`
  DynamicQuiz        *DynamicQuiz  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DynamicQuizID;references:ID" json:"dynamic_quiz,omitempty"`
  QuestionID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"question_id"`
  Question           *QuestionBank `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
  StudentID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"student_id"`
  QuestionOrder      int           `gorm:"column:question_order;not null" json:"question_order"`
  SelectedAnswer     string        `gorm:"column:selected_answer" json:"selected_answer,omitempty"`
  IsCorrect          bool          `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
  TimeTakenSeconds   float64       `gorm:"column:time_taken_seconds" json:"time_taken_seconds"`
  PointsEarned       int           `gorm:"column:points_earned;not null;default:0" json:"points_earned"`
  QuestionDifficulty string        `gorm:"column:question_difficulty;not null" json:"question_difficulty"`
  WasAdaptiveChange  bool          `gorm:"column:was_adaptive_change;not null;default:false" json:"was_adaptive_change"`
  StartedAt          time.Time     `gorm:"column:started_at;not null;default:now()" json:"started_at"`
  AnsweredAt         *time.Time    `gorm:"column:answered_at" json:"answered_at,omitempty"`
}

func (QuestionAttempt) TableName() string { return "question_attempt" }
