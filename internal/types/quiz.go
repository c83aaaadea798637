package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

type Quiz struct {
  ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CourseID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
  Course             *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  LessonID           *uuid.UUID     `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
  Lesson             *Lesson        `gorm:"constraint:OnDelete:SET NULL;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
  Title              string         `gorm:"column:title;not null" json:"title"`
  Description        string         `gorm:"column:description" json:"description"`
  Instructions       string         `gorm:"column:instructions" json:"instructions,omitempty"`
  Questions          datatypes.JSON `gorm:"type:jsonb;column:questions;not null" json:"questions"`
  TotalPoints        int            `gorm:"column:total_points;not null" json:"total_points"`
  PassingScore       int            `gorm:"column:passing_score;not null;default:70" json:"passing_score"`
  TimeLimitMinutes   int            `gorm:"column:time_limit_minutes;not null;default:30" json:"time_limit_minutes"`
  AttemptsAllowed    int            `gorm:"column:attempts_allowed;not null;default:3" json:"attempts_allowed"`
  RandomizeQuestions bool           `gorm:"column:randomize_questions;not null;default:false" json:"randomize_questions"`
  ShowCorrectAnswers bool           `gorm:"column:show_correct_answers;not null;default:true" json:"show_correct_answers"`
  IsMandatory        bool           `gorm:"column:is_mandatory;not null;default:false" json:"is_mandatory"`
  CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Quiz) TableName() string { return "quiz" }

// QuizQuestionDoc is the JSON contract for entries in Quiz.Questions.
// Not a DB model.
type QuizQuestionDoc struct {
  Question      string   `json:"question"`
  Options       []string `json:"options"`
  CorrectAnswer string   `json:"correct_answer"`
  Explanation   string   `json:"explanation,omitempty"`
  Points        int      `json:"points"`
  Difficulty    string   `json:"difficulty,omitempty"`
  Topic         string   `json:"topic,omitempty"`
}

// QuizAttempt rows are append-only; nothing in the codebase updates or
// deletes them after creation.
type QuizAttempt struct {
  ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  StudentID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempt_student_quiz" json:"student_id"`
  Student          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
  QuizID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempt_student_quiz" json:"quiz_id"`
  Quiz             *Quiz          `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
  AttemptNumber    int            `gorm:"column:attempt_number;not null;default:1" json:"attempt_number"`
  Answers          datatypes.JSON `gorm:"type:jsonb;column:answers;not null" json:"answers"`
  Score            float64        `gorm:"column:score;not null" json:"score"`
  MaxScore         float64        `gorm:"column:max_score;not null" json:"max_score"`
  Percentage       float64        `gorm:"column:percentage;not null;default:0" json:"percentage"`
  IsPassed         bool           `gorm:"column:is_passed;not null;default:false" json:"is_passed"`
  TimeTakenMinutes float64        `gorm:"column:time_taken_minutes" json:"time_taken_minutes"`
  AttemptedAt      time.Time      `gorm:"column:attempted_at;not null;default:now()" json:"attempted_at"`
  SubmittedAt      *time.Time     `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
  CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }
