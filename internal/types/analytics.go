package types

import (
  "time"

  "github.com/google/uuid"
)

// StudentAnalytics is a per-(student, course) rollup updated as a side
// effect of quiz attempts and progress updates. Derived data only;
// Enrollment stays the source of truth for progress.
type StudentAnalytics struct {
  ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  StudentID          uuid.UUID `gorm:"type:uuid;not null;index:idx_analytics_student_course,unique" json:"student_id"`
  Student            *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
  CourseID           uuid.UUID `gorm:"type:uuid;not null;index:idx_analytics_student_course,unique" json:"course_id"`
  Course             *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  WatchTimeMinutes   float64   `gorm:"column:watch_time_minutes;not null;default:0" json:"watch_time_minutes"`
  LessonsCompleted   int       `gorm:"column:lessons_completed;not null;default:0" json:"lessons_completed"`
  QuizzesAttempted   int       `gorm:"column:quizzes_attempted;not null;default:0" json:"quizzes_attempted"`
  QuizzesPassed      int       `gorm:"column:quizzes_passed;not null;default:0" json:"quizzes_passed"`
  AvgQuizScore       float64   `gorm:"column:avg_quiz_score;not null;default:0" json:"avg_quiz_score"`
  BestQuizScore      float64   `gorm:"column:best_quiz_score;not null;default:0" json:"best_quiz_score"`
  FirstActivity      time.Time `gorm:"column:first_activity;not null;default:now()" json:"first_activity"`
  LastActivity       time.Time `gorm:"column:last_activity;not null;default:now()" json:"last_activity"`
}

func (StudentAnalytics) TableName() string { return "student_analytics" }
