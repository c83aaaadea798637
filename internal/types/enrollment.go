package types

import (
  "time"

  "github.com/google/uuid"
)

const (
  EnrollmentStatusActive    = "active"
  EnrollmentStatusCompleted = "completed"
  EnrollmentStatusDropped   = "dropped"
)

// Enrollment is the authoritative record of a student's relationship to a
// course. The unique (student_id, course_id) index is the hard backstop
// for the at-most-one invariant; the service layer maps a uniqueness
// violation on insert to an AlreadyEnrolled conflict.
type Enrollment struct {
  ID                 uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  StudentID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_enrollment_student_course,unique" json:"student_id"`
  Student            *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
  CourseID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_enrollment_student_course,unique" json:"course_id"`
  Course             *Course    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  Status             string     `gorm:"column:status;not null;default:'active';index" json:"status"`
  ProgressPercentage float64    `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
  IsCompleted        bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
  TotalWatchTime     int        `gorm:"column:total_watch_time;not null;default:0" json:"total_watch_time"`
  EnrolledAt         time.Time  `gorm:"column:enrolled_at;not null;default:now()" json:"enrolled_at"`
  CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
  LastAccessed       *time.Time `gorm:"column:last_accessed" json:"last_accessed,omitempty"`
}

func (Enrollment) TableName() string { return "enrollment" }

type LessonProgress struct {
  ID                  uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  StudentID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_progress_student_lesson,unique" json:"student_id"`
  Student             *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
  LessonID            uuid.UUID  `gorm:"type:uuid;not null;index:idx_progress_student_lesson,unique" json:"lesson_id"`
  Lesson              *Lesson    `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
  CourseID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
  IsCompleted         bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
  WatchTimeSeconds    int        `gorm:"column:watch_time_seconds;not null;default:0" json:"watch_time_seconds"`
  LastPositionSeconds int        `gorm:"column:last_position_seconds;not null;default:0" json:"last_position_seconds"`
  CompletionPercent   float64    `gorm:"column:completion_percent;not null;default:0" json:"completion_percent"`
  FirstAccessed       time.Time  `gorm:"column:first_accessed;not null;default:now()" json:"first_accessed"`
  LastAccessed        time.Time  `gorm:"column:last_accessed;not null;default:now()" json:"last_accessed"`
  CompletedAt         *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
