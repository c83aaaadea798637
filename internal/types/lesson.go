package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  LessonTypeVideo = "video"
  LessonTypeText  = "text"
  LessonTypeQuiz  = "quiz"
)

// Order is unique per course (backed by the composite index); contiguity
// is not enforced anywhere and admin deletes can leave gaps.
type Lesson struct {
  ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CourseID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_lesson_course_order,unique" json:"course_id"`
  Course          *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  Order           int            `gorm:"column:lesson_order;not null;index:idx_lesson_course_order,unique" json:"order"`
  Title           string         `gorm:"column:title;not null" json:"title"`
  Description     string         `gorm:"column:description" json:"description"`
  LessonType      string         `gorm:"column:lesson_type;not null;default:'video'" json:"lesson_type"`
  VideoURL        string         `gorm:"column:video_url" json:"video_url,omitempty"`
  VideoDurationS  int            `gorm:"column:video_duration_s" json:"video_duration_s,omitempty"`
  DurationMinutes float64        `gorm:"column:duration_minutes" json:"duration_minutes"`
  Content         string         `gorm:"column:content" json:"content,omitempty"`
  Resources       datatypes.JSON `gorm:"type:jsonb;column:resources" json:"resources,omitempty"`
  IsPreview       bool           `gorm:"column:is_preview;not null;default:false" json:"is_preview"`
  Points          int            `gorm:"column:points;not null;default:0" json:"points"`
  CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }
