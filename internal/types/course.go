package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

const (
  DifficultyBeginner     = "beginner"
  DifficultyIntermediate = "intermediate"
  DifficultyAdvanced     = "advanced"
)

type Course struct {
  ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Title            string         `gorm:"column:title;not null;index" json:"title"`
  Description      string         `gorm:"column:description" json:"description"`
  ShortDescription string         `gorm:"column:short_description" json:"short_description"`
  Instructor       string         `gorm:"column:instructor;not null" json:"instructor"`
  DifficultyLevel  string         `gorm:"column:difficulty_level;not null;index" json:"difficulty_level"`
  Category         string         `gorm:"column:category;index" json:"category"`
  Tags             datatypes.JSON `gorm:"type:jsonb;column:tags" json:"tags,omitempty"`
  LearningGoals    datatypes.JSON `gorm:"type:jsonb;column:learning_goals" json:"learning_goals,omitempty"`
  ThumbnailURL     string         `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
  Price            float64        `gorm:"column:price;not null;default:0" json:"price"`
  IsFree           bool           `gorm:"column:is_free;not null;default:true" json:"is_free"`
  Rating           float64        `gorm:"column:rating;not null;default:0" json:"rating"`
  RatingCount      int            `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
  EnrollmentCount  int            `gorm:"column:enrollment_count;not null;default:0" json:"enrollment_count"`
  IsActive         bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
  IsFeatured       bool           `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
  DurationHours    float64        `gorm:"column:duration_hours" json:"duration_hours"`
  Language         string         `gorm:"column:language;default:'English'" json:"language"`
  CreatedBy        *uuid.UUID     `gorm:"type:uuid;index" json:"created_by,omitempty"`
  Creator          *User          `gorm:"constraint:OnDelete:SET NULL;foreignKey:CreatedBy;references:ID" json:"creator,omitempty"`
  CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

type CourseReview struct {
  ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CourseID   uuid.UUID `gorm:"type:uuid;not null;index:idx_review_course_student,unique" json:"course_id"`
  Course     *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
  StudentID  uuid.UUID `gorm:"type:uuid;not null;index:idx_review_course_student,unique" json:"student_id"`
  Student    *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
  Rating     int       `gorm:"column:rating;not null" json:"rating"`
  ReviewText string    `gorm:"column:review_text" json:"review_text,omitempty"`
  CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CourseReview) TableName() string { return "course_review" }
