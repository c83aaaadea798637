package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  RoleStudent    = "student"
  RoleInstructor = "instructor"
  RoleAdmin      = "admin"
)

type User struct {
  ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email       string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password    string         `gorm:"not null;column:password" json:"-"`
  FullName    string         `gorm:"not null;column:full_name" json:"full_name"`
  Role        string         `gorm:"not null;default:'student';column:role;index" json:"role"`
  IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
  Bio         string         `gorm:"column:bio" json:"bio,omitempty"`
  Preferences datatypes.JSON `gorm:"type:jsonb;column:preferences" json:"preferences,omitempty"`
  CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
