package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/normalization"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type UserService interface {
  GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
  UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, bio string, preferences []byte) (*types.User, error)
}

type userService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
  serviceLog := log.With("service", "UserService")
  return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
  users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    return nil, fmt.Errorf("failed to load user: %w", err)
  }
  if len(users) == 0 {
    return nil, apperr.NotFound("user_not_found", "user not found")
  }
  return users[0], nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, bio string, preferences []byte) (*types.User, error) {
  user, err := us.GetByID(ctx, userID)
  if err != nil {
    return nil, err
  }
  if fullName != "" {
    user.FullName = normalization.TrimInputString(fullName)
  }
  if bio != "" {
    user.Bio = normalization.TrimInputString(bio)
  }
  if len(preferences) > 0 {
    user.Preferences = datatypes.JSON(preferences)
  }
  if err := us.userRepo.Update(ctx, nil, user); err != nil {
    return nil, fmt.Errorf("failed to update user: %w", err)
  }
  return user, nil
}
