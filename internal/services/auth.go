package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/normalization"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/types"
  "github.com/skillforge/skillforge-backend/internal/utils"
)

type JWTClaims struct {
  Role string `json:"role"`
  jwt.RegisteredClaims
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) (*types.User, error)
  LoginUser(ctx context.Context, email, password string) (string, string, *types.User, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) (*types.User, error) {
  user.Email = normalization.ParseInputString(user.Email)
  user.FullName = normalization.TrimInputString(user.FullName)

  if user.Role == "" {
    user.Role = types.RoleStudent
  }
  // Only an already-authenticated admin may mint elevated roles.
  if user.Role != types.RoleStudent {
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.Role != types.RoleAdmin {
      user.Role = types.RoleStudent
    }
  }

  exists, exErr := as.userRepo.EmailExists(ctx, nil, user.Email)
  if exErr != nil {
    return nil, fmt.Errorf("failed to check email: %w", exErr)
  }
  if exists {
    return nil, apperr.Conflict("email_taken", "email already registered")
  }

  hashed, hErr := utils.HashPassword(user.Password)
  if hErr != nil {
    return nil, fmt.Errorf("failed to hash password: %w", hErr)
  }
  user.Password = hashed
  user.IsActive = true

  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user.ID = uuid.New()
    _, ucErr := as.userRepo.Create(ctx, tx, []*types.User{user})
    if ucErr != nil {
      if errors.Is(ucErr, gorm.ErrDuplicatedKey) {
        return apperr.Conflict("email_taken", "email already registered")
      }
      return fmt.Errorf("failed to create user: %w", ucErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, *types.User, error) {
  email = normalization.ParseInputString(email)

  users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if usErr != nil {
    return "", "", nil, fmt.Errorf("error retrieving user by email: %w", usErr)
  }
  if len(users) == 0 {
    return "", "", nil, apperr.Unauthorized("invalid_credentials", "invalid email or password")
  }

  user := users[0]
  if !user.IsActive {
    return "", "", nil, apperr.Unauthorized("inactive_account", "account is deactivated")
  }
  if !utils.CheckPassword(user.Password, password) {
    return "", "", nil, apperr.Unauthorized("invalid_credentials", "invalid email or password")
  }

  var accessToken string
  var refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if ftErr != nil {
      return fmt.Errorf("failed to check user tokens: %w", ftErr)
    }
    // A stale session is replaced rather than rejected.
    if len(foundTokens) > 0 {
      if dtErr := as.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); dtErr != nil {
        return fmt.Errorf("failed to delete stale user tokens: %w", dtErr)
      }
    }
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("generate access token error: %w", genErr)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    expiresAt := time.Now().Add(as.refreshTTL)
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    expiresAt,
    }
    _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken})
    if ctErr != nil {
      as.log.Warn("create user token error", "error", ctErr)
      return fmt.Errorf("create user token error: %w", ctErr)
    }
    return nil
  }); err != nil {
    return "", "", nil, err
  }
  return accessToken, refreshToken, user, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return "", "", apperr.Unauthorized("no_session", "no request data found in context")
  }
  if rd.RefreshToken == "" {
    return "", "", apperr.Unauthorized("no_refresh_token", "refresh token not found in request data")
  }

  var accessToken string
  var newRefreshTokenStr string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if ftErr != nil {
      as.log.Warn("error fetching refresh token", "error", ftErr)
      return fmt.Errorf("error fetching refresh token: %w", ftErr)
    }
    if len(foundTokens) == 0 {
      return apperr.Unauthorized("invalid_refresh_token", "refresh token not recognized")
    }
    existingToken := foundTokens[0]
    if existingToken.ExpiresAt.Before(time.Now()) {
      if dtErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dtErr != nil {
        as.log.Warn("refresh token expired, error deleting", "error", dtErr)
        return fmt.Errorf("refresh token expired, error deleting: %w", dtErr)
      }
      return apperr.Unauthorized("refresh_token_expired", "refresh token expired")
    }
    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
    if uErr != nil {
      as.log.Warn("failed to load user for refresh", "error", uErr)
      return fmt.Errorf("failed to load user for refresh: %w", uErr)
    }
    if len(users) == 0 {
      return apperr.Unauthorized("invalid_refresh_token", "no user found for the given refresh token")
    }
    user := users[0]
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      as.log.Warn("failed to generate new access token", "error", genErr)
      return fmt.Errorf("failed to generate new access token: %w", genErr)
    }
    accessToken = tok
    newRefreshTokenStr = uuid.New().String()
    newExpiresAt := time.Now().Add(as.refreshTTL)
    newUserToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  tok,
      RefreshToken: newRefreshTokenStr,
      ExpiresAt:    newExpiresAt,
    }
    _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken})
    if cErr != nil {
      as.log.Warn("failed to create new user token", "error", cErr)
      return fmt.Errorf("failed to create new user token: %w", cErr)
    }
    if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dErr != nil {
      as.log.Warn("failed to remove old refresh token", "error", dErr)
      return fmt.Errorf("failed to remove old refresh token: %w", dErr)
    }
    return nil
  })
  if err != nil {
    return "", "", err
  }
  return accessToken, newRefreshTokenStr, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return apperr.Unauthorized("no_session", "no request data found in context")
  }
  if rd.TokenString == "" {
    return apperr.Unauthorized("no_token", "token string in request data empty")
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if ftErr != nil {
      as.log.Warn("error finding user token from token string", "error", ftErr)
      return fmt.Errorf("error finding user token from token string: %w", ftErr)
    }
    if len(foundTokens) == 0 {
      return nil
    }
    if tdErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, foundTokens); tdErr != nil {
      as.log.Warn("error deleting user token", "error", tdErr)
      return fmt.Errorf("error deleting user token: %w", tdErr)
    }
    return nil
  })
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    Role: user.Role,
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apperr.Unauthorized("invalid_token", "failed to parse token")
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apperr.Unauthorized("invalid_token", "invalid or expired token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apperr.Unauthorized("invalid_token", "invalid user id in token")
  }
  var refreshTokenStr string
  foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if ftErr != nil {
    as.log.Warn("error fetching user token by access token", "error", ftErr)
    return ctx, fmt.Errorf("failed to fetch user token by access token: %w", ftErr)
  }
  if len(foundTokens) > 0 {
    refreshTokenStr = foundTokens[0].RefreshToken
  }
  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: refreshTokenStr,
    UserID:       userID,
    Role:         claims.Role,
  }
  ctx = requestdata.WithRequestData(ctx, rd)
  return ctx, nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
