package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/services"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type AuthHandler struct {
  authService services.AuthService
  userService services.UserService
}

func NewAuthHandler(authService services.AuthService, userService services.UserService) *AuthHandler {
  return &AuthHandler{authService: authService, userService: userService}
}

func (ah *AuthHandler) Signup(c *gin.Context) {
  var req struct {
    Email    string `json:"email" validate:"required,email"`
    FullName string `json:"full_name" validate:"required"`
    Password string `json:"password" validate:"required,min=8"`
    Role     string `json:"role" validate:"omitempty,oneof=student instructor admin"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  user := types.User{
    Email:    req.Email,
    FullName: req.FullName,
    Password: req.Password,
    Role:     req.Role,
  }
  created, err := ah.authService.RegisterUser(c.Request.Context(), &user)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, created)
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  accessToken, refreshToken, user, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  accessTTL := ah.authService.GetAccessTTL()
  RespondOK(c, gin.H{
    "access_token":  accessToken,
    "refresh_token": refreshToken,
    "expires_in":    int(accessTTL.Seconds()),
    "user":          user,
  })
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context())
  if err != nil {
    RespondAppError(c, err)
    return
  }
  accessTTL := ah.authService.GetAccessTTL()
  RespondOK(c, gin.H{
    "access_token":  accessToken,
    "refresh_token": refreshToken,
    "expires_in":    int(accessTTL.Seconds()),
  })
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "logged out successfully"})
}

func (ah *AuthHandler) Me(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  user, err := ah.userService.GetByID(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, user)
}
