package handlers

import (
  "encoding/json"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/services"
)

type UserHandler struct {
  userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
  return &UserHandler{userService: userService}
}

func (uh *UserHandler) UpdateProfile(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var req struct {
    FullName    string          `json:"full_name"`
    Bio         string          `json:"bio"`
    Preferences json.RawMessage `json:"preferences"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  user, err := uh.userService.UpdateProfile(c.Request.Context(), rd.UserID, req.FullName, req.Bio, req.Preferences)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, user)
}
