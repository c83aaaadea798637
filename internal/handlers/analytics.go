package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/services"
)

type AnalyticsHandler struct {
  analyticsService  services.AnalyticsService
  enrollmentService services.EnrollmentService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, enrollmentService services.EnrollmentService) *AnalyticsHandler {
  return &AnalyticsHandler{analyticsService: analyticsService, enrollmentService: enrollmentService}
}

func (ah *AnalyticsHandler) StudentDashboard(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  dashboard, err := ah.analyticsService.StudentDashboard(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, dashboard)
}

func (ah *AnalyticsHandler) AdminDashboard(c *gin.Context) {
  dashboard, err := ah.analyticsService.AdminDashboard(c.Request.Context())
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, dashboard)
}

// RecordProgress is the combined watch-time + completion update path.
func (ah *AnalyticsHandler) RecordProgress(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var req struct {
    CourseID        uuid.UUID `json:"course_id" validate:"required"`
    LessonID        uuid.UUID `json:"lesson_id" validate:"required"`
    WatchSeconds    int       `json:"watch_seconds" validate:"gte=0"`
    PositionSeconds int       `json:"position_seconds" validate:"gte=0"`
    MarkCompleted   bool      `json:"mark_completed"`
  }
  if !BindAndValidate(c, &req) {
    return
  }

  ctx := c.Request.Context()
  if req.WatchSeconds > 0 || req.PositionSeconds > 0 {
    if err := ah.enrollmentService.RecordWatchTime(ctx, rd.UserID, req.CourseID, req.LessonID, req.WatchSeconds, req.PositionSeconds); err != nil {
      RespondAppError(c, err)
      return
    }
  }
  if req.MarkCompleted {
    if _, err := ah.enrollmentService.MarkLessonComplete(ctx, rd.UserID, req.CourseID, req.LessonID); err != nil {
      RespondAppError(c, err)
      return
    }
  }
  if err := ah.analyticsService.RecordProgress(ctx, rd.UserID, req.CourseID, float64(req.WatchSeconds)/60, req.MarkCompleted); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "progress recorded"})
}
