package handlers

import (
  "encoding/json"

  "github.com/gin-gonic/gin"
  "gorm.io/datatypes"

  "github.com/skillforge/skillforge-backend/internal/services"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type LessonHandler struct {
  lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService) *LessonHandler {
  return &LessonHandler{lessonService: lessonService}
}

func (lh *LessonHandler) ListByCourse(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  lessons, err := lh.lessonService.GetByCourse(c.Request.Context(), courseID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"lessons": lessons, "count": len(lessons)})
}

type lessonPayload struct {
  Order           int             `json:"order" validate:"gte=0"`
  Title           string          `json:"title" validate:"required"`
  Description     string          `json:"description"`
  LessonType      string          `json:"lesson_type" validate:"omitempty,oneof=video text quiz"`
  VideoURL        string          `json:"video_url"`
  VideoDurationS  int             `json:"video_duration_s"`
  DurationMinutes float64         `json:"duration_minutes"`
  Content         string          `json:"content"`
  Resources       json.RawMessage `json:"resources"`
  IsPreview       bool            `json:"is_preview"`
  Points          int             `json:"points"`
}

func (lh *LessonHandler) Create(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var req lessonPayload
  if !BindAndValidate(c, &req) {
    return
  }
  lesson := types.Lesson{
    CourseID:        courseID,
    Order:           req.Order,
    Title:           req.Title,
    Description:     req.Description,
    LessonType:      req.LessonType,
    VideoURL:        req.VideoURL,
    VideoDurationS:  req.VideoDurationS,
    DurationMinutes: req.DurationMinutes,
    Content:         req.Content,
    Resources:       datatypes.JSON(req.Resources),
    IsPreview:       req.IsPreview,
    Points:          req.Points,
  }
  created, err := lh.lessonService.Create(c.Request.Context(), &lesson)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, created)
}

func (lh *LessonHandler) Update(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  lessonID, ok := parseIDParam(c, "lessonId")
  if !ok {
    return
  }
  var req lessonPayload
  if !BindAndValidate(c, &req) {
    return
  }
  updated, err := lh.lessonService.Update(c.Request.Context(), courseID, lessonID, func(lesson *types.Lesson) {
    lesson.Order = req.Order
    lesson.Title = req.Title
    lesson.Description = req.Description
    if req.LessonType != "" {
      lesson.LessonType = req.LessonType
    }
    lesson.VideoURL = req.VideoURL
    lesson.VideoDurationS = req.VideoDurationS
    lesson.DurationMinutes = req.DurationMinutes
    lesson.Content = req.Content
    if len(req.Resources) > 0 {
      lesson.Resources = datatypes.JSON(req.Resources)
    }
    lesson.IsPreview = req.IsPreview
    lesson.Points = req.Points
  })
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, updated)
}

func (lh *LessonHandler) Delete(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  lessonID, ok := parseIDParam(c, "lessonId")
  if !ok {
    return
  }
  if err := lh.lessonService.Delete(c.Request.Context(), courseID, lessonID); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "lesson deleted"})
}
