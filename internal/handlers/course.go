package handlers

import (
  "encoding/json"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/services"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type CourseHandler struct {
  courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService) *CourseHandler {
  return &CourseHandler{courseService: courseService}
}

func callerID(c *gin.Context) uuid.UUID {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    return uuid.Nil
  }
  return rd.UserID
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_id", err)
    return uuid.Nil, false
  }
  return id, true
}

func (ch *CourseHandler) List(c *gin.Context) {
  filter := repos.CourseFilter{
    Search:     c.Query("search"),
    Category:   c.Query("category"),
    Difficulty: c.Query("difficulty"),
    SortBy:     c.Query("sort"),
  }
  if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
    filter.Limit = v
  }
  if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
    filter.Offset = v
  }
  courses, err := ch.courseService.List(c.Request.Context(), filter, callerID(c))
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"courses": courses, "count": len(courses)})
}

func (ch *CourseHandler) Featured(c *gin.Context) {
  courses, err := ch.courseService.List(c.Request.Context(), repos.CourseFilter{FeaturedOnly: true}, callerID(c))
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"courses": courses, "count": len(courses)})
}

func (ch *CourseHandler) Popular(c *gin.Context) {
  courses, err := ch.courseService.List(c.Request.Context(), repos.CourseFilter{SortBy: "popular", Limit: 10}, callerID(c))
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"courses": courses, "count": len(courses)})
}

func (ch *CourseHandler) Categories(c *gin.Context) {
  categories, err := ch.courseService.ListCategories(c.Request.Context())
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"categories": categories})
}

func (ch *CourseHandler) Get(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  detail, err := ch.courseService.GetDetail(c.Request.Context(), courseID, callerID(c))
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, detail)
}

type coursePayload struct {
  Title            string          `json:"title" validate:"required"`
  Description      string          `json:"description"`
  ShortDescription string          `json:"short_description"`
  Instructor       string          `json:"instructor" validate:"required"`
  DifficultyLevel  string          `json:"difficulty_level" validate:"required,oneof=beginner intermediate advanced"`
  Category         string          `json:"category"`
  Tags             json.RawMessage `json:"tags"`
  LearningGoals    json.RawMessage `json:"learning_goals"`
  ThumbnailURL     string          `json:"thumbnail_url"`
  Price            float64         `json:"price" validate:"gte=0"`
  IsFeatured       bool            `json:"is_featured"`
  DurationHours    float64         `json:"duration_hours"`
  Language         string          `json:"language"`
}

func (ch *CourseHandler) Create(c *gin.Context) {
  var req coursePayload
  if !BindAndValidate(c, &req) {
    return
  }
  course := types.Course{
    Title:            req.Title,
    Description:      req.Description,
    ShortDescription: req.ShortDescription,
    Instructor:       req.Instructor,
    DifficultyLevel:  req.DifficultyLevel,
    Category:         req.Category,
    Tags:             datatypes.JSON(req.Tags),
    LearningGoals:    datatypes.JSON(req.LearningGoals),
    ThumbnailURL:     req.ThumbnailURL,
    Price:            req.Price,
    IsFree:           req.Price == 0,
    IsFeatured:       req.IsFeatured,
    DurationHours:    req.DurationHours,
    Language:         req.Language,
  }
  created, err := ch.courseService.Create(c.Request.Context(), &course, callerID(c))
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, created)
}

func (ch *CourseHandler) Update(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var req coursePayload
  if !BindAndValidate(c, &req) {
    return
  }
  updated, err := ch.courseService.Update(c.Request.Context(), courseID, func(course *types.Course) {
    course.Title = req.Title
    course.Description = req.Description
    course.ShortDescription = req.ShortDescription
    course.Instructor = req.Instructor
    course.DifficultyLevel = req.DifficultyLevel
    course.Category = req.Category
    if len(req.Tags) > 0 {
      course.Tags = datatypes.JSON(req.Tags)
    }
    if len(req.LearningGoals) > 0 {
      course.LearningGoals = datatypes.JSON(req.LearningGoals)
    }
    course.ThumbnailURL = req.ThumbnailURL
    course.Price = req.Price
    course.IsFree = req.Price == 0
    course.IsFeatured = req.IsFeatured
    course.DurationHours = req.DurationHours
    if req.Language != "" {
      course.Language = req.Language
    }
  })
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, updated)
}

func (ch *CourseHandler) Delete(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := ch.courseService.Delete(c.Request.Context(), courseID); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "course deleted"})
}

func (ch *CourseHandler) GetReviews(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  reviews, err := ch.courseService.GetReviews(c.Request.Context(), courseID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"reviews": reviews, "count": len(reviews)})
}

func (ch *CourseHandler) AddReview(c *gin.Context) {
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var req struct {
    Rating     int    `json:"rating" validate:"required,min=1,max=5"`
    ReviewText string `json:"review_text"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  review, err := ch.courseService.AddReview(c.Request.Context(), callerID(c), courseID, req.Rating, req.ReviewText)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, review)
}
