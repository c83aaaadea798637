package handlers

import (
  "encoding/json"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/services"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type QuizHandler struct {
  quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService) *QuizHandler {
  return &QuizHandler{quizService: quizService}
}

func (qh *QuizHandler) Get(c *gin.Context) {
  quizID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  quiz, err := qh.quizService.GetByID(c.Request.Context(), quizID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  // Correct answers never leave the server before an attempt.
  var questions []types.QuizQuestionDoc
  safe := make([]gin.H, 0)
  if uErr := json.Unmarshal(quiz.Questions, &questions); uErr == nil {
    for _, q := range questions {
      safe = append(safe, gin.H{
        "question": q.Question,
        "options":  q.Options,
        "points":   q.Points,
      })
    }
  }
  RespondOK(c, gin.H{
    "id":                 quiz.ID,
    "course_id":          quiz.CourseID,
    "lesson_id":          quiz.LessonID,
    "title":              quiz.Title,
    "description":        quiz.Description,
    "instructions":       quiz.Instructions,
    "questions":          safe,
    "total_points":       quiz.TotalPoints,
    "passing_score":      quiz.PassingScore,
    "time_limit_minutes": quiz.TimeLimitMinutes,
    "attempts_allowed":   quiz.AttemptsAllowed,
  })
}

func (qh *QuizHandler) Create(c *gin.Context) {
  var req struct {
    CourseID         uuid.UUID       `json:"course_id" validate:"required"`
    LessonID         *uuid.UUID      `json:"lesson_id"`
    Title            string          `json:"title" validate:"required"`
    Description      string          `json:"description"`
    Instructions     string          `json:"instructions"`
    Questions        json.RawMessage `json:"questions" validate:"required"`
    PassingScore     int             `json:"passing_score" validate:"gte=0,lte=100"`
    TimeLimitMinutes int             `json:"time_limit_minutes"`
    AttemptsAllowed  int             `json:"attempts_allowed"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  quiz := types.Quiz{
    CourseID:         req.CourseID,
    LessonID:         req.LessonID,
    Title:            req.Title,
    Description:      req.Description,
    Instructions:     req.Instructions,
    Questions:        datatypes.JSON(req.Questions),
    PassingScore:     req.PassingScore,
    TimeLimitMinutes: req.TimeLimitMinutes,
    AttemptsAllowed:  req.AttemptsAllowed,
  }
  created, err := qh.quizService.Create(c.Request.Context(), &quiz)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, created)
}

func (qh *QuizHandler) Attempt(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  quizID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var req struct {
    Answers          []string `json:"answers" validate:"required"`
    TimeTakenMinutes float64  `json:"time_taken_minutes" validate:"gte=0"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  result, err := qh.quizService.AttemptQuiz(c.Request.Context(), rd.UserID, quizID, req.Answers, req.TimeTakenMinutes)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, result)
}

func (qh *QuizHandler) Attempts(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  quizID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  attempts, err := qh.quizService.GetQuizAttempts(c.Request.Context(), rd.UserID, quizID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"attempts": attempts, "count": len(attempts)})
}
