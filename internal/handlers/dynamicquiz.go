package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/services"
)

type DynamicQuizHandler struct {
  adaptiveService services.AdaptiveQuizService
}

func NewDynamicQuizHandler(adaptiveService services.AdaptiveQuizService) *DynamicQuizHandler {
  return &DynamicQuizHandler{adaptiveService: adaptiveService}
}

func (dh *DynamicQuizHandler) Start(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var req struct {
    CourseID       uuid.UUID `json:"course_id" validate:"required"`
    LessonID       uuid.UUID `json:"lesson_id" validate:"required"`
    TotalQuestions int       `json:"total_questions" validate:"gte=0,lte=50"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  quiz, err := dh.adaptiveService.StartDynamicQuiz(c.Request.Context(), rd.UserID, req.CourseID, req.LessonID, req.TotalQuestions)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, quiz)
}

func (dh *DynamicQuizHandler) Next(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  quizID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  view, err := dh.adaptiveService.NextQuestion(c.Request.Context(), rd.UserID, quizID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, view)
}

func (dh *DynamicQuizHandler) Answer(c *gin.Context) {
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
    QuestionID       uuid.UUID `json:"question_id" validate:"required"`
    Answer           string    `json:"answer"`
    TimeTakenSeconds float64   `json:"time_taken_seconds" validate:"gte=0"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  result, err := dh.adaptiveService.SubmitAnswer(c.Request.Context(), rd.UserID, quizID, req.QuestionID, req.Answer, req.TimeTakenSeconds)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, result)
}

func (dh *DynamicQuizHandler) Complete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  quizID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  summary, err := dh.adaptiveService.CompleteQuiz(c.Request.Context(), rd.UserID, quizID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, summary)
}
