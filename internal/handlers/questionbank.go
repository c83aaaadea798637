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

type QuestionBankHandler struct {
  questionService services.QuestionBankService
}

func NewQuestionBankHandler(questionService services.QuestionBankService) *QuestionBankHandler {
  return &QuestionBankHandler{questionService: questionService}
}

func (qh *QuestionBankHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  var req struct {
    LessonID        uuid.UUID       `json:"lesson_id" validate:"required"`
    QuestionText    string          `json:"question_text" validate:"required"`
    QuestionType    string          `json:"question_type"`
    Options         json.RawMessage `json:"options"`
    CorrectAnswer   string          `json:"correct_answer" validate:"required"`
    Explanation     string          `json:"explanation"`
    DifficultyLevel string          `json:"difficulty_level" validate:"required"`
    TopicTags       json.RawMessage `json:"topic_tags"`
    Points          int             `json:"points" validate:"gte=0"`
    EstimatedTimeS  int             `json:"estimated_time_s" validate:"gte=0"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  lessonID := req.LessonID
  question := types.QuestionBank{
    LessonID:        &lessonID,
    QuestionText:    req.QuestionText,
    QuestionType:    req.QuestionType,
    Options:         datatypes.JSON(req.Options),
    CorrectAnswer:   req.CorrectAnswer,
    Explanation:     req.Explanation,
    DifficultyLevel: req.DifficultyLevel,
    TopicTags:       datatypes.JSON(req.TopicTags),
    Points:          req.Points,
    EstimatedTimeS:  req.EstimatedTimeS,
  }
  created, err := qh.questionService.CreateQuestion(c.Request.Context(), rd.UserID, &question)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, created)
}

func (qh *QuestionBankHandler) ListByLesson(c *gin.Context) {
  lessonID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  questions, err := qh.questionService.ListQuestions(c.Request.Context(), lessonID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"questions": questions, "count": len(questions)})
}

func (qh *QuestionBankHandler) Update(c *gin.Context) {
  questionID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var req struct {
    QuestionText    string          `json:"question_text"`
    QuestionType    string          `json:"question_type"`
    Options         json.RawMessage `json:"options"`
    CorrectAnswer   string          `json:"correct_answer"`
    Explanation     string          `json:"explanation"`
    DifficultyLevel string          `json:"difficulty_level"`
    TopicTags       json.RawMessage `json:"topic_tags"`
    Points          int             `json:"points" validate:"gte=0"`
    EstimatedTimeS  int             `json:"estimated_time_s" validate:"gte=0"`
  }
  if !BindAndValidate(c, &req) {
    return
  }
  question := types.QuestionBank{
    ID:              questionID,
    QuestionText:    req.QuestionText,
    QuestionType:    req.QuestionType,
    Options:         datatypes.JSON(req.Options),
    CorrectAnswer:   req.CorrectAnswer,
    Explanation:     req.Explanation,
    DifficultyLevel: req.DifficultyLevel,
    TopicTags:       datatypes.JSON(req.TopicTags),
    Points:          req.Points,
    EstimatedTimeS:  req.EstimatedTimeS,
  }
  updated, err := qh.questionService.UpdateQuestion(c.Request.Context(), &question)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, updated)
}

func (qh *QuestionBankHandler) Delete(c *gin.Context) {
  questionID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := qh.questionService.DeleteQuestion(c.Request.Context(), questionID); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"deleted": true})
}
