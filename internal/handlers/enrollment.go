package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/skillforge/skillforge-backend/internal/requestdata"
  "github.com/skillforge/skillforge-backend/internal/services"
)

type EnrollmentHandler struct {
  enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService) *EnrollmentHandler {
  return &EnrollmentHandler{enrollmentService: enrollmentService}
}

func (eh *EnrollmentHandler) Enroll(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  enrollment, err := eh.enrollmentService.Enroll(c.Request.Context(), rd.UserID, courseID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondCreated(c, enrollment)
}

func (eh *EnrollmentHandler) Unenroll(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := eh.enrollmentService.Unenroll(c.Request.Context(), rd.UserID, courseID); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "unenrolled"})
}

func (eh *EnrollmentHandler) Status(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  status, err := eh.enrollmentService.GetEnrollmentStatus(c.Request.Context(), rd.UserID, courseID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, status)
}

func (eh *EnrollmentHandler) MarkLessonComplete(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  courseID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  lessonID, ok := parseIDParam(c, "lessonId")
  if !ok {
    return
  }
  enrollment, err := eh.enrollmentService.MarkLessonComplete(c.Request.Context(), rd.UserID, courseID, lessonID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "message":          "lesson completed",
    "progress":         enrollment.ProgressPercentage,
    "course_completed": enrollment.IsCompleted,
  })
}

func (eh *EnrollmentHandler) MyEnrollments(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  enrollments, err := eh.enrollmentService.GetStudentEnrollments(c.Request.Context(), rd.UserID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"enrollments": enrollments, "count": len(enrollments)})
}
