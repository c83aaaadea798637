package server

import (
  "strings"

  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/skillforge/skillforge-backend/internal/handlers"
  "github.com/skillforge/skillforge-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler        *handlers.AuthHandler
  AuthMiddleware     *middleware.AuthMiddleware
  UserHandler        *handlers.UserHandler
  CourseHandler      *handlers.CourseHandler
  LessonHandler      *handlers.LessonHandler
  EnrollmentHandler  *handlers.EnrollmentHandler
  QuizHandler        *handlers.QuizHandler
  DynamicQuizHandler *handlers.DynamicQuizHandler
  QuestionHandler    *handlers.QuestionBankHandler
  AnalyticsHandler   *handlers.AnalyticsHandler
  EventsHandler      *handlers.EventsHandler
  CORSOrigins        string
  EnableTracing      bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  origins := []string{"http://localhost:3000", "http://localhost:5173"}
  if cfg.CORSOrigins != "" {
    origins = strings.Split(cfg.CORSOrigins, ",")
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))
  if cfg.EnableTracing {
    router.Use(otelgin.Middleware("skillforge-backend"))
  }

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  api := router.Group("/api")
  {
    api.POST("/auth/signup", cfg.AuthHandler.Signup)
    api.POST("/auth/login", cfg.AuthHandler.Login)
  }

  // Catalog: public, but enrollment overlay appears for signed-in callers.
  catalog := api.Group("/")
  catalog.Use(cfg.AuthMiddleware.OptionalAuth())
  catalog.GET("/courses", cfg.CourseHandler.List)
  catalog.GET("/courses/featured", cfg.CourseHandler.Featured)
  catalog.GET("/courses/popular", cfg.CourseHandler.Popular)
  catalog.GET("/courses/categories", cfg.CourseHandler.Categories)
  catalog.GET("/courses/:id", cfg.CourseHandler.Get)
  catalog.GET("/courses/:id/lessons", cfg.LessonHandler.ListByCourse)
  catalog.GET("/courses/:id/reviews", cfg.CourseHandler.GetReviews)

// ===============
// || Protected ||
// ===============
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/auth/logout", cfg.AuthHandler.Logout)
  protected.GET("/auth/me", cfg.AuthHandler.Me)
  protected.PUT("/users/me", cfg.UserHandler.UpdateProfile)
  // Enrollment
  protected.POST("/courses/:id/enroll", cfg.EnrollmentHandler.Enroll)
  protected.DELETE("/courses/:id/enroll", cfg.EnrollmentHandler.Unenroll)
  protected.GET("/courses/:id/enrollment", cfg.EnrollmentHandler.Status)
  protected.POST("/courses/:id/lessons/:lessonId/complete", cfg.EnrollmentHandler.MarkLessonComplete)
  protected.GET("/enrollments", cfg.EnrollmentHandler.MyEnrollments)
  // Reviews
  protected.POST("/courses/:id/reviews", cfg.CourseHandler.AddReview)
  // Quizzes
  protected.GET("/quizzes/:id", cfg.QuizHandler.Get)
  protected.POST("/quizzes/:id/attempt", cfg.QuizHandler.Attempt)
  protected.GET("/quizzes/:id/attempts", cfg.QuizHandler.Attempts)
  // Adaptive quizzes
  protected.POST("/dynamic-quizzes", cfg.DynamicQuizHandler.Start)
  protected.GET("/dynamic-quizzes/:id/next", cfg.DynamicQuizHandler.Next)
  protected.POST("/dynamic-quizzes/:id/answer", cfg.DynamicQuizHandler.Answer)
  protected.POST("/dynamic-quizzes/:id/complete", cfg.DynamicQuizHandler.Complete)
  // Analytics
  protected.GET("/analytics/student", cfg.AnalyticsHandler.StudentDashboard)
  protected.POST("/analytics/progress", cfg.AnalyticsHandler.RecordProgress)
  // Events
  protected.GET("/events/stream", cfg.EventsHandler.Stream)

// ===============
// || Admin     ||
// ===============
  admin := api.Group("/")
  admin.Use(cfg.AuthMiddleware.RequireAuth())
  admin.Use(cfg.AuthMiddleware.RequireRole("admin", "instructor"))
  admin.POST("/courses", cfg.CourseHandler.Create)
  admin.PUT("/courses/:id", cfg.CourseHandler.Update)
  admin.DELETE("/courses/:id", cfg.CourseHandler.Delete)
  admin.POST("/courses/:id/lessons", cfg.LessonHandler.Create)
  admin.PUT("/courses/:id/lessons/:lessonId", cfg.LessonHandler.Update)
  admin.DELETE("/courses/:id/lessons/:lessonId", cfg.LessonHandler.Delete)
  admin.POST("/quizzes", cfg.QuizHandler.Create)
  admin.POST("/questions", cfg.QuestionHandler.Create)
  admin.GET("/lessons/:id/questions", cfg.QuestionHandler.ListByLesson)
  admin.PUT("/questions/:id", cfg.QuestionHandler.Update)
  admin.DELETE("/questions/:id", cfg.QuestionHandler.Delete)

  adminOnly := api.Group("/")
  adminOnly.Use(cfg.AuthMiddleware.RequireAuth())
  adminOnly.Use(cfg.AuthMiddleware.RequireRole("admin"))
  adminOnly.GET("/analytics/admin", cfg.AnalyticsHandler.AdminDashboard)

  return router
}
