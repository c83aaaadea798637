package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/joho/godotenv"

  "github.com/skillforge/skillforge-backend/internal/db"
  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/events/redisbus"
  "github.com/skillforge/skillforge-backend/internal/handlers"
  "github.com/skillforge/skillforge-backend/internal/logger"
  "github.com/skillforge/skillforge-backend/internal/middleware"
  "github.com/skillforge/skillforge-backend/internal/observability"
  "github.com/skillforge/skillforge-backend/internal/repos"
  "github.com/skillforge/skillforge-backend/internal/server"
  "github.com/skillforge/skillforge-backend/internal/services"
  "github.com/skillforge/skillforge-backend/internal/utils"
)

func main() {
  _ = godotenv.Load()

  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  promoteStreak := utils.GetEnvAsInt("ADAPTIVE_PROMOTE_STREAK", 3, log)
  demoteStreak := utils.GetEnvAsInt("ADAPTIVE_DEMOTE_STREAK", 2, log)
  corsOrigins := utils.GetEnv("CORS_ORIGINS", "", log)

  // Tracing (optional)
  shutdownTracing := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "skillforge-backend",
    Environment: utils.GetEnv("ENVIRONMENT", "development", log),
    Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
  })
  if shutdownTracing != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = shutdownTracing(ctx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  courseRepo := repos.NewCourseRepo(thePG, log)
  lessonRepo := repos.NewLessonRepo(thePG, log)
  quizRepo := repos.NewQuizRepo(thePG, log)
  quizAttemptRepo := repos.NewQuizAttemptRepo(thePG, log)
  enrollmentRepo := repos.NewEnrollmentRepo(thePG, log)
  lessonProgressRepo := repos.NewLessonProgressRepo(thePG, log)
  questionBankRepo := repos.NewQuestionBankRepo(thePG, log)
  performanceRepo := repos.NewStudentPerformanceRepo(thePG, log)
  dynamicQuizRepo := repos.NewDynamicQuizRepo(thePG, log)
  questionAttemptRepo := repos.NewQuestionAttemptRepo(thePG, log)
  reviewRepo := repos.NewCourseReviewRepo(thePG, log)
  analyticsRepo := repos.NewStudentAnalyticsRepo(thePG, log)

  // Event hub
  log.Info("Setting up event hub now...")
  hub := events.NewHub(log)
  var publisher services.EventPublisher = hub
  if os.Getenv("REDIS_ADDR") != "" {
    bus, busErr := redisbus.NewBus(log)
    if busErr != nil {
      log.Warn("Redis event bus init failed; running single-instance", "error", busErr)
    } else {
      bridge := redisbus.NewBridge(log, hub, bus)
      if fwdErr := bridge.Start(context.Background()); fwdErr != nil {
        log.Warn("Redis event forwarder failed to start", "error", fwdErr)
      }
      publisher = bridge
      defer bus.Close()
    }
  }

  // Services
  log.Info("Setting up Services from main...")
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo)
  courseService := services.NewCourseService(thePG, log, courseRepo, lessonRepo, quizRepo, enrollmentRepo, reviewRepo)
  lessonService := services.NewLessonService(thePG, log, courseRepo, lessonRepo)
  enrollmentService := services.NewEnrollmentService(thePG, log, userRepo, courseRepo, lessonRepo, enrollmentRepo, lessonProgressRepo, quizAttemptRepo, publisher)
  quizService := services.NewQuizService(thePG, log, quizRepo, quizAttemptRepo, courseRepo, enrollmentRepo, analyticsRepo, publisher)
  adaptiveService := services.NewAdaptiveQuizService(thePG, log, questionBankRepo, performanceRepo, dynamicQuizRepo, questionAttemptRepo, enrollmentRepo, services.AdaptiveConfig{
    PromoteStreak: promoteStreak,
    DemoteStreak:  demoteStreak,
  })
  analyticsService := services.NewAnalyticsService(thePG, log, userRepo, courseRepo, enrollmentRepo, quizAttemptRepo, analyticsRepo)
  questionBankService := services.NewQuestionBankService(thePG, log, questionBankRepo, lessonRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService, userService)
  userHandler := handlers.NewUserHandler(userService)
  courseHandler := handlers.NewCourseHandler(courseService)
  lessonHandler := handlers.NewLessonHandler(lessonService)
  enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
  quizHandler := handlers.NewQuizHandler(quizService)
  dynamicQuizHandler := handlers.NewDynamicQuizHandler(adaptiveService)
  questionHandler := handlers.NewQuestionBankHandler(questionBankService)
  analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, enrollmentService)
  eventsHandler := handlers.NewEventsHandler(hub)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:        authHandler,
    AuthMiddleware:     authMiddleware,
    UserHandler:        userHandler,
    CourseHandler:      courseHandler,
    LessonHandler:      lessonHandler,
    EnrollmentHandler:  enrollmentHandler,
    QuizHandler:        quizHandler,
    DynamicQuizHandler: dynamicQuizHandler,
    QuestionHandler:    questionHandler,
    AnalyticsHandler:   analyticsHandler,
    EventsHandler:      eventsHandler,
    CORSOrigins:        corsOrigins,
    EnableTracing:      observability.Enabled(),
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("Server failed", "error", err)
  }
}
