package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	books := NewBooksController(cfg.Catalog, log)
	api.GET("/books", books.ListBooks)
	api.POST("/books", books.CreateBook)
	api.GET("/books/:id", books.GetBook)
	api.PATCH("/books/:id", books.UpdateBook)
	api.DELETE("/books/:id", books.DeactivateBook)

	students := NewStudentsController(cfg.Catalog, cfg.Circulation, cfg.Fines, log)
	api.POST("/students", students.CreateStudent)
	api.GET("/students/:id", students.GetStudent)
	api.DELETE("/students/:id", students.DeactivateStudent)
	api.GET("/students/:id/loans", students.StudentLoans)
	api.GET("/students/:id/fines", students.StudentFines)

	loans := NewLoansController(cfg.Circulation, log)
	api.POST("/loans", loans.IssueLoan)
	api.GET("/loans/:id", loans.GetLoan)
	api.POST("/loans/:id/return", loans.ReturnLoan)

	finesController := NewFinesController(cfg.Fines, cfg.Scheduler, log)
	api.POST("/fines/generate", finesController.GenerateFines)
	api.GET("/fines/schedule", finesController.SweepSchedule)
	api.GET("/fines/:id", finesController.GetFine)
	api.POST("/fines/:id/pay", finesController.PayFine)
	api.POST("/fines/:id/waive", finesController.WaiveFine)
	api.GET("/fine-policy", finesController.CurrentPolicy)
	api.GET("/fine-policies", finesController.ListPolicies)
	api.POST("/fine-policies", finesController.CreatePolicy)

	suggestions := NewSuggestionsController(cfg.Catalog, log)
	api.GET("/suggestions", suggestions.ListSuggestions)
	api.POST("/suggestions", suggestions.SubmitSuggestion)
	api.POST("/suggestions/:id/review", suggestions.ReviewSuggestion)

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, log)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit, log)
		api.GET("/audit", auditController.ListEvents)
		api.GET("/audit/:entity/:id", auditController.EntityHistory)
	}

	return router
}

// requestLogger logs one line per request through zap.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
