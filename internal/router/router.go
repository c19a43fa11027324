package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/handler"
	"formdesk/internal/middleware"
	"formdesk/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Health     *handler.HealthHandler
	Intake     *handler.IntakeHandler
	Forms      *handler.FormHandler
	Uploads    *handler.UploadHandler
	Wizard     *handler.WizardHandler
	Submission *handler.SubmissionHandler
	Reviewer   *handler.ReviewerHandler
	Stats      *handler.StatsHandler
}

// Setup configures the Gin engine with all routes and middleware.
// formTypes lists the catalog forms that get a public POST /submit-<type> route.
func Setup(
	authSvc service.AuthService,
	h Handlers,
	formTypes []string,
	allowedOrigins []string,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public submit routes, one per form
	for _, formType := range formTypes {
		r.POST("/submit-"+formType, h.Intake.Submit(formType))
	}

	// Legacy status endpoint used by the review dashboard
	r.POST("/api/update-claim-status",
		middleware.AuthMiddleware(authSvc),
		middleware.RequireMinRole(domain.RoleReviewer),
		h.Intake.UpdateClaimStatus,
	)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Form catalog and uploads
	v1.GET("/forms", h.Forms.List)
	v1.GET("/forms/:formType", h.Forms.Get)
	v1.POST("/uploads", h.Uploads.Upload)

	// Wizard sessions
	wiz := v1.Group("/wizard")
	wiz.POST("/:formType/sessions", h.Wizard.Create)
	wiz.GET("/sessions/:id", h.Wizard.Get)
	wiz.DELETE("/sessions/:id", h.Wizard.Delete)
	wiz.PATCH("/sessions/:id/values", h.Wizard.SetValues)
	wiz.POST("/sessions/:id/next", h.Wizard.Next)
	wiz.POST("/sessions/:id/previous", h.Wizard.Previous)
	wiz.POST("/sessions/:id/reset", h.Wizard.Reset)
	wiz.POST("/sessions/:id/files", h.Wizard.AttachFile)
	wiz.POST("/sessions/:id/submit", h.Wizard.Submit)

	// Back office - require valid JWT
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authSvc))

	admin.GET("/stats", h.Stats.GetStats)
	admin.GET("/files/:id/link", h.Uploads.DownloadLink)

	subs := admin.Group("/submissions")
	subs.GET("", h.Submission.List)
	subs.GET("/:formType/export/csv", h.Submission.ExportCSV)
	subs.GET("/:formType/export/xlsx", h.Submission.ExportXLSX)
	subs.GET("/:formType/:id", h.Submission.GetByID)
	subs.GET("/:formType/:id/audit", h.Submission.ListAudit)
	subs.PUT("/:formType/:id", middleware.RequireMinRole(domain.RoleReviewer), h.Submission.Update)
	subs.POST("/:formType/:id/status", middleware.RequireMinRole(domain.RoleReviewer), h.Submission.UpdateStatus)
	subs.DELETE("/:formType/:id", middleware.RequireRole(domain.RoleAdmin), h.Submission.Delete)

	reviewers := admin.Group("/reviewers")
	reviewers.Use(middleware.RequireRole(domain.RoleAdmin))
	reviewers.POST("", h.Reviewer.Create)
	reviewers.GET("", h.Reviewer.List)
	reviewers.GET("/:id", h.Reviewer.GetByID)
	reviewers.PUT("/:id", h.Reviewer.Update)
	reviewers.DELETE("/:id", h.Reviewer.Delete)

	return r
}
