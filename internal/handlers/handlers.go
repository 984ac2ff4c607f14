package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobboard/internal/config"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/realtime"
	"jobboard/internal/repository"
	"jobboard/internal/service"
)

type HandlerSet struct {
	log  zerolog.Logger
	cfg  *config.AppConfig
	db   *pgxpool.Pool
	cache *redis.Client

	authn     *service.Authenticator
	auth      *service.AuthService
	users     *service.UserService
	companies *service.CompanyService
	jobs      *service.JobService
	chats     *service.ChatService
	hub       *realtime.Hub

	userRepo    *repository.UserRepository
	companyRepo *repository.CompanyRepository
}

// Deps carries everything the HTTP layer needs, wired in main.
type Deps struct {
	Log   zerolog.Logger
	Cfg   *config.AppConfig
	DB    *pgxpool.Pool
	Cache *redis.Client

	Authenticator  *service.Authenticator
	AuthService    *service.AuthService
	UserService    *service.UserService
	CompanyService *service.CompanyService
	JobService     *service.JobService
	ChatService    *service.ChatService
	Hub            *realtime.Hub

	UserRepo    *repository.UserRepository
	CompanyRepo *repository.CompanyRepository
}

func NewHandlerSet(deps Deps) HandlerSet {
	return HandlerSet{
		log:         deps.Log,
		cfg:         deps.Cfg,
		db:          deps.DB,
		cache:       deps.Cache,
		authn:       deps.Authenticator,
		auth:        deps.AuthService,
		users:       deps.UserService,
		companies:   deps.CompanyService,
		jobs:        deps.JobService,
		chats:       deps.ChatService,
		hub:         deps.Hub,
		userRepo:    deps.UserRepo,
		companyRepo: deps.CompanyRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.SignUp)
		auth.POST("/confirm", h.ConfirmEmail)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/refresh", middleware.AuthRefresh(h.authn), h.Refresh)
	}

	users := v1.Group("/users")
	{
		users.GET("/:userId", h.GetProfile)

		me := users.Group("/me", middleware.Auth(h.authn))
		me.GET("", h.GetAccount)
		me.PATCH("", h.UpdateAccount)
		me.DELETE("", h.DeleteAccount)
		me.POST("/profile-pic", h.UploadProfilePic)
		me.DELETE("/profile-pic", h.DeleteProfilePic)
		me.POST("/cover-pic", h.UploadCoverPic)
		me.DELETE("/cover-pic", h.DeleteCoverPic)
	}

	companies := v1.Group("/companies")
	{
		companies.GET("/search", h.SearchCompanies)
		companies.GET("/:companyId", h.GetCompany)

		protected := companies.Group("", middleware.Auth(h.authn))
		protected.POST("", h.CreateCompany)
		protected.PATCH("/:companyId", h.UpdateCompany)
		protected.DELETE("/:companyId", h.DeleteCompany)
		protected.POST("/:companyId/logo", h.UploadCompanyLogo)
		protected.DELETE("/:companyId/logo", h.DeleteCompanyLogo)
		protected.POST("/:companyId/cover-pic", h.UploadCompanyCoverPic)
		protected.DELETE("/:companyId/cover-pic", h.DeleteCompanyCoverPic)
		protected.DELETE("/:companyId/hrs/:userId", h.KickHR)
		protected.POST("/:companyId/jobs", h.CreateJob)
		protected.GET("/:companyId/applications/export", h.ExportApplications)
	}

	jobs := v1.Group("/jobs")
	{
		jobs.GET("", h.SearchJobs)
		jobs.GET("/:jobId", h.GetJob)

		protected := jobs.Group("", middleware.Auth(h.authn))
		protected.PATCH("/:jobId", h.UpdateJob)
		protected.DELETE("/:jobId", h.DeleteJob)
		protected.GET("/:jobId/applications", h.ListApplications)
		protected.POST("/:jobId/apply", h.Apply)
		protected.PATCH("/:jobId/applications/:applicationId", h.ReviewApplication)
	}

	chats := v1.Group("/chats", middleware.Auth(h.authn))
	chats.GET("/:userId", h.GetChatHistory)

	v1.GET("/ws", h.hub.Serve)

	admin := v1.Group("/admin",
		middleware.Auth(h.authn),
		middleware.RequireRoles(models.UserRoleAdmin),
	)
	{
		admin.POST("/users/:userId/ban", h.BanUser)
		admin.DELETE("/users/:userId/ban", h.UnbanUser)
		admin.POST("/companies/:companyId/ban", h.BanCompany)
		admin.DELETE("/companies/:companyId/ban", h.UnbanCompany)
		admin.POST("/companies/:companyId/approve", h.ApproveCompany)
	}
}
