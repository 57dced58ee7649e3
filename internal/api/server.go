package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csihub/codefest-api/docs"
	v1 "github.com/csihub/codefest-api/internal/api/handler/v1"
	"github.com/csihub/codefest-api/internal/api/middleware"
	"github.com/csihub/codefest-api/internal/config"
	"github.com/csihub/codefest-api/internal/pkg/upload"
	"github.com/csihub/codefest-api/internal/repository"
	"github.com/csihub/codefest-api/internal/repository/dao"
	"github.com/csihub/codefest-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	registrationDAO := dao.NewRegistrationDAO(db)
	repo := repository.NewRegistrationRepository(registrationDAO)
	mailer := service.NewMailer(conf.SMTP)

	registrationSvc := service.NewRegistrationService(repo, mailer)
	adminSvc, err := service.NewAdminService(repo, mailer, conf.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("service.NewAdminService -> %w", err)
	}
	checkinSvc := service.NewCheckinService(repo, conf.API.PublicBaseURL)

	hub := v1.NewWatchHub(adminSvc)
	go hub.Run()

	registrationHandler := v1.NewRegistrationHandler(registrationSvc, s.initUploader(), hub)
	adminHandler := v1.NewAdminHandler(conf.API, adminSvc, hub)
	checkinHandler := v1.NewCheckinHandler(checkinSvc, hub)
	emailHandler := v1.NewEmailHandler(mailer)

	s.MountHandlers(registrationHandler, adminHandler, checkinHandler, emailHandler, hub)

	return s, nil
}

// initUploader builds the Cloudinary store when it is configured. Without
// it the upload endpoint reports itself unavailable instead of failing
// the whole boot.
func (s *Server) initUploader() v1.ProofUploader {
	conf := s.Config.Cloudinary
	if conf == nil || conf.CloudName == "" {
		zap.L().Warn("cloudinary is not configured, proof uploads disabled")
		return nil
	}

	store, err := upload.NewCloudinaryStore(conf.CloudName, conf.APIKey, conf.APISecret, conf.Folder)
	if err != nil {
		zap.L().Error("cloudinary init failed, proof uploads disabled", zap.Error(err))
		return nil
	}

	return store
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	registrationHandler *v1.RegistrationHandler,
	adminHandler *v1.AdminHandler,
	checkinHandler *v1.CheckinHandler,
	emailHandler *v1.EmailHandler,
	hub *v1.WatchHub,
) {
	const basePath = "/api"

	public := s.Router.Group(basePath)
	{
		public.POST("/registration", registrationHandler.HandleCreateRegistration)
		public.GET("/registration", registrationHandler.HandleListRegistrations)
		public.POST("/registration/validate", registrationHandler.HandleValidateStep)
		public.POST("/registration/upload", registrationHandler.HandleUploadProof)
		public.POST("/registeremail", emailHandler.HandleSendEmail)
		public.POST("/admin/login", adminHandler.HandleLogin)
		public.POST("/checkin/verify", checkinHandler.HandleVerify)
		public.POST("/checkin/scan", checkinHandler.HandleScan)
	}

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.GET("/registrations", adminHandler.HandleListRegistrations)
		admin.GET("/registrations/watch", hub.HandleWatch)
		admin.GET("/registrations/export", adminHandler.HandleExport)
		admin.GET("/registrations/:id", adminHandler.HandleGetRegistration)
		admin.PATCH("/registrations/:id", adminHandler.HandleUpdateRegistration)
		admin.DELETE("/registrations/:id", adminHandler.HandleDeleteRegistration)
		admin.PUT("/registrations/:id/status", adminHandler.HandleSetStatus)
		admin.PUT("/registrations/:id/arrived", adminHandler.HandleSetArrived)
		admin.POST("/registrations/:id/qr", checkinHandler.HandleIssueQR)
	}

	// The link baked into the QR pass; scanners hit it directly.
	s.Router.GET("/checkin/:token", checkinHandler.HandleVerifyLink)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "CSI Codefest API"
	docs.SwaggerInfo.Description = "Event registration, admin review and QR check-in for Codefest."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
