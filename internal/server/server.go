package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventnest/config"
	"github.com/farhanmaulana/eventnest/internal/handlers"
	"github.com/farhanmaulana/eventnest/internal/mailer"
	"github.com/farhanmaulana/eventnest/internal/middleware"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	smtpCfg, err := config.LoadSMTPConfig()
	if err != nil {
		return fmt.Errorf("failed to load SMTP config: %v", err)
	}

	m, err := mailer.NewSMTPMailer(smtpCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %v", err)
	}

	r := gin.Default()

	setupRoutes(r, db, m)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, m mailer.Mailer) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.MailerMiddleware(m))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.POST("/token/refresh", handlers.RefreshToken)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		eventProtected := protected.Group("/events")
		{
			eventProtected.GET("", handlers.ListEvents)
			eventProtected.GET("/:id", handlers.GetEvent)
			eventProtected.POST("/:id/interested", handlers.ToggleInterest)
			eventProtected.GET("/:id/interested_users", handlers.ListInterestedUsers)
		}

		experienceProtected := protected.Group("/experiences")
		{
			experienceProtected.POST("", handlers.CreateExperience)
			experienceProtected.GET("", handlers.ListExperiences)
			experienceProtected.GET("/:id", handlers.GetExperience)
			experienceProtected.DELETE("/:id", handlers.DeleteExperience)
		}
	}

	admin := r.Group("/v1")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnlyMiddleware())
	{
		eventAdmin := admin.Group("/events")
		{
			eventAdmin.POST("", handlers.CreateEvent)
			eventAdmin.PUT("/:id", handlers.UpdateEvent)
			eventAdmin.PATCH("/:id", handlers.UpdateEvent)
			eventAdmin.DELETE("/:id", handlers.DeleteEvent)
			eventAdmin.POST("/:id/send_notification", handlers.SendNotification)
		}
	}
}
