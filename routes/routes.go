package routes

import (
	"net/http"

	"ari-backend/config"
	"ari-backend/controllers"
	"ari-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries the controllers that hold services.
type Deps struct {
	Config  *config.Config
	Wizard  *controllers.WizardController
	Demo    *controllers.DemoController
	Webhook *controllers.WebhookController
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/demo-requests", deps.Demo.Create)
	r.POST("/webhooks/twilio", deps.Webhook.TwilioInbound)

	requireAuth := utils.AuthMiddleware(deps.Config.SupabaseJWTSecret)

	auth := r.Group("/auth")
	auth.Use(requireAuth)
	{
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		api.GET("/demo-requests", deps.Demo.List)

		// Event routes
		events := api.Group("/events")
		{
			events.GET("", controllers.GetEvents)
			events.GET("/:id", controllers.GetEvent)
			events.PUT("/:id", controllers.UpdateEvent)
			events.DELETE("/:id", controllers.DeleteEvent)
			events.GET("/:id/dashboard", controllers.GetEventDashboard)

			events.GET("/:id/guests", controllers.GetGuests)
			events.POST("/:id/guests", controllers.CreateGuest)
			events.GET("/:id/guests/export", controllers.ExportGuests)
			events.PUT("/:id/guests/:guestId", controllers.UpdateGuest)
			events.DELETE("/:id/guests/:guestId", controllers.DeleteGuest)

			events.GET("/:id/reminders", controllers.GetReminderSchedule)
			events.PUT("/:id/reminders", controllers.UpdateReminderSchedule)

			events.GET("/:id/messages", controllers.GetEventMessages)
			events.GET("/:id/messages/attention", controllers.GetEventAttentionMessages)
		}

		// Message routes
		messages := api.Group("/messages")
		{
			messages.GET("/attention", controllers.GetAttentionMessages)
			messages.GET("/stats", controllers.GetMessageStats)
			messages.POST("/:messageId/resolve", controllers.ResolveMessage)
		}

		api.GET("/guests/template.csv", deps.Wizard.Template)

		// Wizard routes
		wizard := api.Group("/wizard")
		{
			wizard.POST("", deps.Wizard.Start)
			wizard.GET("/:id", deps.Wizard.Get)
			wizard.PATCH("/:id/basic-info", deps.Wizard.PatchBasicInfo)
			wizard.PATCH("/:id/invitation", deps.Wizard.PatchInvitation)
			wizard.POST("/:id/invitation/image", deps.Wizard.UploadImage)
			wizard.GET("/:id/invitation/preview", deps.Wizard.Preview)
			wizard.POST("/:id/guests/import", deps.Wizard.ImportGuests)
			wizard.POST("/:id/guests", deps.Wizard.AddGuest)
			wizard.DELETE("/:id/guests", deps.Wizard.ClearGuests)
			wizard.PUT("/:id/guests/:index", deps.Wizard.UpdateGuest)
			wizard.DELETE("/:id/guests/:index", deps.Wizard.DeleteGuest)
			wizard.PATCH("/:id/scheduling", deps.Wizard.PatchScheduling)
			wizard.POST("/:id/next", deps.Wizard.Next)
			wizard.POST("/:id/back", deps.Wizard.Back)
			wizard.POST("/:id/launch", deps.Wizard.Launch)
		}
	}

	return r
}
