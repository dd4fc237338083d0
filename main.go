package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ari-backend/config"
	"ari-backend/controllers"
	"ari-backend/models"
	"ari-backend/routes"
	"ari-backend/services"
	"ari-backend/wizard"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	if err := config.ConnectDB(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := models.Migrate(config.DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	sessions, closeSessions := newSessionStore(cfg)
	defer closeSessions()

	deps := routes.Deps{
		Config: cfg,
		Wizard: &controllers.WizardController{
			Sessions:      sessions,
			Launcher:      wizard.NewLauncher(services.NewEventStore(config.DB)),
			RedirectDelay: cfg.LaunchRedirectDelay,
		},
		Demo: &controllers.DemoController{
			Relay: services.NewDemoRelay(cfg.Web3FormsEndpoint, cfg.Web3FormsAccessKey, 10*time.Second),
		},
		Webhook: &controllers.WebhookController{
			Inbound:       services.NewInboundService(config.DB),
			AuthToken:     cfg.TwilioAuthToken,
			PublicBaseURL: cfg.PublicBaseURL,
		},
	}
	if cfg.StorageEnabled() {
		deps.Wizard.Images = services.NewImageStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket, 30*time.Second)
	}

	if cfg.TwilioEnabled() {
		sender := services.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.TwilioWhatsAppNumber)
		reminders := services.NewReminderService(config.DB, sender)
		if err := reminders.StartScheduler(cfg.ReminderCron); err != nil {
			log.Fatal().Err(err).Msg("Failed to start reminder scheduler")
		}
		defer reminders.Stop()
	} else {
		log.Warn().Msg("Twilio is not configured, invitations and reminders will not be sent")
	}

	r := routes.SetupRouter(deps)
	printRoutes(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

// newSessionStore keeps wizard sessions in Redis when REDIS_URL is set and
// in process memory otherwise.
func newSessionStore(cfg *config.Config) (services.SessionStore, func()) {
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, keeping wizard sessions in memory")
		return services.NewMemorySessionStore(cfg.WizardSessionTTL), func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid REDIS_URL")
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	store := services.NewRedisSessionStore(client, cfg.WizardSessionTTL)
	return store, func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
