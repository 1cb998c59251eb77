package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/techfest-sliet/festd/internal/authz"
	"github.com/techfest-sliet/festd/internal/domain"
	"github.com/techfest-sliet/festd/internal/http/handlers"
	festmw "github.com/techfest-sliet/festd/internal/http/middleware"
	"github.com/techfest-sliet/festd/internal/platform/blob"
	"github.com/techfest-sliet/festd/internal/platform/mailer"
	"github.com/techfest-sliet/festd/internal/repo/postgres"
	"github.com/techfest-sliet/festd/internal/service"
	"github.com/techfest-sliet/festd/internal/token"
	"github.com/techfest-sliet/festd/pkg/config"
	"github.com/techfest-sliet/festd/pkg/database"
	"github.com/techfest-sliet/festd/pkg/events"
	"github.com/techfest-sliet/festd/pkg/logger"
	mw "github.com/techfest-sliet/festd/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The event bus is fire and forget; a missing NATS only costs the
	// notifications, never the API.
	var bus events.Publisher
	if eventBus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
	} else {
		bus = eventBus
		defer eventBus.Close()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	tokens, err := token.NewEngine()
	if err != nil {
		logger.Error("initialize token engine", "error", err)
		os.Exit(1)
	}

	blobs, err := blob.NewStore(cfg.Images.Dir)
	if err != nil {
		logger.Error("initialize blob store", "error", err)
		os.Exit(1)
	}

	mail := pickMailer(cfg.Email)

	// Repositories
	usersRepo := postgres.NewUsersRepo(pool)
	domainsRepo := postgres.NewDomainsRepo(pool)
	eventsRepo := postgres.NewEventsRepo(pool)
	workshopsRepo := postgres.NewWorkshopsRepo(pool)
	teamsRepo := postgres.NewTeamsRepo(pool)
	participationRepo := postgres.NewParticipationRepo(pool)
	paymentsRepo := postgres.NewPaymentsRepo(pool)
	relationsRepo := postgres.NewRelationsRepo(pool)

	// Services
	paymentSvc := service.NewPaymentService(paymentsRepo, bus, cfg.Payment, cfg.Auth.InstitutionDomain)
	policy := authz.NewEngine(relationsRepo, paymentSvc)
	authSvc := service.NewAuthService(usersRepo, tokens, mail, bus, cfg.Auth, cfg.Frontend.URL)
	profileSvc := service.NewProfileService(usersRepo, teamsRepo, blobs)
	domainSvc := service.NewDomainService(domainsRepo, usersRepo, policy, blobs)
	eventSvc := service.NewEventService(eventsRepo, participationRepo, usersRepo, policy, blobs, bus)
	workshopSvc := service.NewWorkshopService(workshopsRepo, participationRepo, usersRepo, policy, blobs, bus)
	teamSvc := service.NewTeamService(teamsRepo, usersRepo, policy, bus)

	seedSuperAdmin(ctx, usersRepo, cfg.Auth)

	auth := festmw.NewAuth(usersRepo, []byte(cfg.Auth.JWTSecret))
	limiter := festmw.NewRateLimiter(redisClient, festmw.RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
	})

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.URL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.RequestID)
	r.Use(mw.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Mount("/auth", handlers.NewAuthHandler(authSvc, cfg.Auth, limiter.Middleware()).Routes())
	r.Mount("/domains", handlers.NewDomainHandler(domainSvc, auth).Routes())
	r.Mount("/events", handlers.NewEventHandler(eventSvc, auth).Routes())
	r.Mount("/workshops", handlers.NewWorkshopHandler(workshopSvc, auth).Routes())
	r.Mount("/teams", handlers.NewTeamHandler(teamSvc, eventSvc, auth).Routes())
	r.Get("/departments", handlers.Departments)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Mount("/profile", handlers.NewProfileHandler(profileSvc, eventSvc, workshopSvc, paymentSvc).Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("starting api", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func pickMailer(cfg config.EmailConfig) mailer.Service {
	switch {
	case cfg.DevMode:
		return mailer.NewDevMailer()
	case cfg.MailerSendKey != "":
		return mailer.NewMailer(cfg.MailerSendKey, cfg.SMTPFromName, cfg.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
}

// seedSuperAdmin creates the first SUPER_ADMIN from env when the
// table has none, so a fresh deployment is administrable.
func seedSuperAdmin(ctx context.Context, users postgres.UsersRepo, cfg config.AuthConfig) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	n, err := users.CountSuperAdmins(ctx)
	if err != nil || n > 0 {
		return
	}
	hash, err := argon2id.CreateHash(cfg.AdminPassword, argon2id.DefaultParams)
	if err != nil {
		logger.Error("seed super admin: hash", "error", err)
		return
	}
	u, err := users.Create(ctx, &domain.User{
		Name:         "Administrator",
		DOB:          time.Now(),
		Email:        cfg.AdminEmail,
		Role:         domain.RoleSuperAdmin,
		Verified:     true,
		PasswordHash: hash,
	})
	if err != nil {
		logger.Error("seed super admin", "error", err)
		return
	}
	logger.Info("seeded super admin", "user_id", u.ID)
}
