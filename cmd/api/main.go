package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rakibul/healthdir-api/internal/config"
	adminhandler "github.com/rakibul/healthdir-api/internal/handler/admin"
	authhandler "github.com/rakibul/healthdir-api/internal/handler/auth"
	directoryhandler "github.com/rakibul/healthdir-api/internal/handler/directory"
	doctorhandler "github.com/rakibul/healthdir-api/internal/handler/doctor"
	healthhandler "github.com/rakibul/healthdir-api/internal/handler/health"
	patienthandler "github.com/rakibul/healthdir-api/internal/handler/patient"
	"github.com/rakibul/healthdir-api/internal/middleware"
	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository/postgres"
	"github.com/rakibul/healthdir-api/internal/router"
	"github.com/rakibul/healthdir-api/internal/service/access"
	appointmentService "github.com/rakibul/healthdir-api/internal/service/appointment"
	authService "github.com/rakibul/healthdir-api/internal/service/auth"
	chamberService "github.com/rakibul/healthdir-api/internal/service/chamber"
	doctorService "github.com/rakibul/healthdir-api/internal/service/doctor"
	patientService "github.com/rakibul/healthdir-api/internal/service/patient"
	roleService "github.com/rakibul/healthdir-api/internal/service/role"
	verificationService "github.com/rakibul/healthdir-api/internal/service/verification"
	"github.com/rakibul/healthdir-api/pkg/auth"
	"github.com/rakibul/healthdir-api/pkg/metrics"
	"github.com/rakibul/healthdir-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	model.RegisterValidations()

	m := metrics.NewMetrics("healthdir")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	chamberRepo := postgres.NewChamberRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	tokenExpiry := time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	tokens := auth.NewJWTService(cfg.JWT.Secret, tokenExpiry)
	hasher := security.NewBcryptHasher(0)

	roleSvc := roleService.NewService(adminRepo, doctorRepo, patientRepo, userRepo)
	gate := access.NewGate(roleSvc)

	authSvc := authService.NewService(userRepo, doctorRepo, patientRepo, roleSvc, hasher, tokens, tokenExpiry)
	doctorSvc := doctorService.NewService(doctorRepo, chamberRepo)
	patientSvc := patientService.NewService(patientRepo)
	chamberSvc := chamberService.NewService(chamberRepo, doctorRepo)
	verificationSvc := verificationService.NewService(doctorRepo, userRepo, outboxRepo, m)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, outboxRepo, appointmentService.Config{
		EnforceSlotConflicts: cfg.Scheduling.EnforceSlotConflicts,
	}, m)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(tokens, gate)

	authHandler := authhandler.NewHandler(authSvc)
	directoryHandler := directoryhandler.NewHandler(doctorSvc)
	doctorHandler := doctorhandler.NewHandler(doctorSvc, chamberSvc, appointmentSvc, verificationSvc)
	patientHandler := patienthandler.NewHandler(patientSvc, appointmentSvc)
	adminHandler := adminhandler.NewHandler(verificationSvc, doctorSvc, chamberSvc, roleSvc)
	healthHandler := healthhandler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler,
		directoryHandler,
		doctorHandler,
		patientHandler,
		adminHandler,
		healthHandler,
		router.RouterConfig{
			RateLimit:     cfg.RateLimit.RPS,
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "healthdir_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
