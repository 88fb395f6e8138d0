package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legal-case-platform/backend/internal/access"
	"legal-case-platform/backend/internal/audit"
	auditrepo "legal-case-platform/backend/internal/audit/repository"
	"legal-case-platform/backend/internal/config"
	"legal-case-platform/backend/internal/db"
	"legal-case-platform/backend/internal/identity"
	"legal-case-platform/backend/internal/server"
	statshandler "legal-case-platform/backend/internal/stats/handler"
	statsservice "legal-case-platform/backend/internal/stats/service"
	otelsetup "legal-case-platform/backend/internal/telemetry/otel"
	timerhandler "legal-case-platform/backend/internal/timer/handler"
	timerregistry "legal-case-platform/backend/internal/timer/registry"
	timerservice "legal-case-platform/backend/internal/timer/service"
	tshandler "legal-case-platform/backend/internal/timesheet/handler"
	tsrepo "legal-case-platform/backend/internal/timesheet/repository"
	tsservice "legal-case-platform/backend/internal/timesheet/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	telemetry, err := otelsetup.Setup(ctx, otelsetup.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "legal-case-platform",
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	telemetry.SetGlobal()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	var verifier *identity.Verifier
	if cfg.JWTPublicKey != "" {
		pub, err := identity.ParsePublicKey(cfg.JWTPublicKey)
		if err != nil {
			log.Fatalf("jwt public key: %v", err)
		}
		verifier = identity.NewVerifier(pub, cfg.JWTIssuer, cfg.JWTAudience)
	} else if cfg.Env == "production" {
		log.Fatal("JWT_PUBLIC_KEY must be set when APP_ENV=production")
	} else {
		log.Println("JWT_PUBLIC_KEY not set; token auth disabled (development only)")
	}

	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(database))

	entryRepo := tsrepo.NewPostgresRepository(database)
	writer := tsservice.NewWriter(entryRepo, cfg.DefaultHourlyRate)

	var discard timerservice.DiscardPolicy
	if cfg.TimerDiscardPolicy == "save" {
		discard = &timerservice.SaveBeforeDiscard{Writer: writer}
	}
	timers := timerservice.New(timerregistry.New(), writer, discard)

	policy, err := access.NewOPAEvaluator()
	if err != nil {
		log.Fatalf("access policy: %v", err)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := server.New(server.Deps{
		Timer:     timerhandler.New(timers, auditor),
		Timesheet: tshandler.New(writer, policy, auditor),
		Stats:     statshandler.New(statsservice.NewAggregator(entryRepo), policy, auditor),
		Verifier:  verifier,
		Auditor:   auditor,
		DB:        database,
		Policy:    policy,
	})

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("gRPC server stopped")
}
