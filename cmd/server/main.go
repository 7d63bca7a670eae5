package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"roster-portal/internal/audit"
	auditrepo "roster-portal/internal/audit/repository"
	"roster-portal/internal/config"
	"roster-portal/internal/db"
	"roster-portal/internal/devotp"
	devotphandler "roster-portal/internal/devotp/handler"
	healthhandler "roster-portal/internal/health/handler"
	identityhandler "roster-portal/internal/identity/handler"
	identityservice "roster-portal/internal/identity/service"
	otprepo "roster-portal/internal/otp/repository"
	"roster-portal/internal/otp/sms"
	playerhandler "roster-portal/internal/player/handler"
	playerrepo "roster-portal/internal/player/repository"
	playerservice "roster-portal/internal/player/service"
	"roster-portal/internal/policy/engine"
	policyrepo "roster-portal/internal/policy/repository"
	"roster-portal/internal/security"
	"roster-portal/internal/server"
	sessionrepo "roster-portal/internal/session/repository"
	"roster-portal/internal/telemetry"
	"roster-portal/internal/telemetry/otel"
	"roster-portal/internal/telemetry/producer"
	userrepo "roster-portal/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	namePattern, err := regexp.Compile(cfg.NamePattern)
	if err != nil {
		log.Fatalf("NAME_PATTERN: %v", err)
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "roster-portal", false)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	// Telemetry events go to Kafka when brokers are configured, otherwise
	// straight to the OTLP log pipeline.
	var emitter telemetry.EventEmitter
	if brokers := cfg.TelemetryKafkaBrokersList(); len(brokers) > 0 {
		topic := cfg.TelemetryKafkaTopic
		if topic == "" {
			topic = "roster-telemetry"
		}
		kp := producer.NewKafka(brokers, topic)
		defer kp.Close()
		emitter = kp
	} else if cfg.OTLPEndpoint != "" {
		emitter = otel.NewEventEmitter(providers.LoggerProvider)
	}

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	otps := otprepo.NewPostgresRepository(conn)
	players := playerrepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)
	policies := policyrepo.NewPostgresRepository(conn)

	evaluator := engine.NewOPAEvaluator(policies)
	auditor := audit.NewLogger(audits, nil)

	var sender sms.Sender
	var devStore devotp.Store
	if cfg.OTPReturnToClient {
		if cfg.Env == "production" {
			log.Fatal("OTP_RETURN_TO_CLIENT must not be enabled in production")
		}
		devStore = devotp.NewMemoryStore()
	} else {
		sender = sms.NewSMSLocalClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
	}

	authSvc := identityservice.NewAuthService(
		users, otps, sessions,
		hasher, tokens, evaluator, sender, devStore,
		namePattern, cfg.OTPTTL(), cfg.RefreshTTL(),
	)
	playerSvc := playerservice.NewPlayerService(players, users, evaluator)

	deps := server.Deps{
		Tokens:      tokens,
		Auth:        identityhandler.NewHTTPHandler(authSvc, auditor, emitter),
		Player:      playerhandler.NewHTTPHandler(playerSvc, users, auditor),
		Health:      healthhandler.NewHTTPHandler(conn, evaluator),
		CORSOrigins: cfg.CORSOriginsJoined(),
	}
	if devStore != nil {
		deps.DevOTP = devotphandler.NewHTTPHandler(devStore)
	}
	app := server.New(deps)

	go func() {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down http server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async telemetry drain before tearing down the exporters.
	time.Sleep(telemetry.ShutdownDrainDuration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("http server stopped")
}
