package main

//	@title						PulseGrid API
//	@version					0.1.0
//	@description				IoT sensor anomaly detection service API.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/pulsegrid/pulsegrid/api/swagger"
	"github.com/pulsegrid/pulsegrid/internal/auth"
	"github.com/pulsegrid/pulsegrid/internal/config"
	"github.com/pulsegrid/pulsegrid/internal/detect"
	"github.com/pulsegrid/pulsegrid/internal/event"
	"github.com/pulsegrid/pulsegrid/internal/registry"
	"github.com/pulsegrid/pulsegrid/internal/server"
	"github.com/pulsegrid/pulsegrid/internal/version"
	"github.com/pulsegrid/pulsegrid/internal/ws"
	"github.com/pulsegrid/pulsegrid/pkg/plugin"
	"go.uber.org/zap"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Println(version.Info())
			return
		case "token":
			runIssueToken(os.Args[2:])
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.New(viperCfg)

	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("PulseGrid server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	// Create shared services
	bus := event.NewBus(logger.Named("event"))
	logger.Info("event bus created", zap.String("component", "event"))

	reg := registry.New(logger.Named("registry"))

	// Register all modules (compile-time composition)
	modules := []plugin.Plugin{
		detect.New(),
	}
	for _, m := range modules {
		if err := reg.Register(m); err != nil {
			logger.Fatal("failed to register module", zap.Error(err))
		}
	}

	// Validate dependency graph and API versions
	if err := reg.Validate(); err != nil {
		logger.Fatal("module validation failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reg.InitAll(ctx, bus, func(name string) plugin.Dependencies {
		return plugin.Dependencies{
			Config: cfg.Sub("modules." + name),
			Logger: logger.Named(name),
			Bus:    bus,
		}
	}); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}

	if err := reg.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	// Optional bearer auth: enabled only when a signing secret is configured.
	var tokens *auth.TokenService
	var authMiddleware server.Middleware
	if jwtSecret := viperCfg.GetString("auth.jwt_secret"); jwtSecret != "" {
		accessTTL := viperCfg.GetDuration("auth.access_token_ttl")
		if accessTTL == 0 {
			accessTTL = time.Hour
		}
		tokens = auth.NewTokenService([]byte(jwtSecret), accessTTL)
		authMiddleware = auth.Middleware(tokens)
		logger.Info("bearer authentication enabled",
			zap.String("component", "auth"),
			zap.Duration("access_token_ttl", accessTTL),
		)
	} else {
		logger.Warn("auth.jwt_secret not set, API is unauthenticated",
			zap.String("component", "auth"),
		)
	}

	// WebSocket handler for real-time detection updates.
	wsHandler := ws.NewHandler(tokens, bus, logger.Named("ws"))
	logger.Info("websocket handler initialized", zap.String("component", "ws"))

	addr := viperCfg.GetString("server.host") + ":" + viperCfg.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	logger.Info("HTTP server configured",
		zap.String("component", "server"),
		zap.String("addr", addr),
	)

	readyCheck := server.ReadinessChecker(func(_ context.Context) error {
		return nil
	})
	srv := server.New(addr, reg, logger, readyCheck, server.Options{
		Auth:           authMiddleware,
		DevMode:        viperCfg.GetBool("server.dev_mode"),
		RateLimitRPS:   viperCfg.GetFloat64("server.rate_limit_rps"),
		RateLimitBurst: viperCfg.GetInt("server.rate_limit_burst"),
	}, wsHandler)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("PulseGrid server ready", zap.String("addr", addr))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	reg.StopAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("PulseGrid server stopped")
}

// runIssueToken prints a signed access token for an ingestion client.
// Usage: pulsegrid token -subject edge-gateway-1 [-config path]
func runIssueToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	subject := fs.String("subject", "", "client identity to embed in the token")
	configPath := fs.String("config", "", "path to configuration file")
	_ = fs.Parse(args)

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "token: -subject is required")
		os.Exit(2)
	}

	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	jwtSecret := viperCfg.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		fmt.Fprintln(os.Stderr, "token: auth.jwt_secret is not configured")
		os.Exit(1)
	}

	accessTTL := viperCfg.GetDuration("auth.access_token_ttl")
	if accessTTL == 0 {
		accessTTL = time.Hour
	}

	tokens := auth.NewTokenService([]byte(jwtSecret), accessTTL)
	token, err := tokens.IssueAccessToken(*subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
