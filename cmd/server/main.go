package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/romanzh1/skillpath/internal/auth"
	"github.com/romanzh1/skillpath/internal/handler"
	"github.com/romanzh1/skillpath/internal/repository"
	"github.com/romanzh1/skillpath/internal/service"
	"github.com/romanzh1/skillpath/pkg/generator"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.S().Info("logger initialized")

	if err := godotenv.Load(); err != nil {
		zap.S().Debug("load .env file", zap.Error(err))
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	postgresPort := os.Getenv("POSTGRES_PORT")
	postgresUser := os.Getenv("POSTGRES_USER")
	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	postgresDB := os.Getenv("POSTGRES_DB")
	jwtSecret := os.Getenv("JWT_SECRET")
	generatorURL := os.Getenv("GENERATOR_URL")
	generatorClientID := os.Getenv("GENERATOR_CLIENT_ID")
	generatorClientSecret := os.Getenv("GENERATOR_CLIENT_SECRET")
	generatorTokenURL := os.Getenv("GENERATOR_TOKEN_URL")
	listenAddr := os.Getenv("LISTEN_ADDR")
	roadmapPolicy := os.Getenv("ROADMAP_POLICY")

	if postgresHost == "" || jwtSecret == "" || generatorURL == "" {
		zap.S().Fatal("missing required environment variables")
	}
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		postgresHost, postgresPort, postgresUser, postgresPassword, postgresDB)

	repo, err := repository.NewDB(dsn, 10, 20)
	if err != nil {
		zap.S().Error("connect to PostgreSQL", zap.Error(err), zap.String("host", postgresHost))
		os.Exit(1)
	}
	defer repo.Close()

	if err = repo.Up("migrations"); err != nil {
		zap.S().Error("run migrations", zap.Error(err))
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(jwtSecret, 24*time.Hour)
	if err != nil {
		zap.S().Error("create token manager", zap.Error(err))
		os.Exit(1)
	}

	gen := generator.NewClient(generatorURL, generatorClientID, generatorClientSecret, generatorTokenURL)

	svc, err := service.NewService(repo, gen, tokens, service.Config{
		RoadmapPolicy: service.RoadmapPolicy(roadmapPolicy),
	})
	if err != nil {
		zap.S().Error("create service", zap.Error(err))
		os.Exit(1)
	}

	h := handler.New(svc, tokens)

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.S().Infow("server listening", "addr", listenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Error("serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.S().Error("shutdown", zap.Error(err))
	}
	zap.S().Info("server stopped")
}
