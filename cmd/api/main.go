package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bestworkers-api/internal/config"
	"github.com/bestworkers-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/bestworkers-api/internal/infrastructure/jwt"
	"github.com/bestworkers-api/internal/infrastructure/memory"
	redisinfra "github.com/bestworkers-api/internal/infrastructure/redis"
	"github.com/bestworkers-api/internal/infrastructure/smtp"
	"github.com/bestworkers-api/internal/infrastructure/sns"
	"github.com/bestworkers-api/internal/pkg/logging"
	"github.com/bestworkers-api/internal/pkg/otp"
	"github.com/bestworkers-api/internal/pkg/pin"
	transporthttp "github.com/bestworkers-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(logging.New(cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}
	gen, err := otp.NewGenerator(cfg.OTPDigits)
	if err != nil {
		return err
	}

	deps := &transporthttp.Deps{
		Mailer:       smtp.NewMailer(cfg),
		JWTProvider:  jwtProvider,
		OTPGenerator: gen,
		Hasher:       pin.Hasher{},
	}
	if err := wireStores(ctx, cfg, deps); err != nil {
		return err
	}

	// SNS SMS sender (optional).
	if cfg.SMSEnabled {
		if sender, err := sns.NewSender(cfg); err == nil {
			deps.SMSSender = sender
		} else {
			slog.Warn("SNS sender not available", "err", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv,
			"store", cfg.StoreBackend, "otp_store", cfg.OTPStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// wireStores selects the account/profile and OTP backends from cfg.
func wireStores(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) error {
	var dynamoClient *dynamodb.Client
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		dynamoClient = newDynamo(ctx, cfg)
		deps.Accounts = dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts, cfg.DynamoTables.AccountKeys)
		deps.Profiles = dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles)
	case config.BackendMemory:
		slog.Warn("using in-memory stores; data is lost on restart")
		deps.Accounts = memory.NewAccountStore()
		deps.Profiles = memory.NewProfileStore()
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.OTPStore {
	case config.BackendDynamo:
		if dynamoClient == nil {
			dynamoClient = newDynamo(ctx, cfg)
		}
		deps.OTPs = dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs)
	case config.BackendRedis:
		client, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		deps.OTPs = redisinfra.NewOTPStore(client)
	case config.BackendMemory:
		deps.OTPs = memory.NewOTPStore()
	default:
		return fmt.Errorf("unknown OTP_STORE %q", cfg.OTPStore)
	}
	return nil
}

// newDynamo builds the client and creates any missing tables.
func newDynamo(ctx context.Context, cfg *config.Config) *dynamodb.Client {
	client := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
	return client
}
