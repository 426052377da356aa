package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qui-ball/virtualGM/internal/config"
	"github.com/qui-ball/virtualGM/internal/logger"
	"github.com/qui-ball/virtualGM/internal/services"
	"github.com/qui-ball/virtualGM/internal/services/events"
	"github.com/qui-ball/virtualGM/pkg/turn"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	appLog, closer, err := logger.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	appLog.Info("Starting virtualGM",
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"experience_flow", string(cfg.ExperienceFlow))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// After the first signal a second one gets the default handling.
	go func() {
		<-ctx.Done()
		stop()
	}()

	llmService, err := services.NewLLMService(cfg, appLog)
	if err != nil {
		appLog.Error("Failed to create LLM service", "error", err)
		os.Exit(1)
	}

	initCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		appLog.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	var sink turn.EventSink
	if cfg.RedisURL != "" {
		client, err := events.Connect(initCtx, cfg.RedisURL, appLog)
		if err != nil {
			// The event feed is optional; play continues without it.
			appLog.Warn("Event feed disabled", "error", err)
		} else {
			defer func() {
				if err := client.Close(); err != nil {
					appLog.Error("Error closing redis connection", "error", err)
				}
			}()
			sink = events.NewBroadcaster(client, appLog)
			appLog.Info("Event feed enabled", "redis_url", cfg.RedisURL)
		}
	}

	err = runSession(ctx, sessionOptions{
		Config: cfg,
		Model:  llmService,
		In:     os.Stdin,
		Out:    os.Stdout,
		Logger: appLog,
		Events: sink,
	})
	if err != nil {
		appLog.Error("Session failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
