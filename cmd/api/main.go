package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"queue-manager-api/internal/config"
	"queue-manager-api/internal/logging"
	"queue-manager-api/pkg/server"
)

func main() {
	modeFlag := flag.String("mode", "", "Run mode: server or lambda (overrides APP_MODE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New(config.LogConfig{}).WithError(err).Fatal("Failed to load configuration")
	}

	if *modeFlag != "" {
		mode, err := config.ParseMode(*modeFlag)
		if err != nil {
			logging.New(cfg.Log).WithError(err).Fatal("Invalid -mode flag")
		}
		cfg.Mode = mode
		cfg = config.AdaptForMode(cfg)
	}

	logger := logging.New(cfg.Log)
	logger.WithField("mode", cfg.Mode).Info("Starting queue manager API")

	switch cfg.Mode {
	case config.ModeLambda:
		bootstrapper := server.NewBootstrapper(cfg, logger)
		fn := bootstrapper.NewFunction(bootstrapper.NewCache())
		awslambda.Start(fn.Invoke)

	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := server.NewLocalServer(cfg, logger).Run(ctx); err != nil {
			logger.WithError(err).Error("Server stopped")
			stop()
			os.Exit(1)
		}
	}
}
