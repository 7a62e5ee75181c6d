package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/you/hrplusauth/internal/app"
	"github.com/you/hrplusauth/internal/config"
	"github.com/you/hrplusauth/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("hrplus-auth", "json", nil).Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.Setup("hrplus-auth", cfg.LogFormat, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("app", "error", err)
		os.Exit(1)
	}
}
