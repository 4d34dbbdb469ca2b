package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/iurnickita/ordersync/internal/auth"
	"github.com/iurnickita/ordersync/internal/config"
	"github.com/iurnickita/ordersync/internal/handler"
	"github.com/iurnickita/ordersync/internal/logger"
	"github.com/iurnickita/ordersync/internal/service"
	"github.com/iurnickita/ordersync/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "", "путь к yaml-файлу конфигурации")
	flag.Parse()

	cfg, err := config.GetConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}

	auth := auth.NewAuth(cfg.Handler.APIKey)
	service := service.NewService(cfg.Service, store, zaplog)

	// конвейер синхронизации живет, пока не придет сигнал остановки
	service.Start()
	defer service.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return handler.Serve(ctx, cfg.Handler, auth, service, zaplog)
}
