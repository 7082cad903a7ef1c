package main

import (
	"fmt"
	"os"

	"github.com/nurpe/gigpay/internal/auth"
	"github.com/nurpe/gigpay/internal/config"
	"github.com/nurpe/gigpay/internal/db"
	"github.com/nurpe/gigpay/internal/excel"
	httphandler "github.com/nurpe/gigpay/internal/http"
	"github.com/nurpe/gigpay/internal/http/middleware"
	"github.com/nurpe/gigpay/internal/logger"
	"github.com/nurpe/gigpay/internal/pdf"
	"github.com/nurpe/gigpay/internal/repository"
	"github.com/nurpe/gigpay/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	profileRepo := repository.NewProfileRepository(database)
	contractRepo := repository.NewContractRepository(database)
	jobRepo := repository.NewJobRepository(database)
	reportRepo := repository.NewReportRepository(database)

	contractService := service.NewContractService(contractRepo)
	paymentService := service.NewPaymentService(jobRepo, profileRepo, pdf.NewGenerator(), cfg)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, paymentService, reportService, log)
	profileMiddleware := middleware.Profile(tokenParser, profileRepo)
	router := httphandler.NewRouter(handler, profileMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting gigpay service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
