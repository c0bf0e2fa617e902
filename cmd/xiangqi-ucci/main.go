package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/ucci"
)

func main() {
	cfgPath := flag.String("config", "xiangqi.json", "config file")
	serverMode := flag.Bool("s", false, "open server mode")
	addr := flag.String("addr", ":1234", "server mode listening address")
	logFile := flag.String("log-file", "ucci.log", "log file (stdout is the protocol channel)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if !*serverMode && *logFile != "" {
		cfg.LogFile = *logFile
	}
	cfg.SetupLogging()

	eng := engine.New(cfg.EngineOptions(), cfg.Predictor())
	if *serverMode {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := ucci.ServeTCP(ctx, *addr, eng, cfg.DifficultyLevel(), cfg.Budget()); err != nil {
			logrus.Errorf("listen failure, err=%v", err)
		}
		return
	}
	ucci.Deal(eng, cfg.DifficultyLevel(), cfg.Budget(), os.Stdin, os.Stdout)
}
