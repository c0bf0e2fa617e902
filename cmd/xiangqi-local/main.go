package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/server/game"
	httpserver "xiangqi/internal/server/http"
)

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux / bsd
		cmd = exec.Command("xdg-open", url)
	}

	_ = cmd.Start() // 没有图形界面的环境会失败，忽略
}

func main() {
	cfgPath := flag.String("config", "xiangqi.json", "config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	webDir := flag.String("web", "", "directory with index.html / js (overrides config)")
	level := flag.String("difficulty", "", "default difficulty: easy / normal / hard")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	noBrowser := flag.Bool("no-browser", false, "do not open a browser")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *webDir != "" {
		cfg.WebDir = *webDir
	}
	if *level != "" {
		cfg.Difficulty = *level
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg.SetupLogging()

	eng := engine.New(cfg.EngineOptions(), cfg.Predictor())
	games := game.NewManager(eng)
	h := httpserver.NewHandler(games, cfg.DifficultyLevel(), cfg.Budget())
	srv := &http.Server{Addr: cfg.Addr, Handler: httpserver.NewRouter(h, cfg.WebDir)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Infof("listening on %s, serving static from %s", cfg.Addr, cfg.WebDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		games.Shutdown()
		return err
	})
	if !*noBrowser {
		// 延迟 100ms 打开默认浏览器，否则可能服务器未启动完成
		go func() {
			time.Sleep(100 * time.Millisecond)
			openBrowser("http://127.0.0.1" + cfg.Addr)
		}()
	}

	if err := g.Wait(); err != nil {
		logrus.Fatalf("server: %v", err)
	}
}
