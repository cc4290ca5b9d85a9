package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haider-deku/3d-marketplace/config"
	"github.com/haider-deku/3d-marketplace/internal/adminapi"
	"github.com/haider-deku/3d-marketplace/internal/app"
	"github.com/haider-deku/3d-marketplace/internal/webserver"
)

var (
	version    = "develop"
	configfile = flag.String("c", "marketplace.yml", "config yaml file")
	initdb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer    = flag.Bool("v", false, "show version")
)

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version)
		return
	}

	cfg, err := config.LoadConfig(*configfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "init application:", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	adminapi.Init()
	server := webserver.NewAdminServer(application)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.S().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Error("server stopped: ", err)
	}
}
