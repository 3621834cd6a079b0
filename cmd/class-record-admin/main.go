package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/app"
	"github.com/noah-isme/class-record-api/pkg/config"
	"github.com/noah-isme/class-record-api/pkg/database"
	"github.com/noah-isme/class-record-api/pkg/logger"
)

func main() {
	verbose := flag.Bool("v", false, "log debug output")
	flag.Parse()

	logr, err := logger.NewCLI(*verbose)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		logr.Fatal("failed to load config", zap.Error(err))
	}
	// The admin tool never serves dashboards and migrates only on request.
	cfg.Dashboard.CacheEnabled = false
	cfg.Database.AutoMigrate = false

	application, err := app.New(context.Background(), cfg, logr)
	if err != nil {
		logr.Fatal("failed to open record store", zap.Error(err))
	}

	cli := commandLine{
		migrate:  func(ctx context.Context) error { return database.Migrate(ctx, application.DB) },
		catalog:  application.Services.Catalog,
		teachers: application.Services.Auth,
		roster:   application.Repos.Teachers,
		out:      os.Stdout,
	}
	args := append([]string{os.Args[0]}, flag.Args()...)
	err = cli.run(args)
	_ = application.Close()
	if err != nil {
		if err != errHelp {
			logr.Error("command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
