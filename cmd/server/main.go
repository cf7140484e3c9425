// main.go
//
// Entry point for the gigcrew job service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of gigcrew.
// gigcrew is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// gigcrew is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with gigcrew.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/database"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/server"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/storage"
	"go.uber.org/zap"
)

// @title gigcrew API
// @version 1.0.0
// @description Crew, paperwork and file service for live event jobs
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/gigcrew
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	verifier, err := services.NewVerifier(cfg)
	if err != nil {
		logger.Fatal("failed to create token verifier", zap.Error(err))
	}

	store, err := storage.NewLocal(cfg.StorageDir, storage.NewSigner(cfg.SigningSecret, cfg.SignedURLTTL), cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal("failed to open file storage", zap.Error(err))
	}
	defer store.Close()

	app := server.New(server.Options{
		Config:   cfg,
		DB:       db,
		Verifier: verifier,
		Store:    store,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("gracefully shutting down")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("authMode", cfg.AuthMode),
		zap.String("dbType", cfg.DBType))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
