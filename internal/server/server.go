// server.go
//
// Fiber application assembly for the gigcrew job service
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

package server

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/handlers"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/middleware"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/storage"
	"github.com/localnerve/gigcrew/internal/types"
	"github.com/localnerve/gigcrew/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/localnerve/gigcrew/docs/api" // Swagger docs
)

// Options are the dependencies of the HTTP application.
type Options struct {
	Config   *config.Config
	DB       *gorm.DB
	Verifier services.TokenVerifier
	Store    *storage.Local

	// Registry receives the HTTP metrics; nil uses a fresh registry.
	Registry *prometheus.Registry
	// AccessLog receives request log lines; nil means stdout.
	AccessLog io.Writer
}

// New builds the fiber application with all middleware and routes.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             64 * 1024 * 1024,
	})

	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	// Global middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: accessLog,
	}))
	app.Use(compress.New())

	// Prometheus metrics
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := fiberprometheus.NewWithRegistry(registry, "gigcrew", "http", "", nil)
	metrics.RegisterAt(app, "/metrics")
	app.Use(metrics.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{Cfg: opts.Config, DB: opts.DB}
	if opts.Store != nil {
		health.StorageCheck = opts.Store.Check
	}
	app.Get("/health", health.Health)

	api := app.Group("/api/v1", middleware.VersionMiddleware())

	// Signed transfer routes authenticate by signature, not bearer token.
	files := &handlers.FilesHandler{DB: opts.DB, Store: opts.Store}
	app.Put(storage.UploadPath, files.Upload)
	app.Get(storage.DownloadPath, files.Download)

	auth := middleware.Authenticate(opts.Verifier, opts.DB)

	me := &handlers.MeHandler{DB: opts.DB}
	api.Get("/me", auth, me.GetMe)

	jobs := &handlers.JobsHandler{DB: opts.DB}
	api.Get("/jobs", auth, jobs.ListJobs)
	api.Post("/jobs", auth, jobs.CreateJob)
	api.Get("/jobs/:jobId", auth, jobs.GetJob)
	api.Patch("/jobs/:jobId", auth, jobs.UpdateJob)

	assignments := &handlers.AssignmentsHandler{DB: opts.DB}
	api.Get("/jobs/:jobId/assignments", auth, assignments.ListAssignments)
	api.Post("/jobs/:jobId/assignments", auth, assignments.CreateAssignment)
	api.Patch("/jobs/:jobId/assignments/:assignmentId", auth, assignments.UpdateAssignment)
	api.Delete("/jobs/:jobId/assignments/:assignmentId", auth, assignments.DeleteAssignment)

	paperwork := &handlers.PaperworkHandler{DB: opts.DB}
	api.Get("/jobs/:jobId/notes", auth, paperwork.GetNotes)
	api.Patch("/jobs/:jobId/notes", auth, paperwork.UpdateNotes)
	api.Get("/jobs/:jobId/paperwork/plugup", auth, paperwork.GetPlugUp)
	api.Patch("/jobs/:jobId/paperwork/plugup", auth, paperwork.ReplacePlugUp)
	api.Post("/jobs/:jobId/paperwork/plugup/export-pdf", auth, exportLimiter(opts.Config), paperwork.ExportPlugUp)

	api.Get("/jobs/:jobId/files", auth, files.ListFiles)
	api.Post("/jobs/:jobId/files/initiate-upload", auth, files.InitiateUpload)
	api.Get("/jobs/:jobId/files/:fileId/download-url", auth, files.DownloadURL)
	api.Delete("/jobs/:jobId/files/:fileId", auth, files.DeleteFile)

	audit := &handlers.AuditHandler{DB: opts.DB}
	api.Get("/audit-events", auth, audit.ListEvents)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, "[404] Resource Not Found", fiber.StatusNotFound, types.TypeNotFound)
	})

	return app
}

// exportLimiter caps PDF exports per caller per minute. A zero limit disables it.
func exportLimiter(cfg *config.Config) fiber.Handler {
	limit := 0
	if cfg != nil {
		limit = cfg.ExportRateLimit
	}
	return limiter.New(limiter.Config{
		Next: func(*fiber.Ctx) bool {
			return limit <= 0
		},
		Max:          limit,
		Expiration:   time.Minute,
		KeyGenerator: middleware.IdentityKey,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.ErrorResponse(c, "Too many exports, retry later", fiber.StatusTooManyRequests, "rate_limit")
		},
	})
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	if handled, rerr := utils.CustomErrorResponse(c, err); handled {
		return rerr
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.ErrorResponse(c, fe.Message, fe.Code, "http")
	}

	logging.L().Error("unhandled request error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, "unknown")
}
