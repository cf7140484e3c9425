// health.go
//
// Health checks for the gigcrew job service
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

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Identity     string            `json:"identity"`
	Storage      string            `json:"storage"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, detail string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	msg := fmt.Sprintf("%s %s: %v", component, detail, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	logging.L().Warn("health check failed", zap.String("component", component), zap.Error(err))
}

// HealthCheck reports on the database, the identity provider (when remote)
// and the file storage directory.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, storageCheck func() error) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database", "connection error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database", "ping failed", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if identityURL := cfg.IdentityURL(); identityURL == "" {
		result.Identity = "local"
	} else if err := utils.PingService(ctx, identityURL, utils.IdentityPingTimeout); err != nil {
		result.Identity = "unreachable"
		result.fail("identity", "ping failed", err)
	} else {
		result.Identity = "ok"
		result.Details["identity_url"] = identityURL
	}
	result.Details["auth_mode"] = strings.ToLower(cfg.AuthMode)

	if storageCheck == nil {
		result.Storage = "unknown"
	} else if err := storageCheck(); err != nil {
		result.Storage = "error"
		result.fail("storage", "check failed", err)
	} else {
		result.Storage = "ok"
	}

	if result.Status == "healthy" {
		logging.L().Debug("health check passed")
	}

	return result
}
