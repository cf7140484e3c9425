// audit.go
//
// Activity log handlers
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/gigcrew/internal/services"
	"gorm.io/gorm"
)

// AuditHandler handles activity log routes
type AuditHandler struct {
	DB *gorm.DB
}

// AuditListResponse is the body of an activity log query.
type AuditListResponse struct {
	Events []services.AuditEventResult `json:"events"`
}

// ListEvents handles GET /api/v1/audit-events
// @Summary List audit events
// @Description Newest first. Without jobId the caller needs visibility of every job.
// @Tags Audit
// @Produce json
// @Param jobId query string false "Job ID"
// @Param limit query int false "1 to 200, default 50"
// @Success 200 {object} AuditListResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /audit-events [get]
func (h *AuditHandler) ListEvents(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return handleError(c, err, "listAuditEvents")
	}

	events, err := services.ListAuditEvents(c.UserContext(), h.DB, id, services.ListAuditInput{
		JobID: c.Query("jobId"),
		Limit: limit,
	})
	if err != nil {
		return handleError(c, err, "listAuditEvents")
	}
	return c.JSON(AuditListResponse{Events: events})
}
