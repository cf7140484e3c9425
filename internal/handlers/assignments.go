// assignments.go
//
// Job crew assignment handlers
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

// AssignmentsHandler handles job role assignment routes
type AssignmentsHandler struct {
	DB *gorm.DB
}

// AssignmentListResponse is the body of an assignment list.
type AssignmentListResponse struct {
	Assignments []services.AssignmentResult `json:"assignments"`
}

// AssignmentResponse wraps a single assignment.
type AssignmentResponse struct {
	Assignment *services.AssignmentResult `json:"assignment"`
}

// ListAssignments handles GET /api/v1/jobs/:jobId/assignments
// @Summary List a job's crew assignments
// @Tags Assignments
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} AssignmentListResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/assignments [get]
func (h *AssignmentsHandler) ListAssignments(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	assignments, err := services.ListAssignments(c.UserContext(), h.DB, id, c.Params("jobId"))
	if err != nil {
		return handleError(c, err, "listAssignments")
	}
	return c.JSON(AssignmentListResponse{Assignments: assignments})
}

// CreateAssignment handles POST /api/v1/jobs/:jobId/assignments
// @Summary Assign a user to a job
// @Tags Assignments
// @Accept json
// @Produce json
// @Param jobId path string true "Job ID"
// @Param body body services.CreateAssignmentInput true "Assignment"
// @Success 201 {object} AssignmentResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/assignments [post]
func (h *AssignmentsHandler) CreateAssignment(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var input services.CreateAssignmentInput
	if err := parseBody(c, &input); err != nil {
		return handleError(c, err, "createAssignment")
	}

	assignment, err := services.CreateAssignment(c.UserContext(), h.DB, id, c.Params("jobId"), input)
	if err != nil {
		return handleError(c, err, "createAssignment")
	}
	return c.Status(fiber.StatusCreated).JSON(AssignmentResponse{Assignment: assignment})
}

// UpdateAssignment handles PATCH /api/v1/jobs/:jobId/assignments/:assignmentId
// @Summary Change an assignment's role or notes
// @Tags Assignments
// @Accept json
// @Produce json
// @Param jobId path string true "Job ID"
// @Param assignmentId path string true "Assignment ID"
// @Param body body services.UpdateAssignmentInput true "Fields to change"
// @Success 200 {object} AssignmentResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/assignments/{assignmentId} [patch]
func (h *AssignmentsHandler) UpdateAssignment(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var input services.UpdateAssignmentInput
	if err := parseBody(c, &input); err != nil {
		return handleError(c, err, "updateAssignment")
	}

	assignment, err := services.UpdateAssignment(c.UserContext(), h.DB, id, c.Params("jobId"), c.Params("assignmentId"), input)
	if err != nil {
		return handleError(c, err, "updateAssignment")
	}
	return c.JSON(AssignmentResponse{Assignment: assignment})
}

// DeleteAssignment handles DELETE /api/v1/jobs/:jobId/assignments/:assignmentId
// @Summary Remove a user from a job
// @Tags Assignments
// @Param jobId path string true "Job ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/assignments/{assignmentId} [delete]
func (h *AssignmentsHandler) DeleteAssignment(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	if err := services.DeleteAssignment(c.UserContext(), h.DB, id, c.Params("jobId"), c.Params("assignmentId")); err != nil {
		return handleError(c, err, "deleteAssignment")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
