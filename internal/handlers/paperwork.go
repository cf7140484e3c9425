// paperwork.go
//
// Notes and plug-up sheet handlers
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

// PaperworkHandler handles job notes and plug-up sheet routes
type PaperworkHandler struct {
	DB *gorm.DB
}

// NotesResponse wraps a job's notes.
type NotesResponse struct {
	Notes *services.JobNotesResult `json:"notes"`
}

// PlugUpResponse wraps a plug-up sheet.
type PlugUpResponse struct {
	Sheet *services.PlugUpSheetResult `json:"sheet"`
}

// GetNotes handles GET /api/v1/jobs/:jobId/notes
// @Summary Get a job's notes
// @Tags Paperwork
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} NotesResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/notes [get]
func (h *PaperworkHandler) GetNotes(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	notes, err := services.GetJobNotes(c.UserContext(), h.DB, id, c.Params("jobId"))
	if err != nil {
		return handleError(c, err, "getNotes")
	}
	return c.JSON(NotesResponse{Notes: notes})
}

// UpdateNotes handles PATCH /api/v1/jobs/:jobId/notes
// @Summary Replace a job's notes
// @Tags Paperwork
// @Accept json
// @Produce json
// @Param jobId path string true "Job ID"
// @Param body body services.UpdateNotesInput true "Notes"
// @Success 200 {object} NotesResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/notes [patch]
func (h *PaperworkHandler) UpdateNotes(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var input services.UpdateNotesInput
	if err := parseBody(c, &input); err != nil {
		return handleError(c, err, "updateNotes")
	}

	notes, err := services.UpdateJobNotes(c.UserContext(), h.DB, id, c.Params("jobId"), input)
	if err != nil {
		return handleError(c, err, "updateNotes")
	}
	return c.JSON(NotesResponse{Notes: notes})
}

// GetPlugUp handles GET /api/v1/jobs/:jobId/paperwork/plugup
// @Summary Get a job's plug-up sheet
// @Description Rows are ordered by orderIndex. The sheet is created on first access.
// @Tags Paperwork
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} PlugUpResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/paperwork/plugup [get]
func (h *PaperworkHandler) GetPlugUp(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	sheet, err := services.GetPlugUpSheet(c.UserContext(), h.DB, id, c.Params("jobId"))
	if err != nil {
		return handleError(c, err, "getPlugUp")
	}
	return c.JSON(PlugUpResponse{Sheet: sheet})
}

// ReplacePlugUp handles PATCH /api/v1/jobs/:jobId/paperwork/plugup
// @Summary Replace a job's plug-up rows
// @Description The submitted rows become the whole sheet. Row ids are reissued.
// @Description A baseVersion rejects the write when the sheet has changed since it was read.
// @Tags Paperwork
// @Accept json
// @Produce json
// @Param jobId path string true "Job ID"
// @Param body body services.ReplacePlugUpInput true "Rows"
// @Success 200 {object} PlugUpResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/paperwork/plugup [patch]
func (h *PaperworkHandler) ReplacePlugUp(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var input services.ReplacePlugUpInput
	if err := parseBody(c, &input); err != nil {
		return handleError(c, err, "replacePlugUp")
	}

	sheet, err := services.ReplacePlugUpSheet(c.UserContext(), h.DB, id, c.Params("jobId"), input)
	if err != nil {
		return handleError(c, err, "replacePlugUp")
	}
	return c.JSON(PlugUpResponse{Sheet: sheet})
}

// ExportPlugUp handles POST /api/v1/jobs/:jobId/paperwork/plugup/export-pdf
// @Summary Export a plug-up sheet as PDF
// @Tags Paperwork
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} services.PlugUpExportResult
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/paperwork/plugup/export-pdf [post]
func (h *PaperworkHandler) ExportPlugUp(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	result, err := services.ExportPlugUpPDF(c.UserContext(), h.DB, id, c.Params("jobId"))
	if err != nil {
		return handleError(c, err, "exportPlugUp")
	}
	return c.JSON(result)
}
