// files.go
//
// Job file and signed transfer handlers
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
	"bytes"
	"errors"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/gigcrew/internal/services"
	"github.com/localnerve/gigcrew/internal/storage"
	"github.com/localnerve/gigcrew/internal/types"
	"gorm.io/gorm"
)

// FilesHandler handles job file metadata and signed transfer routes
type FilesHandler struct {
	DB    *gorm.DB
	Store *storage.Local
}

// FileListResponse is the body of a file list.
type FileListResponse struct {
	Files []services.JobFileResult `json:"files"`
}

// DownloadResponse wraps a signed download URL.
type DownloadResponse struct {
	Download *storage.SignedURL `json:"download"`
}

// ListFiles handles GET /api/v1/jobs/:jobId/files
// @Summary List a job's files
// @Description Internal files are only listed for callers allowed to read them.
// @Tags Files
// @Produce json
// @Param jobId path string true "Job ID"
// @Param area query string false "Shared or Internal"
// @Param category query string false "Category"
// @Success 200 {object} FileListResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/files [get]
func (h *FilesHandler) ListFiles(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	files, err := services.ListJobFiles(c.UserContext(), h.DB, id, c.Params("jobId"), services.ListFilesInput{
		Area:     c.Query("area"),
		Category: c.Query("category"),
	})
	if err != nil {
		return handleError(c, err, "listFiles")
	}
	return c.JSON(FileListResponse{Files: files})
}

// InitiateUpload handles POST /api/v1/jobs/:jobId/files/initiate-upload
// @Summary Register a file and get a signed upload URL
// @Tags Files
// @Accept json
// @Produce json
// @Param jobId path string true "Job ID"
// @Param body body services.InitiateUploadInput true "File metadata"
// @Success 201 {object} services.InitiateUploadResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/files/initiate-upload [post]
func (h *FilesHandler) InitiateUpload(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var input services.InitiateUploadInput
	if err := parseBody(c, &input); err != nil {
		return handleError(c, err, "initiateUpload")
	}

	result, err := services.InitiateUpload(c.UserContext(), h.DB, h.Store, id, c.Params("jobId"), input)
	if err != nil {
		return handleError(c, err, "initiateUpload")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// DownloadURL handles GET /api/v1/jobs/:jobId/files/:fileId/download-url
// @Summary Get a signed download URL for a file
// @Tags Files
// @Produce json
// @Param jobId path string true "Job ID"
// @Param fileId path string true "File ID"
// @Success 200 {object} DownloadResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/files/{fileId}/download-url [get]
func (h *FilesHandler) DownloadURL(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	signed, err := services.FileDownloadURL(c.UserContext(), h.DB, h.Store, id, c.Params("jobId"), c.Params("fileId"))
	if err != nil {
		return handleError(c, err, "downloadUrl")
	}
	return c.JSON(DownloadResponse{Download: signed})
}

// DeleteFile handles DELETE /api/v1/jobs/:jobId/files/:fileId
// @Summary Delete a file
// @Tags Files
// @Param jobId path string true "Job ID"
// @Param fileId path string true "File ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId}/files/{fileId} [delete]
func (h *FilesHandler) DeleteFile(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	if err := services.DeleteJobFile(c.UserContext(), h.DB, h.Store, id, c.Params("jobId"), c.Params("fileId")); err != nil {
		return handleError(c, err, "deleteFile")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Upload handles PUT /api/v1/files/upload
// @Summary Upload file content with a signed URL
// @Tags Files
// @Accept octet-stream
// @Param payload query string true "Signed payload"
// @Param sig query string true "Signature"
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /files/upload [put]
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	grant, err := h.verifyGrant(c, storage.ActionUpload)
	if err != nil {
		return handleError(c, err, "upload")
	}

	if err := h.Store.Write(grant.ObjectKey, bytes.NewReader(c.Body())); err != nil {
		return handleError(c, err, "upload")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Download handles GET /api/v1/files/download
// @Summary Download file content with a signed URL
// @Tags Files
// @Produce octet-stream
// @Param payload query string true "Signed payload"
// @Param sig query string true "Signature"
// @Param name query string false "Download file name"
// @Success 200 {file} file
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /files/download [get]
func (h *FilesHandler) Download(c *fiber.Ctx) error {
	grant, err := h.verifyGrant(c, storage.ActionDownload)
	if err != nil {
		return handleError(c, err, "download")
	}

	data, err := h.Store.Read(grant.ObjectKey)
	if errors.Is(err, storage.ErrNotFound) {
		return handleError(c, types.NotFound("File not found"), "download")
	}
	if err != nil {
		return handleError(c, err, "download")
	}

	name := strings.ReplaceAll(c.Query("name"), `"`, "")
	if name == "" {
		name = path.Base(grant.ObjectKey)
	}
	c.Attachment(name)
	return c.Send(data)
}

func (h *FilesHandler) verifyGrant(c *fiber.Ctx, action storage.Action) (*storage.Grant, error) {
	payload, sig := c.Query("payload"), c.Query("sig")
	if payload == "" || sig == "" {
		return nil, types.Validation("Missing payload or sig")
	}
	grant, err := h.Store.Signer().Verify(payload, sig, action)
	if err != nil {
		return nil, types.Forbidden("Invalid or expired signature")
	}
	return grant, nil
}
