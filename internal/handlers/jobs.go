// jobs.go
//
// Job handlers
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

// JobsHandler handles job routes
type JobsHandler struct {
	DB *gorm.DB
}

// JobListResponse is the body of a job list.
type JobListResponse struct {
	Jobs []services.JobResult `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job *services.JobResult `json:"job"`
}

// ListJobs handles GET /api/v1/jobs
// @Summary List jobs
// @Description List the jobs visible to the caller. Archived jobs are hidden unless a status is given.
// @Tags Jobs
// @Produce json
// @Param q query string false "Case-insensitive match on name or reference"
// @Param status query string false "Draft, Active or Archived"
// @Success 200 {object} JobListResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	jobs, err := services.ListJobs(c.UserContext(), h.DB, id, services.ListJobsInput{
		Q:      c.Query("q"),
		Status: c.Query("status"),
	})
	if err != nil {
		return handleError(c, err, "listJobs")
	}
	return c.JSON(JobListResponse{Jobs: jobs})
}

// GetJob handles GET /api/v1/jobs/:jobId
// @Summary Get a job
// @Tags Jobs
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} JobResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId} [get]
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	job, err := services.GetJob(c.UserContext(), h.DB, id, c.Params("jobId"))
	if err != nil {
		return handleError(c, err, "getJob")
	}
	return c.JSON(JobResponse{Job: job})
}

// CreateJob handles POST /api/v1/jobs
// @Summary Create a job
// @Description Global Admin and PM only. References are unique.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param body body services.CreateJobInput true "Job"
// @Success 201 {object} JobResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var input services.CreateJobInput
	if err := parseBody(c, &input); err != nil {
		return handleError(c, err, "createJob")
	}

	job, err := services.CreateJob(c.UserContext(), h.DB, id, input)
	if err != nil {
		return handleError(c, err, "createJob")
	}
	return c.Status(fiber.StatusCreated).JSON(JobResponse{Job: job})
}

// UpdateJob handles PATCH /api/v1/jobs/:jobId
// @Summary Update a job
// @Description Partial update. The reference cannot change; a null notes value clears the notes.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param jobId path string true "Job ID"
// @Param body body services.UpdateJobInput true "Fields to change"
// @Success 200 {object} JobResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /jobs/{jobId} [patch]
func (h *JobsHandler) UpdateJob(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var input services.UpdateJobInput
	if err := parseBody(c, &input); err != nil {
		return handleError(c, err, "updateJob")
	}

	job, err := services.UpdateJob(c.UserContext(), h.DB, id, c.Params("jobId"), input)
	if err != nil {
		return handleError(c, err, "updateJob")
	}
	return c.JSON(JobResponse{Job: job})
}
