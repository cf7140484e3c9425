// me.go
//
// Current user handler
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

// MeHandler describes the caller
type MeHandler struct {
	DB *gorm.DB
}

// MeResponse wraps the caller.
type MeResponse struct {
	User *services.MeResult `json:"user"`
}

// GetMe handles GET /api/v1/me
// @Summary Describe the calling user
// @Tags Identity
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /me [get]
func (h *MeHandler) GetMe(c *fiber.Ctx) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	me, err := services.GetMe(c.UserContext(), h.DB, id)
	if err != nil {
		return handleError(c, err, "getMe")
	}
	return c.JSON(MeResponse{User: me})
}
