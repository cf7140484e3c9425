// common.go
//
// Shared request helpers for the gigcrew handlers
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
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/middleware"
	"github.com/localnerve/gigcrew/internal/types"
	"github.com/localnerve/gigcrew/internal/utils"
	"go.uber.org/zap"
)

// caller returns the authenticated identity or a 401.
func caller(c *fiber.Ctx) (*authz.Identity, error) {
	id := middleware.Identity(c)
	if id == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	return id, nil
}

// parseBody decodes a JSON body. An empty body decodes to the zero value.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return types.Validation("Invalid input")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.Validation("Invalid " + key)
	}
	return n, nil
}

// handleError writes domain errors as-is and logs anything else as a 500.
func handleError(c *fiber.Ctx, err error, op string) error {
	if handled, rerr := utils.CustomErrorResponse(c, err); handled {
		return rerr
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.ErrorResponse(c, fe.Message, fe.Code, op)
	}
	logging.L().Error("request failed",
		zap.String("op", op),
		zap.String("path", c.Path()),
		zap.Error(err))
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, op)
}
