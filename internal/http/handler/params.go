package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"taskapi/internal/service"
)

// pathID parses the :id route parameter.
func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, service.ErrInvalidID
	}
	return id, nil
}

// bindParams fills out from the query string, then from a JSON body if one was sent.
// Body fields win over query fields.
func bindParams(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return err
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return err
		}
	}
	return nil
}

func invalidBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body or parameters are malformed")
}
