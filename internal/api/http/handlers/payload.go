package handlers

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// decodePayload reads a JSON object body. Numbers stay json.Number so ids
// are not rounded through float64.
func decodePayload(c *fiber.Ctx) (validation.Payload, error) {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil, apperrors.NewValidationError("request body is required", nil)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload validation.Payload
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	return payload, nil
}

func pathName(c *fiber.Ctx) string {
	raw := c.Params("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"field": "id"})
	}
	return id, nil
}
