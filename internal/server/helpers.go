package server

import (
	"errors"

	"opsdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseRequestID extracts the approval request id route parameter.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseRequestID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if id == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request ID"))
		return "", errResponseWritten
	}
	return id, nil
}

// statusForError maps an application error to its HTTP status.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeDuplicatePending, models.CodeAlreadyResolved, models.CodeAlreadyConsumed:
		return fiber.StatusConflict
	case models.CodeStoreUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError renders a service-layer error with the right status.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}

// errorResult buckets an error for metrics labels.
func errorResult(err error) string {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return "error"
	}
	switch appErr.Code {
	case models.CodeValidation:
		return "invalid"
	case models.CodeDuplicatePending:
		return "duplicate"
	case models.CodeNotFound:
		return "not_found"
	case models.CodeAlreadyResolved, models.CodeAlreadyConsumed:
		return "replayed"
	default:
		return "error"
	}
}
