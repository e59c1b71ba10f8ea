package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fantasyrun/runner-market/backend/models"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
)

// UserIDKey is the fiber local holding the caller's user id.
const UserIDKey = "user_id"

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusOK, models.NewSuccessResponse(data, message))
}

func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, http.StatusCreated, models.NewSuccessResponse(data, message))
}

func SendPage(c *fiber.Ctx, data interface{}, limit, offset, count int) error {
	return SendJSON(c, http.StatusOK, models.NewPageResponse(data, limit, offset, count))
}

func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	return SendJSON(c, statusCode, models.NewErrorResponse(code, message, details))
}

func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, string(marketplace.KindValidation), message, details)
}

func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func SendForbidden(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusForbidden, string(marketplace.KindPermission), message, nil)
}

// StatusForKind maps an engine error kind to its HTTP status.
func StatusForKind(kind marketplace.ErrorKind) int {
	switch kind {
	case marketplace.KindNotFound:
		return http.StatusNotFound
	case marketplace.KindNotOwned, marketplace.KindPermission:
		return http.StatusForbidden
	case marketplace.KindValidation:
		return http.StatusBadRequest
	case marketplace.KindDuplicateActiveListing, marketplace.KindBidTooLow, marketplace.KindCardCurrentlyListed:
		return http.StatusConflict
	case marketplace.KindMarketplace:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// SendMarketError writes the error envelope for an engine error. Only the safe
// Message leaves the process, the wrapped cause is logged.
func SendMarketError(c *fiber.Ctx, err error) error {
	var merr *marketplace.Error
	if !errors.As(err, &merr) {
		merr = &marketplace.Error{Kind: marketplace.KindDatabase, Message: "internal error", Err: err}
	}

	status := StatusForKind(merr.Kind)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("kind", string(merr.Kind)),
			slog.Any("error", err))
	}
	return SendError(c, status, string(merr.Kind), merr.Message, nil)
}

// UserID returns the id stored by the identity middleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// GetIPAddress extracts the client IP address
func GetIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.IP()
}

func GetUserAgent(c *fiber.Ctx) string {
	return c.Get("User-Agent")
}
