package httpapi

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandler renders handler errors as JSON. Domain errors are mapped to
// HTTP statuses here so handlers can return service errors unchanged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(errorResponse{
		Error:   utils.StatusMessage(code),
		Message: msg,
	})
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, "no weather data for requested location"
	case errors.Is(err, weather.ErrDayNotFound):
		return fiber.StatusNotFound, "requested date is outside the forecast window"
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound, "location not found"
	case errors.Is(err, weather.ErrNoProviders):
		return fiber.StatusBadGateway, "no weather providers configured"
	case errors.Is(err, weather.ErrNoData):
		return fiber.StatusBadGateway, "weather providers are unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "weather providers did not answer in time"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
}
