package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type apiResponse struct {
	Status  string            `json:"status"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, apiResponse{
		Status: "ok",
		Data:   data,
	})
}

func fail(c echo.Context, status int, message string, details map[string]string) error {
	return c.JSON(status, apiResponse{
		Status:  "error",
		Message: message,
		Details: details,
	})
}

func failValidation(c echo.Context, details map[string]string) error {
	return fail(c, http.StatusUnprocessableEntity, "Validation failed", details)
}

func internalError(c echo.Context, message string) error {
	return fail(c, http.StatusInternalServerError, message, nil)
}

func decodeJSONBody(c echo.Context, dest any) error {
	decoder := json.NewDecoder(c.Request().Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("body must be valid JSON: %w", err)
	}
	return nil
}
