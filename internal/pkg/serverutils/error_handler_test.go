package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotThere = errors.New("thing not found")

type sampleRequest struct {
	Message string  `json:"message" validate:"required"`
	Weight  float64 `json:"weight" validate:"min=0,max=1"`
}

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(StatusMapping{Err: errNotThere, Status: fiber.StatusNotFound}))
	app.Get("/", handler)
	return app
}

func decode(t *testing.T, app *fiber.App) (int, ErrorBody) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandler_MappedError(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return fmt.Errorf("lookup: %w", errNotThere)
	})

	status, body := decode(t, app)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "thing not found")
}

func TestErrorHandler_FiberError(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	})

	status, body := decode(t, app)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "query parameter q is required", body.Message)
}

func TestErrorHandler_ValidationError(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return ValidateRequest(sampleRequest{Weight: 2})
	})

	status, body := decode(t, app)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotNil(t, body.Details)
}

func TestErrorHandler_UnknownErrorIsOpaque(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return errors.New("dial tcp 10.0.0.1:5432: connection refused")
	})

	status, body := decode(t, app)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "hola", Weight: 0.5}))

	err := ValidateRequest(sampleRequest{Weight: 0.5})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "Message", verr.Fields[0].Field)
	assert.Equal(t, "required", verr.Fields[0].Rule)
}
