package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidInput, nethttp.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("línea 2: %w", domain.ErrInvalidQuantity), nethttp.StatusBadRequest, "INVALID_QUANTITY"},
		{domain.ErrProductNotFound, nethttp.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{domain.ErrInsufficientStock, nethttp.StatusConflict, "INSUFFICIENT_STOCK"},
		{fmt.Errorf("%w: %w", domain.ErrMovementIndeterminate, errors.New("timeout")), nethttp.StatusGatewayTimeout, "INDETERMINATE"},
		{fmt.Errorf("%w: %w", domain.ErrMovementPersistFailed, errors.New("conn reset")), nethttp.StatusServiceUnavailable, "PERSIST_FAILED"},
		{&domain.OrderLineApplyError{OrderID: "o1", AppliedLines: []string{"l1"}, FailedLine: "l2", Cause: domain.ErrInsufficientStock},
			nethttp.StatusConflict, "ORDER_PARTIAL"},
		{&domain.OrderReversalError{OrderID: "o1", Failed: map[string]error{"m1": errors.New("x")}},
			nethttp.StatusConflict, "ORDER_REVERSAL_PARTIAL"},
		{errors.New("inesperado"), nethttp.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tc.err) })
			resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, string(body), `"code":"`+tc.code+`"`)
		})
	}
}

// Un error no mapeado no expone su texto al cliente, pero queda en el log.
func TestWriteError_InternoNoFiltraDetalle(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})
	app := fiber.New()
	app.Use(RequestLogger(log))
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, errors.New("pq: relation \"inventory_movements\" does not exist"))
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), `"code":"INTERNAL"`)
	assert.Contains(t, string(body), `"message":"error interno"`)
	assert.NotContains(t, string(body), "inventory_movements")

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "inventory_movements")
}
