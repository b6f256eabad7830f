package strategies

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupHandlerApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	db, dbMock := setupMockDB(t)
	handler := NewHandler(NewStore(db), zap.NewNop())

	app := fiber.New()
	handler.RegisterRoutes(app)
	return app, dbMock
}

func TestListStrategies(t *testing.T) {
	app, dbMock := setupHandlerApp(t)

	rows := strategyRows().
		AddRow(1, "SampleStrategy", "bot-aaa", "trend", "binance", "momentum,spot", "Follows the trend.", "", nil).
		AddRow(2, "OtherStrategy", "bot-bbb", "reversal", "binance", "", "", "", nil)
	dbMock.ExpectQuery("SELECT \\* FROM `strategies`").
		WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/strategies/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "SampleStrategy")
	assert.Contains(t, string(body), "momentum")
}

func TestGetStrategy(t *testing.T) {
	app, dbMock := setupHandlerApp(t)

	rows := strategyRows().
		AddRow(1, "SampleStrategy", "bot-aaa", "trend", "binance", "", "", "", nil)
	dbMock.ExpectQuery("SELECT \\* FROM `strategies` WHERE name = \\?").
		WithArgs("SampleStrategy", 1).
		WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/strategies/SampleStrategy", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "trend")
}

func TestGetStrategyNotFound(t *testing.T) {
	app, dbMock := setupHandlerApp(t)

	dbMock.ExpectQuery("SELECT \\* FROM `strategies` WHERE name = \\?").
		WithArgs("Unknown", 1).
		WillReturnRows(strategyRows())

	req := httptest.NewRequest(http.MethodGet, "/strategies/Unknown", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
