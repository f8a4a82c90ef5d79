package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/taskdesk/taskdesk-api/internal/handler"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/service"
)

type mockScanner struct {
	processed int
	err       error
	calls     int
}

func (m *mockScanner) Scan(_ context.Context, _ time.Time) (int, error) {
	m.calls++
	return m.processed, m.err
}

func newAdminApp(scanner *mockScanner, actor models.User) *fiber.App {
	app := fiber.New()
	h := handler.NewAdminHandler(scanner, zerolog.New(io.Discard))
	admin := app.Group("/api/v1/admin", asUser(actor), middleware.RequireRole(models.RoleAdmin))
	admin.Post("/overdue-scan", h.OverdueScan)
	return app
}

func TestAdminOverdueScan(t *testing.T) {
	scanner := &mockScanner{processed: 3}
	app := newAdminApp(scanner, models.User{ID: 1, Role: models.RoleAdmin, Active: true})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/admin/overdue-scan", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, scanner.calls)

	var envelope apiEnvelope
	decodeResponse(t, resp, &envelope)
	var data map[string]int
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, 3, data["processed"])
}

func TestAdminOverdueScanRequiresAdmin(t *testing.T) {
	scanner := &mockScanner{}
	app := newAdminApp(scanner, models.User{ID: 2, Role: models.RoleManager, Active: true})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/admin/overdue-scan", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Zero(t, scanner.calls)
}

func TestAdminOverdueScanNoSystemActor(t *testing.T) {
	scanner := &mockScanner{err: service.ErrNoSystemActor}
	app := newAdminApp(scanner, models.User{ID: 1, Role: models.RoleAdmin, Active: true})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/admin/overdue-scan", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
