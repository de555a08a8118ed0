package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActorApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.Actor("system"))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c))
	})
	return app
}

func TestActor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "header present", header: "alice", want: "alice"},
		{name: "header trimmed", header: "  bob  ", want: "bob"},
		{name: "header blank", header: "   ", want: "system"},
		{name: "header absent", want: "system"},
	}

	app := newActorApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(middleware.UserIDHeader, tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestUserID_WithoutActor(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("[" + middleware.UserID(c) + "]")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(body))
}

func TestActor_ValueOutlivesRequest(t *testing.T) {
	var kept []string
	app := fiber.New()
	app.Use(middleware.Actor("system"))
	app.Get("/", func(c *fiber.Ctx) error {
		kept = append(kept, middleware.UserID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	users := []string{"aaaaaaaa", "bbbbbbbb", "cccccccc", "dddddddd"}
	for _, u := range users {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.UserIDHeader, u)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, users, kept)
}
