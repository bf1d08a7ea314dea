package router

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()

	show := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := PathParam[int64](r, "id")
		if err != nil {
			WriteError(w, err)
			return
		}
		fmt.Fprintf(w, "user %d", id)
	})
	asset := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "asset %s", r.PathValue("file"))
	})
	item := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "item %s", r.PathValue("code"))
	})

	table, err := NewTable(
		Route{Method: "get", Path: "/users/:id", Action: "controllers.Users.Show", Handler: show},
		Route{Method: "GET", Path: "/assets/*file", Action: "controllers.Assets.At", Handler: asset},
		Route{Method: "GET", Path: "/items/$code<[a-z]{3}>", Action: "controllers.Items.Get", Handler: item, Modifiers: []string{"nocsrf"}},
	)
	require.NoError(t, err)
	return table
}

type adapterCase struct {
	name    string
	handler func(t *testing.T, table *Table) func(*http.Request) (int, string)
}

func serve(h http.Handler) func(*http.Request) (int, string) {
	return func(r *http.Request) (int, string) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code, rec.Body.String()
	}
}

var adapterCases = []adapterCase{
	{"servemux", func(t *testing.T, table *Table) func(*http.Request) (int, string) {
		return serve(Handler(table))
	}},
	{"echo", func(t *testing.T, table *Table) func(*http.Request) (int, string) {
		e := echo.New()
		MountEcho(e, table)
		return serve(e)
	}},
	{"gin", func(t *testing.T, table *Table) func(*http.Request) (int, string) {
		gin.SetMode(gin.TestMode)
		engine := gin.New()
		MountGin(engine, table)
		return serve(engine)
	}},
	{"fiber", func(t *testing.T, table *Table) func(*http.Request) (int, string) {
		app := fiber.New()
		MountFiber(app, table)
		return func(r *http.Request) (int, string) {
			resp, err := app.Test(r)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			return resp.StatusCode, string(body)
		}
	}},
}

func TestAdapters(t *testing.T) {
	for _, tc := range adapterCases {
		t.Run(tc.name, func(t *testing.T) {
			do := tc.handler(t, testTable(t))

			status, body := do(httptest.NewRequest("GET", "/users/42", nil))
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "user 42", body)

			status, body = do(httptest.NewRequest("GET", "/assets/css/site.css", nil))
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "asset css/site.css", body)

			status, body = do(httptest.NewRequest("GET", "/items/abc", nil))
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "item abc", body)

			status, _ = do(httptest.NewRequest("GET", "/items/abcd", nil))
			assert.Equal(t, http.StatusNotFound, status)

			status, body = do(httptest.NewRequest("GET", "/users/abc", nil))
			assert.Equal(t, http.StatusBadRequest, status)
			assert.True(t, strings.Contains(body, "parameter id"), body)
		})
	}
}

func TestEchoGroup(t *testing.T) {
	e := echo.New()
	MountEcho(e.Group("/api"), testTable(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users/7", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "user 7" {
		t.Errorf("Expected body 'user 7', got '%s'", rec.Body.String())
	}
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	MountGin(engine, testTable(t), func(c *gin.Context) {
		c.Header("X-Test", "middleware-works")
		c.Next()
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest("GET", "/users/1", nil))
	assert.Equal(t, "middleware-works", rec.Header().Get("X-Test"))
}
