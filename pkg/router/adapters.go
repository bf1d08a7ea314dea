package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/labstack/echo/v4"
)

// EchoRoutes is satisfied by *echo.Echo and *echo.Group
type EchoRoutes interface {
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
}

// MountEcho registers every route of t on e
func MountEcho(e EchoRoutes, t *Table, middlewares ...echo.MiddlewareFunc) {
	for _, cr := range t.routes {
		params := cr.params()
		e.Add(cr.Method, cr.Path.EchoPath(), func(c echo.Context) error {
			setParams(c.Request(), params, func(part PathPart) string {
				if part.Type == WildcardPart {
					return c.Param("*")
				}
				return c.Param(part.Value)
			})
			cr.ServeHTTP(c.Response(), c.Request())
			return nil
		}, middlewares...)
	}
}

// MountGin registers every route of t on r
func MountGin(r gin.IRoutes, t *Table, middlewares ...gin.HandlerFunc) {
	for _, cr := range t.routes {
		params := cr.params()
		handlers := append(append([]gin.HandlerFunc{}, middlewares...), func(c *gin.Context) {
			setParams(c.Request, params, func(part PathPart) string {
				return c.Param(part.Value)
			})
			cr.ServeHTTP(c.Writer, c.Request)
		})
		r.Handle(cr.Method, cr.Path.GinPath(), handlers...)
	}
}

// MountFiber registers every route of t on r. Handlers run through fiber's
// net/http adaptor.
func MountFiber(r fiber.Router, t *Table, middlewares ...fiber.Handler) {
	for _, cr := range t.routes {
		params := cr.params()
		handlers := append(append([]fiber.Handler{}, middlewares...), func(c *fiber.Ctx) error {
			values := make(map[string]string, len(params))
			for _, part := range params {
				key := part.Value
				if part.Type == WildcardPart {
					key = "*"
				}
				values[part.Value] = strings.Clone(c.Params(key))
			}
			return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				setParams(req, params, func(part PathPart) string { return values[part.Value] })
				cr.ServeHTTP(w, req)
			})(c)
		})
		r.Add(cr.Method, cr.Path.FiberPath(), handlers...)
	}
}

// MountServeMux registers every route of t on mux using method patterns
func MountServeMux(mux *http.ServeMux, t *Table) {
	for _, cr := range t.routes {
		mux.Handle(cr.Method+" "+cr.Path.MuxPattern(), cr)
	}
}

// Handler returns a new ServeMux serving t
func Handler(t *Table) http.Handler {
	mux := http.NewServeMux()
	MountServeMux(mux, t)
	return mux
}
