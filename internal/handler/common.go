package handler // handler wires HTTP endpoints to repositories and services

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Avinashkumar1307/project-grap/internal/model"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user id placed in the context by the
// JWT middleware.
func getUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case uint64:
		return v, v != 0
	case float64:
		return uint64(v), v != 0
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, n != 0
		}
	}
	return 0, false
}

func currentRole(c echo.Context) string {
	r, _ := c.Get("role").(string)
	return r
}

func isAdmin(c echo.Context) bool { return currentRole(c) == model.RoleAdmin }

// canModify reports whether the caller owns the resource or is an admin.
func canModify(c echo.Context, ownerID uint64) bool {
	if isAdmin(c) {
		return true
	}
	uid, ok := getUserID(c)
	return ok && uid == ownerID
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pageParams reads ?page and ?limit with defaults and caps.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// limitParam reads ?limit for the popular/latest endpoints.
func limitParam(c echo.Context, def, max int) int {
	n, _ := strconv.Atoi(c.QueryParam("limit"))
	if n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
