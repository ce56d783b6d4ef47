package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/api/middleware"
	"github.com/aimatch/portal/internal/core/domain"
)

// ctxSession returns the session loaded by the Session middleware. Its
// absence means the route was mounted without authentication.
func ctxSession(c echo.Context) (domain.Session, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok || sess.ID == "" {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}

func enterpriseParam(c echo.Context) (domain.EnterpriseID, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || !domain.EnterpriseID(id).Valid() {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid enterprise id")
	}
	return domain.EnterpriseID(id), nil
}
