package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/permission"
	"github.com/aimatch/portal/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is what the UI needs to render a session: the caller's
// identity, the derived capabilities and the menu built from them.
type sessionResponse struct {
	Token        string                  `json:"token,omitempty"`
	Session      domain.Session          `json:"session"`
	DisplayName  string                  `json:"display_name"`
	Capabilities permission.Capabilities `json:"capabilities"`
	Menu         []permission.MenuEntry  `json:"menu"`
}

type routeAccessResponse struct {
	Route   permission.Route `json:"route"`
	Allowed bool             `json:"allowed"`
}

func newSessionResponse(token string, sess domain.Session) sessionResponse {
	caps := permission.Resolve(sess)
	menu := caps.Menu()
	if menu == nil {
		menu = []permission.MenuEntry{}
	}
	return sessionResponse{
		Token:        token,
		Session:      sess,
		DisplayName:  sess.DisplayName(),
		Capabilities: caps,
		Menu:         menu,
	}
}

// Login authenticates against the marketplace and opens a portal session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(out.Token, out.Session))
}

// Logout ends the current session and abandons its wizards.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401   {object}  ErrorResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Logout(c.Request().Context(), sess.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the current session with its capabilities and menu.
//
// @Summary      Current session
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /v1/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse("", sess))
}

// RouteAccess answers the route guard for one route.
//
// @Summary      Route guard
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Param        route  query     string  true  "Route, e.g. /qualification"
// @Success      200    {object}  routeAccessResponse
// @Failure      400    {object}  ErrorResponse
// @Router       /v1/routes/access [get]
func (h *AuthHandler) RouteAccess(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	route := permission.Route(c.QueryParam("route"))
	if route == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "route is required")
	}
	return c.JSON(http.StatusOK, routeAccessResponse{
		Route:   route,
		Allowed: permission.Resolve(sess).CanAccess(route),
	})
}
