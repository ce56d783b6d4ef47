package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/core/ports"
)

type EnterpriseHandler struct {
	enterprises ports.EnterpriseService
}

func NewEnterpriseHandler(enterprises ports.EnterpriseService) *EnterpriseHandler {
	return &EnterpriseHandler{enterprises: enterprises}
}

// Get returns an enterprise visible to the session.
//
// @Summary      Get enterprise
// @Tags         enterprises
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Enterprise ID"
// @Success      200  {object}  object
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/enterprises/{id} [get]
func (h *EnterpriseHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := enterpriseParam(c)
	if err != nil {
		return err
	}

	ent, err := h.enterprises.Get(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	// The marketplace record is passed through untouched.
	if len(ent.Raw) > 0 {
		return c.JSONBlob(http.StatusOK, ent.Raw)
	}
	return c.JSON(http.StatusOK, ent)
}

// CanCreateDemand reports whether the enterprise may publish demands.
//
// @Summary      Demand creation gate
// @Tags         enterprises
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Enterprise ID"
// @Success      200  {object}  domain.DemandGate
// @Failure      403  {object}  ErrorResponse
// @Router       /v1/enterprises/{id}/can-create-demand [get]
func (h *EnterpriseHandler) CanCreateDemand(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := enterpriseParam(c)
	if err != nil {
		return err
	}

	gate, err := h.enterprises.CanCreateDemand(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gate)
}

// Verify approves or rejects an enterprise qualification.
//
// @Summary      Verify enterprise
// @Tags         enterprises
// @Security     BearerAuth
// @Param        id       path   int   true  "Enterprise ID"
// @Param        approve  query  bool  true  "Approve (true) or reject (false)"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /v1/enterprises/{id}/verify [post]
func (h *EnterpriseHandler) Verify(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := enterpriseParam(c)
	if err != nil {
		return err
	}
	approve, err := strconv.ParseBool(c.QueryParam("approve"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "approve must be true or false")
	}

	if err := h.enterprises.Verify(c.Request().Context(), sess, id, approve); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
