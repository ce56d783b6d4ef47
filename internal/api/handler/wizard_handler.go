package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
	"github.com/aimatch/portal/internal/core/wizard"
)

// WizardHandler exposes the qualification and registration wizards. Every
// mutating endpoint answers with the resulting snapshot so the UI never has
// to re-fetch.
type WizardHandler struct {
	wizards ports.WizardService
}

func NewWizardHandler(wizards ports.WizardService) *WizardHandler {
	return &WizardHandler{wizards: wizards}
}

// Start opens the wizard of the session's role, or resumes the open one.
//
// @Summary      Start wizard
// @Tags         wizards
// @Security     BearerAuth
// @Produce      json
// @Success      201  {object}  wizard.Snapshot
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /v1/wizards [post]
func (h *WizardHandler) Start(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	snap, err := h.wizards.Start(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

// Get returns the current snapshot.
//
// @Summary      Get wizard
// @Tags         wizards
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Wizard ID"
// @Success      200  {object}  wizard.Snapshot
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/wizards/{id} [get]
func (h *WizardHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	snap, err := h.wizards.Get(sess, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Edit records values on the current step without validating them.
//
// @Summary      Edit step values
// @Tags         wizards
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Wizard ID"
// @Param        body  body      valuesRequest  true  "Field values"
// @Success      200   {object}  wizard.Snapshot
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/wizards/{id}/values [patch]
func (h *WizardHandler) Edit(c echo.Context) error {
	return h.withValues(c, h.wizards.Edit)
}

// Next validates the current step and advances.
//
// @Summary      Next step
// @Tags         wizards
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Wizard ID"
// @Param        body  body      valuesRequest  false  "Field values"
// @Success      200   {object}  wizard.Snapshot
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/wizards/{id}/next [post]
func (h *WizardHandler) Next(c echo.Context) error {
	return h.withValues(c, h.wizards.Next)
}

// Previous goes back one step without validating.
//
// @Summary      Previous step
// @Tags         wizards
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Wizard ID"
// @Param        body  body      valuesRequest  false  "Field values"
// @Success      200   {object}  wizard.Snapshot
// @Failure      409   {object}  ErrorResponse
// @Router       /v1/wizards/{id}/previous [post]
func (h *WizardHandler) Previous(c echo.Context) error {
	return h.withValues(c, h.wizards.Previous)
}

// Preview composes the read-only summary shown before submitting.
//
// @Summary      Preview
// @Tags         wizards
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Wizard ID"
// @Param        body  body      valuesRequest  false  "Field values"
// @Success      200   {object}  wizard.Preview
// @Failure      404   {object}  ErrorResponse
// @Router       /v1/wizards/{id}/preview [post]
func (h *WizardHandler) Preview(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	p, err := h.wizards.Preview(sess, c.Param("id"), values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Submit sends the draft to the marketplace once it is complete enough.
//
// @Summary      Submit
// @Tags         wizards
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Wizard ID"
// @Param        body  body      valuesRequest  false  "Field values"
// @Success      200   {object}  wizard.Snapshot
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /v1/wizards/{id}/submit [post]
func (h *WizardHandler) Submit(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	snap, err := h.wizards.Submit(c.Request().Context(), sess, c.Param("id"), values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// AddEntry appends an entry to a repeatable group of the current step.
//
// @Summary      Add group entry
// @Tags         wizards
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id     path      string        true  "Wizard ID"
// @Param        group  path      string        true  "Group, e.g. capability_details"
// @Param        body   body      entryRequest  true  "Entry"
// @Success      200    {object}  wizard.Snapshot
// @Failure      404    {object}  ErrorResponse
// @Router       /v1/wizards/{id}/groups/{group} [post]
func (h *WizardHandler) AddEntry(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req entryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	snap, err := h.wizards.AddEntry(sess, c.Param("id"), c.Param("group"), req.Entry)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// RemoveEntry deletes one entry of a repeatable group; later entries shift.
//
// @Summary      Remove group entry
// @Tags         wizards
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true  "Wizard ID"
// @Param        group  path      string  true  "Group"
// @Param        index  path      int     true  "Entry index"
// @Success      200    {object}  wizard.Snapshot
// @Failure      404    {object}  ErrorResponse
// @Router       /v1/wizards/{id}/groups/{group}/{index} [delete]
func (h *WizardHandler) RemoveEntry(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry index")
	}
	snap, err := h.wizards.RemoveEntry(sess, c.Param("id"), c.Param("group"), index)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Abandon discards the wizard and its draft.
//
// @Summary      Abandon wizard
// @Tags         wizards
// @Security     BearerAuth
// @Param        id   path  string  true  "Wizard ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/wizards/{id} [delete]
func (h *WizardHandler) Abandon(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.wizards.Abandon(sess, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type valuesFunc func(sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error)

func (h *WizardHandler) withValues(c echo.Context, fn valuesFunc) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	snap, err := fn(sess, c.Param("id"), values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

func bindValues(c echo.Context) (wizard.Values, error) {
	var req valuesRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return req.Values, nil
}
