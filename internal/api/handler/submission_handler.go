package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
)

type SubmissionHandler struct {
	submissions ports.SubmissionService
}

func NewSubmissionHandler(submissions ports.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

type submissionsResponse struct {
	WizardID    string                    `json:"wizard_id"`
	Submissions []domain.SubmissionRecord `json:"submissions"`
}

// List returns the audited submit attempts of a wizard.
//
// @Summary      Submission history
// @Tags         submissions
// @Security     BearerAuth
// @Produce      json
// @Param        wizard_id  query     string  true  "Wizard ID"
// @Success      200        {object}  submissionsResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      403        {object}  ErrorResponse
// @Router       /v1/submissions [get]
func (h *SubmissionHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	wizardID := c.QueryParam("wizard_id")
	if wizardID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "wizard_id is required")
	}

	recs, err := h.submissions.History(c.Request().Context(), sess, wizardID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, submissionsResponse{WizardID: wizardID, Submissions: recs})
}
