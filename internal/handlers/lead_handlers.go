package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/jobs/background"
	"sitecms/internal/services"
)

// JobRunner triggers a scheduled job out of schedule.
type JobRunner interface {
	RunNow(name string) error
}

type LeadHandlers struct {
	leadService services.LeadService
	jobs        JobRunner
}

// NewLeadHandlers builds the lead routes. jobs may be nil when no scheduler runs.
func NewLeadHandlers(leadService services.LeadService, jobs JobRunner) *LeadHandlers {
	return &LeadHandlers{leadService: leadService, jobs: jobs}
}

// LeadResponse is the answer to a public form submission.
type LeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubmitLead stores a form submission from the public site. The response
// reflects only whether the lead was stored.
//
// @Summary Submit a lead
// @Tags leads
// @Accept json
// @Produce json
// @Param lead body map[string]interface{} true "Form fields"
// @Success 200 {object} LeadResponse
// @Failure 400 {object} LeadResponse
// @Failure 429 {object} LeadResponse
// @Failure 500 {object} LeadResponse
// @Router /api/leads [post]
func (h *LeadHandlers) SubmitLead(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, LeadResponse{Error: common.ErrorMessage(err)})
	}
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, LeadResponse{Error: "Invalid JSON body"})
	}

	if _, err := h.leadService.Submit(c.Request().Context(), tenantID, payload, c.RealIP()); err != nil {
		return c.JSON(common.HTTPStatus(err), LeadResponse{Error: common.ErrorMessage(err)})
	}
	return c.JSON(http.StatusOK, LeadResponse{Success: true, Message: "Lead received"})
}

// ListLeads is the admin inbox, newest first.
//
// @Summary List leads
// @Tags leads
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Lead
// @Failure 401 {object} common.ErrorResponse
// @Router /api/leads [get]
func (h *LeadHandlers) ListLeads(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	leads, err := h.leadService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, leads)
}

// GetLead returns one lead of the admin's site.
//
// @Summary Get a lead
// @Tags leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /api/leads/{id} [get]
func (h *LeadHandlers) GetLead(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return common.SendClientError(c, "Invalid lead ID")
	}

	lead, err := h.leadService.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// RetryNotifications re-sends failed lead notifications now instead of
// waiting for the next scheduled run.
//
// @Summary Retry failed notifications
// @Tags leads
// @Produce json
// @Security BearerAuth
// @Success 202 {object} common.SuccessResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 503 {object} common.ErrorResponse
// @Router /api/leads/retry [post]
func (h *LeadHandlers) RetryNotifications(c echo.Context) error {
	if h.jobs == nil {
		return c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{Error: "Notification retry is not scheduled"})
	}
	if err := h.jobs.RunNow(background.NotifyRetryJob); err != nil {
		if errors.Is(err, background.ErrJobNotScheduled) {
			return c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{Error: "Notification retry is not scheduled"})
		}
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusAccepted, common.SuccessResponse{Success: true, Message: "Retry started"})
}
