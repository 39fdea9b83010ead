package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/storefront/backend/internal/application/report"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// JobTrigger runs and reports on scheduled jobs
type JobTrigger interface {
	Status() []scheduler.ScheduleStatus
	TriggerNow(name string) error
}

// ReportHandler handles the monthly report and the job scheduler
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	jobs          JobTrigger
}

// NewReportHandler creates a new report handler. jobs is nil when the
// scheduler is disabled.
func NewReportHandler(reportService *reportapp.ReportService, jobs JobTrigger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		jobs:          jobs,
	}
}

// SchedulerStatusData represents scheduler status data
// @Description Scheduler status information
type SchedulerStatusData struct {
	Enabled bool                       `json:"enabled"`
	Jobs    []scheduler.ScheduleStatus `json:"jobs"`
}

// TriggerJobRequest names the job to run now
type TriggerJobRequest struct {
	Name string `json:"name" binding:"required,oneof=monthly_report cart_cleanup" example:"monthly_report"`
}

// MonthlyReport godoc
// @Summary      Run the monthly report
// @Description  Computes the report of any month synchronously, optionally mailing it to the admins
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body reportapp.MonthlyReportRequest true "Month"
// @Success      200 {object} dto.Response{data=report.MonthlyReport}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reports/monthly [post]
func (h *ReportHandler) MonthlyReport(c *gin.Context) {
	var req reportapp.MonthlyReportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	var r *report.MonthlyReport
	r, err := h.reportService.RunForMonth(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// GetSchedulerStatus godoc
// @Summary      Get scheduler status
// @Description  Next and last run of each scheduled job
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=SchedulerStatusData}
// @Security     BearerAuth
// @Router       /admin/scheduler/status [get]
func (h *ReportHandler) GetSchedulerStatus(c *gin.Context) {
	if h.jobs == nil {
		h.Success(c, SchedulerStatusData{Jobs: []scheduler.ScheduleStatus{}})
		return
	}
	h.Success(c, SchedulerStatusData{Enabled: true, Jobs: h.jobs.Status()})
}

// TriggerJob godoc
// @Summary      Run a scheduled job now
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body TriggerJobRequest true "Job"
// @Success      202 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/scheduler/trigger [post]
func (h *ReportHandler) TriggerJob(c *gin.Context) {
	var req TriggerJobRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, "SCHEDULER_DISABLED", "The job scheduler is disabled")
		return
	}

	err := h.jobs.TriggerNow(req.Name)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(gin.H{"job": req.Name}))
	case errors.Is(err, scheduler.ErrSchedulerNotRunning), errors.Is(err, scheduler.ErrJobQueueFull):
		h.Error(c, http.StatusServiceUnavailable, "SCHEDULER_UNAVAILABLE", err.Error())
	case errors.Is(err, scheduler.ErrUnknownJob):
		h.NotFound(c, err.Error())
	default:
		h.HandleError(c, err)
	}
}
