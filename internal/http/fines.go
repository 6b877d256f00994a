package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/fines"
	"github.com/mrlokans/library/internal/scheduler"
)

// SweepStatus reports on the scheduled sweep.
type SweepStatus interface {
	Status() scheduler.Status
}

type FinesController struct {
	engine    *fines.Engine
	scheduler SweepStatus
	log       *zap.Logger
}

// NewFinesController creates a FinesController. sched may be nil when the
// scheduler is not running.
func NewFinesController(engine *fines.Engine, sched SweepStatus, log *zap.Logger) *FinesController {
	return &FinesController{engine: engine, scheduler: sched, log: log}
}

// PayRequest is the optional body of POST /api/fines/:id/pay.
type PayRequest struct {
	PaidDate string `json:"paid_date,omitempty"`
}

// WaiveRequest is the optional body of POST /api/fines/:id/waive.
type WaiveRequest struct {
	Notes string `json:"notes,omitempty"`
}

// GenerateFines handles POST /api/fines/generate. The sweep runs inline and
// the full report is returned; per-loan failures are part of the report.
func (fc *FinesController) GenerateFines(c *gin.Context) {
	// Keep going if the client disconnects; each loan commits on its own.
	ctx := context.WithoutCancel(c.Request.Context())

	report, err := fc.engine.GenerateFinesForOverdueBooks(ctx)
	if err != nil {
		respondServiceError(c, fc.log, err, "generate fines")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetFine handles GET /api/fines/:id
func (fc *FinesController) GetFine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fine, err := fc.engine.GetFine(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, fc.log, err, "get fine")
		return
	}
	c.JSON(http.StatusOK, fine)
}

// PayFine handles POST /api/fines/:id/pay
func (fc *FinesController) PayFine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PayRequest
	if !bindJSON(c, &req) {
		return
	}
	paidAt, err := parseDate(req.PaidDate)
	if err != nil {
		respondBadRequest(c, "invalid paid_date")
		return
	}
	if paidAt.IsZero() {
		paidAt = fc.engine.Now()
	}

	fine, err := fc.engine.PayFine(c.Request.Context(), id, paidAt.UTC())
	if err != nil {
		respondServiceError(c, fc.log, err, "pay fine")
		return
	}
	c.JSON(http.StatusOK, fine)
}

// WaiveFine handles POST /api/fines/:id/waive
func (fc *FinesController) WaiveFine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req WaiveRequest
	if !bindJSON(c, &req) {
		return
	}

	fine, err := fc.engine.WaiveFine(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondServiceError(c, fc.log, err, "waive fine")
		return
	}
	c.JSON(http.StatusOK, fine)
}

// SweepSchedule handles GET /api/fines/schedule
func (fc *FinesController) SweepSchedule(c *gin.Context) {
	if fc.scheduler == nil {
		c.JSON(http.StatusOK, scheduler.Status{})
		return
	}
	c.JSON(http.StatusOK, fc.scheduler.Status())
}

// CurrentPolicy handles GET /api/fine-policy
func (fc *FinesController) CurrentPolicy(c *gin.Context) {
	policy, err := fc.engine.CurrentPolicy(c.Request.Context())
	if err != nil {
		respondServiceError(c, fc.log, err, "current policy")
		return
	}
	c.JSON(http.StatusOK, policy)
}

// ListPolicies handles GET /api/fine-policies
func (fc *FinesController) ListPolicies(c *gin.Context) {
	policies, err := fc.engine.ListPolicies(c.Request.Context())
	if err != nil {
		respondServiceError(c, fc.log, err, "list policies")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"policies": policies,
		"count":    len(policies),
	})
}

// CreatePolicy handles POST /api/fine-policies. The new policy applies to
// fines assessed from now on; existing fines keep their rate.
func (fc *FinesController) CreatePolicy(c *gin.Context) {
	var req fines.PolicyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	policy, err := fc.engine.CreatePolicy(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, fc.log, err, "create policy")
		return
	}
	respondCreated(c, policy)
}
