package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/circulation"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/fines"
)

type StudentsController struct {
	catalog     *catalog.Service
	circulation *circulation.Service
	fines       *fines.Engine
	log         *zap.Logger
}

func NewStudentsController(catalog *catalog.Service, circulation *circulation.Service, fines *fines.Engine, log *zap.Logger) *StudentsController {
	return &StudentsController{catalog: catalog, circulation: circulation, fines: fines, log: log}
}

// CreateStudent handles POST /api/students
func (sc *StudentsController) CreateStudent(c *gin.Context) {
	var req catalog.StudentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	student, err := sc.catalog.CreateStudent(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, sc.log, err, "create student")
		return
	}
	respondCreated(c, student)
}

// GetStudent handles GET /api/students/:id
func (sc *StudentsController) GetStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := sc.catalog.GetStudent(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, sc.log, err, "get student")
		return
	}
	c.JSON(http.StatusOK, student)
}

// DeactivateStudent handles DELETE /api/students/:id
func (sc *StudentsController) DeactivateStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sc.catalog.DeactivateStudent(c.Request.Context(), id); err != nil {
		respondServiceError(c, sc.log, err, "deactivate student")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "student deactivated"})
}

// StudentLoans handles GET /api/students/:id/loans?status=
func (sc *StudentsController) StudentLoans(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status := entities.LoanStatus(c.Query("status"))
	switch status {
	case "", entities.LoanStatusIssued, entities.LoanStatusOverdue, entities.LoanStatusReturned, entities.LoanStatusLost:
	default:
		respondBadRequest(c, "unknown loan status: "+string(status))
		return
	}

	loans, err := sc.circulation.StudentLoans(c.Request.Context(), id, status)
	if err != nil {
		respondServiceError(c, sc.log, err, "student loans")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student_id": id,
		"loans":      loans,
		"count":      len(loans),
	})
}

// StudentFines handles GET /api/students/:id/fines?status=
func (sc *StudentsController) StudentFines(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status := entities.FineStatus(c.Query("status"))
	switch status {
	case "", entities.FineStatusPending, entities.FineStatusPaid, entities.FineStatusWaived:
	default:
		respondBadRequest(c, "unknown fine status: "+string(status))
		return
	}

	if _, err := sc.catalog.GetStudent(c.Request.Context(), id); err != nil {
		respondServiceError(c, sc.log, err, "student fines")
		return
	}

	result, err := sc.fines.GetStudentFines(c.Request.Context(), id, status)
	if err != nil {
		respondServiceError(c, sc.log, err, "student fines")
		return
	}
	c.JSON(http.StatusOK, result)
}
