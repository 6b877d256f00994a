package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/circulation"
)

type LoansController struct {
	circulation *circulation.Service
	log         *zap.Logger
}

func NewLoansController(circulation *circulation.Service, log *zap.Logger) *LoansController {
	return &LoansController{circulation: circulation, log: log}
}

// IssueRequest is the body of POST /api/loans. DueDate is optional and
// accepts either 2006-01-02 or RFC 3339.
type IssueRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	BookID    uint   `json:"book_id" binding:"required"`
	DueDate   string `json:"due_date,omitempty"`
}

// ReturnRequest is the optional body of POST /api/loans/:id/return.
type ReturnRequest struct {
	ReturnDate string `json:"return_date,omitempty"`
}

// IssueLoan handles POST /api/loans
func (lc *LoansController) IssueLoan(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		respondBadRequest(c, "invalid due_date")
		return
	}

	loan, err := lc.circulation.Issue(c.Request.Context(), req.StudentID, req.BookID, dueDate)
	if err != nil {
		respondServiceError(c, lc.log, err, "issue loan")
		return
	}
	respondCreated(c, loan)
}

// GetLoan handles GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := lc.circulation.GetLoan(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, lc.log, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// ReturnLoan handles POST /api/loans/:id/return. The response carries the
// fine assessed for a late return, if any.
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	returnDate, err := parseDate(req.ReturnDate)
	if err != nil {
		respondBadRequest(c, "invalid return_date")
		return
	}

	result, err := lc.circulation.Return(c.Request.Context(), id, returnDate)
	if err != nil {
		respondServiceError(c, lc.log, err, "return loan")
		return
	}
	c.JSON(http.StatusOK, result)
}
