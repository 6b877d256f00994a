package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusIssued   LoanStatus = "issued"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusLost     LoanStatus = "lost"
)

// IsActive reports whether the loan still holds a copy of the book.
func (s LoanStatus) IsActive() bool {
	return s == LoanStatusIssued || s == LoanStatusOverdue
}

type FineStatus string

const (
	FineStatusPending FineStatus = "pending"
	FineStatusPaid    FineStatus = "paid"
	FineStatusWaived  FineStatus = "waived"
)

type SuggestionStatus string

const (
	SuggestionStatusPending  SuggestionStatus = "pending"
	SuggestionStatusApproved SuggestionStatus = "approved"
	SuggestionStatusRejected SuggestionStatus = "rejected"
)

// DefaultMaxBooksAllowed applies to students created without an explicit limit.
const DefaultMaxBooksAllowed = 3

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:512;not null" json:"title"`
	Author          string    `gorm:"index;size:256" json:"author"`
	ISBN            string    `gorm:"index;size:20" json:"isbn,omitempty"`
	Publisher       string    `gorm:"size:256" json:"publisher,omitempty"`
	PublicationYear int       `json:"publication_year,omitempty"`
	Category        string    `gorm:"index;size:100" json:"category,omitempty"`
	TotalCopies     int       `gorm:"not null;default:1" json:"total_copies"`
	AvailableCopies int       `gorm:"not null;default:1" json:"available_copies"`
	IsActive        bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentNumber   string    `gorm:"uniqueIndex;size:50;not null" json:"student_number"`
	Name            string    `gorm:"size:256;not null" json:"name"`
	Email           string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	MaxBooksAllowed int       `gorm:"not null;default:3" json:"max_books_allowed"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Loan is a single issue of a book to a student.
// ReturnDate is set exactly when Status is LoanStatusReturned.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	StudentID  uint       `gorm:"index;not null" json:"student_id"`
	IssueDate  time.Time  `gorm:"not null" json:"issue_date"`
	DueDate    time.Time  `gorm:"index;not null" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `gorm:"index;size:20;not null;default:'issued'" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Student    Student    `gorm:"foreignKey:StudentID" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FinePolicy holds the parameters governing fine computation. The policy in
// force is the most recently created active row.
type FinePolicy struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	RatePerDay      decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"rate_per_day"`
	GracePeriodDays int                 `gorm:"not null;default:0" json:"grace_period_days"`
	MaxFineAmount   decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"max_fine_amount"`
	IsActive        bool                `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Fine is an overdue charge against a loan. At most one fine per loan may be
// pending; the partial unique index enforces it at the storage level.
type Fine struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	LoanID         uint            `gorm:"not null;index;uniqueIndex:idx_fines_pending_loan,where:status = 'pending'" json:"loan_id"`
	StudentID      uint            `gorm:"not null;index" json:"student_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	DaysOverdue    int             `gorm:"not null" json:"days_overdue"`
	FineRatePerDay decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fine_rate_per_day"`
	Status         FineStatus      `gorm:"index;size:20;not null;default:'pending'" json:"status"`
	PaidDate       *time.Time      `json:"paid_date,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type BookSuggestion struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	StudentID   uint             `gorm:"index;not null" json:"student_id"`
	Title       string           `gorm:"size:512;not null" json:"title"`
	Author      string           `gorm:"size:256" json:"author,omitempty"`
	ISBN        string           `gorm:"size:20" json:"isbn,omitempty"`
	Reason      string           `gorm:"type:text" json:"reason,omitempty"`
	Status      SuggestionStatus `gorm:"index;size:20;not null;default:'pending'" json:"status"`
	ReviewNotes string           `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Student) TableName() string {
	return "students"
}

func (Loan) TableName() string {
	return "loans"
}

func (FinePolicy) TableName() string {
	return "fine_policies"
}

func (Fine) TableName() string {
	return "fines"
}

func (BookSuggestion) TableName() string {
	return "book_suggestions"
}
