package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan purposes with business rules attached. Other purposes are stored
// as given.
const (
	PurposeCredit   = "credit"
	PurposeMortgage = "mortgage"
	PurposeTax      = "tax"
)

// StatusPending is the status of every freshly confirmed application.
const StatusPending = "pending"

// LoanForm is the raw submission as typed by the applicant. Every value is
// the untrimmed form string; the validator owns normalisation.
type LoanForm struct {
	EntName           string
	USCC              string
	CompanyEmail      string
	CompanyAddress    string
	RepayAccountBank  string
	RepayAccountNo    string
	LoanAmount        string
	LoanTerm          string
	LoanPurpose       string
	PropProofType     string
	PropProofDocs     string
	PropProofDocsName string
	IndustryCategory  string
}

// LoanData is a submission that passed validation.
type LoanData struct {
	EntName           string
	USCC              string
	CompanyEmail      string
	CompanyAddress    *string
	RepayAccountBank  string
	RepayAccountNo    string
	LoanAmount        decimal.Decimal
	LoanTerm          string
	LoanPurpose       string
	PropProofType     string
	PropProofDocs     string
	PropProofDocsName string
	IndustryCategory  *string
}

// LoanApplication is a persisted submission. Rows are written once on
// confirm and never updated.
type LoanApplication struct {
	ID     int64
	UserID int64
	LoanData
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
