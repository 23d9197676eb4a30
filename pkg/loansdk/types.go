package loansdk

import (
	"encoding/json"
	"net/url"

	"github.com/aussiebroadwan/loanapply/pkg/httpx"
)

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the body of every API response. Data holds the payload on
// success and error details (if any) on failure.
type Envelope[T any] struct {
	// Code is 0 on success, one of the 1000x codes otherwise
	Code httpx.Code `json:"code"`

	// Msg is the localized outcome message
	Msg string `json:"msg"`

	// Data is the payload
	Data T `json:"data"`

	// Timestamp is the server time in unix seconds
	Timestamp int64 `json:"timestamp"`
}

// FieldError is one rejected form field in a validation failure.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
	Type  string `json:"type"`
}

// ValidationErrors is the data of a validation (10002) envelope.
type ValidationErrors struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// RateLimited is the data of an envelope rejected by the rate limiter.
type RateLimited struct {
	RetryAfter int `json:"retry_after"`
}

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64  `json:"id"`
	UserName  string `json:"user_name"`
	UserType  string `json:"user_type"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	// AccessToken is the HS256 JWT to send as "Authorization: Bearer <token>"
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int `json:"expires_in"`

	User UserResponse `json:"user"`
}

// LogoutResponse is the data of POST /api/auth/logout.
type LogoutResponse struct {
	Username string `json:"username"`
}

// TokenInfoResponse echoes the identity claims of a valid token.
type TokenInfoResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	UserType string `json:"user_type"`
}

// ============================================================================
// Loan Types
// ============================================================================

// LoanForm is the loan application form. It is sent as multipart or
// urlencoded form fields.
type LoanForm struct {
	EntName           string `json:"ent_name"`
	USCC              string `json:"uscc"`
	CompanyEmail      string `json:"company_email"`
	CompanyAddress    string `json:"company_address,omitempty"`
	RepayAccountBank  string `json:"repay_account_bank"`
	RepayAccountNo    string `json:"repay_account_no"`
	LoanAmount        string `json:"loan_amount"`
	LoanTerm          string `json:"loan_term"`
	LoanPurpose       string `json:"loan_purpose"`
	PropProofType     string `json:"prop_proof_type"`
	PropProofDocs     string `json:"prop_proof_docs,omitempty"`
	PropProofDocsName string `json:"prop_proof_docs_name,omitempty"`
	IndustryCategory  string `json:"industry_category,omitempty"`
}

// Values encodes the non-empty fields of the form.
func (f LoanForm) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("ent_name", f.EntName)
	set("uscc", f.USCC)
	set("company_email", f.CompanyEmail)
	set("company_address", f.CompanyAddress)
	set("repay_account_bank", f.RepayAccountBank)
	set("repay_account_no", f.RepayAccountNo)
	set("loan_amount", f.LoanAmount)
	set("loan_term", f.LoanTerm)
	set("loan_purpose", f.LoanPurpose)
	set("prop_proof_type", f.PropProofType)
	set("prop_proof_docs", f.PropProofDocs)
	set("prop_proof_docs_name", f.PropProofDocsName)
	set("industry_category", f.IndustryCategory)
	return v
}

// LoanData is a validated application as echoed by the API.
type LoanData struct {
	EntName           string      `json:"ent_name"`
	USCC              string      `json:"uscc"`
	CompanyEmail      string      `json:"company_email"`
	CompanyAddress    *string     `json:"company_address"`
	RepayAccountBank  string      `json:"repay_account_bank"`
	RepayAccountNo    string      `json:"repay_account_no"`
	LoanAmount        json.Number `json:"loan_amount" swaggertype:"number"`
	LoanTerm          string      `json:"loan_term"`
	LoanPurpose       string      `json:"loan_purpose"`
	PropProofType     string      `json:"prop_proof_type"`
	PropProofDocs     string      `json:"prop_proof_docs"`
	PropProofDocsName string      `json:"prop_proof_docs_name"`
	IndustryCategory  *string     `json:"industry_category"`
}

// FileInfo describes the staged property proof document.
type FileInfo struct {
	// FilePath is sent back as prop_proof_docs on confirm
	FilePath string `json:"file_path"`

	// FileName is sent back as prop_proof_docs_name on confirm
	FileName string `json:"file_name"`
}

// FinancialData is one quarter of the confirmation page chart.
type FinancialData struct {
	Quarter    string   `json:"quarter"`
	Profit     int64    `json:"profit"`
	Percentage *float64 `json:"percentage,omitempty"`
	YoY        *string  `json:"yoy,omitempty"`
	QoQ        *string  `json:"qoq,omitempty"`
}

// ApplyResponse is the data of POST /api/loan/apply.
type ApplyResponse struct {
	LoanData      LoanData        `json:"loan_data"`
	FileInfo      FileInfo        `json:"file_info"`
	FinancialData []FinancialData `json:"financial_data"`
}

// ApplicationResponse is a persisted loan application.
type ApplicationResponse struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	LoanData
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Storage indicates whether the staging folder is writable
	Storage string `json:"storage"`
}
