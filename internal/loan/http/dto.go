package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/pkg/loansdk"
)

// Form field names.
const (
	fieldEntName           = "ent_name"
	fieldUSCC              = "uscc"
	fieldCompanyEmail      = "company_email"
	fieldCompanyAddress    = "company_address"
	fieldRepayAccountBank  = "repay_account_bank"
	fieldRepayAccountNo    = "repay_account_no"
	fieldLoanAmount        = "loan_amount"
	fieldLoanTerm          = "loan_term"
	fieldLoanPurpose       = "loan_purpose"
	fieldPropProofType     = "prop_proof_type"
	fieldPropProofDocs     = "prop_proof_docs"
	fieldPropProofDocsName = "prop_proof_docs_name"
	fieldIndustryCategory  = "industry_category"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// errBodyTooLarge is returned by parseForm when the body exceeds the cap.
var errBodyTooLarge = errors.New("request body too large")

// parseForm reads a multipart or urlencoded body capped at limit bytes. Any
// other content type leaves the form empty so validation reports every
// required field.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	switch mediaType {
	case "multipart/form-data":
		err = r.ParseMultipartForm(multipartMemory)
	default:
		err = r.ParseForm()
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	// some multipart read paths flatten the error to text
	if err != nil && strings.Contains(err.Error(), "request body too large") {
		return errBodyTooLarge
	}
	return err
}

func loanFormFromRequest(r *http.Request) domain.LoanForm {
	get := r.PostForm.Get
	return domain.LoanForm{
		EntName:           get(fieldEntName),
		USCC:              get(fieldUSCC),
		CompanyEmail:      get(fieldCompanyEmail),
		CompanyAddress:    get(fieldCompanyAddress),
		RepayAccountBank:  get(fieldRepayAccountBank),
		RepayAccountNo:    get(fieldRepayAccountNo),
		LoanAmount:        get(fieldLoanAmount),
		LoanTerm:          get(fieldLoanTerm),
		LoanPurpose:       get(fieldLoanPurpose),
		PropProofType:     get(fieldPropProofType),
		PropProofDocs:     get(fieldPropProofDocs),
		PropProofDocsName: get(fieldPropProofDocsName),
		IndustryCategory:  get(fieldIndustryCategory),
	}
}

func toLoanData(d domain.LoanData) loansdk.LoanData {
	return loansdk.LoanData{
		EntName:           d.EntName,
		USCC:              d.USCC,
		CompanyEmail:      d.CompanyEmail,
		CompanyAddress:    d.CompanyAddress,
		RepayAccountBank:  d.RepayAccountBank,
		RepayAccountNo:    d.RepayAccountNo,
		LoanAmount:        json.Number(d.LoanAmount.String()),
		LoanTerm:          d.LoanTerm,
		LoanPurpose:       d.LoanPurpose,
		PropProofType:     d.PropProofType,
		PropProofDocs:     d.PropProofDocs,
		PropProofDocsName: d.PropProofDocsName,
		IndustryCategory:  d.IndustryCategory,
	}
}

func toApplication(a domain.LoanApplication) loansdk.ApplicationResponse {
	return loansdk.ApplicationResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		LoanData:  toLoanData(a.LoanData),
		Status:    a.Status,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func toUser(u domain.User) loansdk.UserResponse {
	return loansdk.UserResponse{
		ID:        u.ID,
		UserName:  u.Username,
		UserType:  u.UserType,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

func toFinancialData(in []domain.FinancialData) []loansdk.FinancialData {
	out := make([]loansdk.FinancialData, 0, len(in))
	for _, fd := range in {
		out = append(out, loansdk.FinancialData{
			Quarter:    fd.Quarter,
			Profit:     fd.Profit,
			Percentage: fd.Percentage,
			YoY:        fd.YoY,
			QoQ:        fd.QoQ,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
