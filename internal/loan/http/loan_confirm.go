package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

type ConfirmHandler struct {
	LoanService  *service.LoanService
	Messages     *service.Catalog
	MaxBodyBytes int64
}

// ServeHTTP persists a previously validated loan application.
//
//	@Summary		Confirm a loan application
//	@Description	Validates the form again, now requiring prop_proof_docs and prop_proof_docs_name from the apply step, and stores it with status "pending".
//	@Tags			Loan
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			ent_name				formData	string	true	"Enterprise name"
//	@Param			uscc					formData	string	true	"Unified social credit code"
//	@Param			company_email			formData	string	true	"Company email"
//	@Param			company_address			formData	string	false	"Company address"
//	@Param			repay_account_bank		formData	string	true	"Repayment bank"
//	@Param			repay_account_no		formData	string	true	"Repayment account"
//	@Param			loan_amount				formData	number	true	"Amount"
//	@Param			loan_term				formData	string	true	"Term in years"
//	@Param			loan_purpose			formData	string	true	"Purpose"
//	@Param			prop_proof_type			formData	string	true	"Property proof type"
//	@Param			prop_proof_docs			formData	string	true	"file_info.file_path from apply"
//	@Param			prop_proof_docs_name	formData	string	true	"file_info.file_name from apply"
//	@Param			industry_category		formData	string	false	"Industry"
//	@Success		200						{object}	loansdk.Envelope[loansdk.ApplicationResponse]	"code 0"
//	@Failure		200						{object}	loansdk.Envelope[loansdk.ValidationErrors]		"code 10002, 10003, 10004 or 10006"
//	@Router			/api/loan/confirm [post].
func (h *ConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := httpx.MustClaims(ctx)

	if err := parseForm(w, r, h.MaxBodyBytes); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			httpx.Fail(w, httpx.CodeFile, h.Messages.FileTooLarge, nil)
			return
		}
		slogx.FromContext(ctx).Info("form body not parsable", "err", err)
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	app, err := h.LoanService.ConfirmAndPersist(ctx, claims, loanFormFromRequest(r))
	if err != nil {
		writeServiceError(w, r, h.Messages, h.Messages.FormInvalid, err)
		return
	}

	httpx.OK(w, h.Messages.ConfirmOK, toApplication(app))
}
