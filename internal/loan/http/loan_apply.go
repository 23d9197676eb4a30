package http

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/loansdk"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

type ApplyHandler struct {
	LoanService  *service.LoanService
	Messages     *service.Catalog
	MaxBodyBytes int64
}

// ServeHTTP validates a loan form and stages its property proof document.
//
//	@Summary		Validate and stage a loan application
//	@Description	Validates every form field and, only if they all pass, stores the uploaded document in the staging folder.
//	@Description	Nothing is persisted. The returned file_info must be sent back as prop_proof_docs and prop_proof_docs_name on confirm.
//	@Tags			Loan
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			ent_name			formData	string	true	"Enterprise name"
//	@Param			uscc				formData	string	true	"Unified social credit code (18 alphanumerics)"
//	@Param			company_email		formData	string	true	"Company email"
//	@Param			company_address		formData	string	false	"Company address"
//	@Param			repay_account_bank	formData	string	true	"Repayment bank"
//	@Param			repay_account_no	formData	string	true	"Repayment account (19 digits)"
//	@Param			loan_amount			formData	number	true	"Amount, greater than 0"
//	@Param			loan_term			formData	string	true	"Term in years"
//	@Param			loan_purpose		formData	string	true	"credit, mortgage or tax"
//	@Param			prop_proof_type		formData	string	true	"Property proof type"
//	@Param			industry_category	formData	string	false	"Industry"
//	@Param			prop_proof_docs		formData	file	true	"Property proof document"
//	@Success		200					{object}	loansdk.Envelope[loansdk.ApplyResponse]		"code 0"
//	@Failure		200					{object}	loansdk.Envelope[loansdk.ValidationErrors]	"code 10002, 10003 or 10005"
//	@Router			/api/loan/apply [post].
func (h *ApplyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	claims := httpx.MustClaims(ctx)

	if err := parseForm(w, r, h.MaxBodyBytes); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			httpx.Fail(w, httpx.CodeFile, h.Messages.FileTooLarge, nil)
			return
		}
		log.Info("form body not parsable", slog.Any("error", err))
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	upload, closeFile := uploadFromRequest(r, fieldPropProofDocs)
	defer closeFile()

	res, err := h.LoanService.ValidateAndStage(ctx, claims, loanFormFromRequest(r), upload)
	if err != nil {
		writeServiceError(w, r, h.Messages, h.Messages.FormInvalid, err)
		return
	}

	httpx.OK(w, h.Messages.ApplyOK, loansdk.ApplyResponse{
		LoanData: toLoanData(res.LoanData),
		FileInfo: loansdk.FileInfo{
			FilePath: res.File.Path,
			FileName: res.File.OriginalName,
		},
		FinancialData: toFinancialData(res.FinancialData),
	})
}

// uploadFromRequest returns the named file part, or nil when the request
// has none.
func uploadFromRequest(r *http.Request, field string) (*domain.UploadFile, func()) {
	if r.MultipartForm == nil {
		return nil, func() {}
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			slogx.FromContext(r.Context()).Warn("cannot open uploaded file", slog.Any("error", err))
		}
		return nil, func() {}
	}
	return &domain.UploadFile{
		Filename: hdr.Filename,
		Size:     hdr.Size,
		Content:  f,
	}, closer(f)
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}
