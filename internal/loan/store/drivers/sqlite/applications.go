package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
)

type applicationsRepo struct {
	q *queries
}

func (r *applicationsRepo) CreateApplication(
	ctx context.Context,
	a domain.LoanApplication,
) (domain.LoanApplication, error) {
	now := a.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	status := a.Status
	if status == "" {
		status = domain.StatusPending
	}

	row, err := r.q.CreateApplication(ctx, createApplicationParams{
		UserID:            a.UserID,
		EntName:           a.EntName,
		USCC:              a.USCC,
		CompanyEmail:      a.CompanyEmail,
		CompanyAddress:    mapOptionalString(a.CompanyAddress),
		RepayAccountBank:  a.RepayAccountBank,
		RepayAccountNo:    a.RepayAccountNo,
		LoanAmount:        a.LoanAmount.String(),
		LoanTerm:          a.LoanTerm,
		LoanPurpose:       a.LoanPurpose,
		PropProofType:     a.PropProofType,
		PropProofDocs:     a.PropProofDocs,
		PropProofDocsName: a.PropProofDocsName,
		IndustryCategory:  mapOptionalString(a.IndustryCategory),
		Status:            status,
		Now:               now,
	})
	if err != nil {
		return domain.LoanApplication{}, mapConstraint(err)
	}
	return mapApplication(row), nil
}

func (r *applicationsRepo) GetApplicationByID(ctx context.Context, id int64) (domain.LoanApplication, error) {
	row, err := r.q.GetApplicationByID(ctx, id)
	if err != nil {
		return domain.LoanApplication{}, mapNotFound(err)
	}
	return mapApplication(row), nil
}

func (r *applicationsRepo) ListApplicationsByUser(ctx context.Context, userID int64) ([]domain.LoanApplication, error) {
	rows, err := r.q.ListApplicationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LoanApplication, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapApplication(row))
	}
	return out, nil
}

func (r *applicationsRepo) IsDocumentReferenced(ctx context.Context, path string) (bool, error) {
	n, err := r.q.CountApplicationsByDocs(ctx, path)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func mapApplication(row applicationRow) domain.LoanApplication {
	return domain.LoanApplication{
		ID:     row.ID,
		UserID: row.UserID,
		LoanData: domain.LoanData{
			EntName:           row.EntName,
			USCC:              row.USCC,
			CompanyEmail:      row.CompanyEmail,
			CompanyAddress:    mapNullStringPtr(row.CompanyAddress),
			RepayAccountBank:  row.RepayAccountBank,
			RepayAccountNo:    row.RepayAccountNo,
			LoanAmount:        row.LoanAmount,
			LoanTerm:          row.LoanTerm,
			LoanPurpose:       row.LoanPurpose,
			PropProofType:     row.PropProofType,
			PropProofDocs:     row.PropProofDocs,
			PropProofDocsName: row.PropProofDocsName,
			IndustryCategory:  mapNullStringPtr(row.IndustryCategory),
		},
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
