package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/internal/loan/metrics"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
	"github.com/aussiebroadwan/loanapply/pkg/jwtx"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// Metric phase labels.
const (
	phaseApply   = "apply"
	phaseConfirm = "confirm"
)

// ApplyResult is what phase one hands back for the confirmation page.
type ApplyResult struct {
	LoanData      domain.LoanData
	File          domain.StagedUpload
	FinancialData []domain.FinancialData
}

// LoanService runs the two phase submission: validate and stage the
// document, then confirm and persist.
type LoanService struct {
	Store     store.Store
	Validator *Validator
	Stager    *FileStager
	Charts    *ChartSource
	Messages  *Catalog
	Metrics   *metrics.Metrics

	Now func() time.Time
}

// ValidateAndStage validates the form and, only when it is valid, stages
// the uploaded document. Nothing is persisted.
func (s *LoanService) ValidateAndStage(
	ctx context.Context,
	claims jwtx.Claims,
	form domain.LoanForm,
	file *domain.UploadFile,
) (*ApplyResult, error) {
	l := slogx.FromContext(ctx)
	msgs := s.messages()

	if err := claims.ValidateSubject(); err != nil {
		s.Metrics.IncSubmission(phaseApply, metrics.OutcomeAuth)
		return nil, unauthorized(msgs.TokenInvalid, err)
	}

	data, err := s.Validator.Validate(form, false)
	if err != nil {
		s.Metrics.IncSubmission(phaseApply, metrics.OutcomeValidation)
		return nil, err
	}

	if file == nil || file.Filename == "" {
		s.Metrics.IncSubmission(phaseApply, metrics.OutcomeFile)
		return nil, &FileError{Reason: FileMissing, Msg: msgs.FileRequired}
	}

	staged, err := s.Stager.Stage(ctx, file)
	if err != nil || staged == nil {
		s.Metrics.IncSubmission(phaseApply, metrics.OutcomeFile)
		return nil, s.stageError(ctx, err)
	}

	data.PropProofDocs = staged.Path
	data.PropProofDocsName = staged.OriginalName

	l.Info("loan form validated",
		slog.Int64("user_id", claims.UserID),
		slog.String("staged_path", staged.Path),
	)
	s.Metrics.IncSubmission(phaseApply, metrics.OutcomeOK)
	return &ApplyResult{
		LoanData:      data,
		File:          *staged,
		FinancialData: s.Charts.Load(ctx),
	}, nil
}

// ConfirmAndPersist validates the form again, now including the staged
// document fields, and stores it as a pending application owned by the
// token's user.
func (s *LoanService) ConfirmAndPersist(
	ctx context.Context,
	claims jwtx.Claims,
	form domain.LoanForm,
) (domain.LoanApplication, error) {
	l := slogx.FromContext(ctx)
	msgs := s.messages()

	if err := claims.ValidateSubject(); err != nil {
		s.Metrics.IncSubmission(phaseConfirm, metrics.OutcomeAuth)
		return domain.LoanApplication{}, unauthorized(msgs.TokenInvalid, err)
	}

	data, err := s.Validator.Validate(form, true)
	if err != nil {
		s.Metrics.IncSubmission(phaseConfirm, metrics.OutcomeValidation)
		return domain.LoanApplication{}, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	app, err := s.Store.Applications().CreateApplication(ctx, domain.LoanApplication{
		UserID:    claims.UserID,
		LoanData:  data,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.Metrics.IncSubmission(phaseConfirm, metrics.OutcomeError)
		if errors.Is(err, store.ErrNotFound) {
			// the owning user was deleted after the token was issued
			return domain.LoanApplication{}, err
		}
		return domain.LoanApplication{}, fmt.Errorf("create application: %w", err)
	}

	l.Info("loan application created",
		slog.Int64("application_id", app.ID),
		slog.Int64("user_id", app.UserID),
		slog.String("loan_purpose", app.LoanPurpose),
	)
	s.Metrics.IncSubmission(phaseConfirm, metrics.OutcomeOK)
	s.Metrics.IncApplicationsCreated()
	return app, nil
}

func (s *LoanService) stageError(ctx context.Context, err error) error {
	msgs := s.messages()
	switch {
	case err == nil, errors.Is(err, ErrInvalidFilename):
		return &FileError{Reason: FileMissing, Msg: msgs.FileRequired, Err: err}
	case errors.Is(err, ErrExtensionNotAllowed):
		return &FileError{Reason: FileRejected, Msg: fmt.Sprintf(msgs.FileType, rejectedExt(err)), Err: err}
	default:
		slogx.FromContext(ctx).Error("failed to stage upload", slog.Any("error", err))
		return &FileError{Reason: FileFailed, Msg: msgs.FileFailed, Err: err}
	}
}

func (s *LoanService) messages() *Catalog {
	if s.Messages == nil {
		return Messages("")
	}
	return s.Messages
}

// rejectedExt recovers the extension from a wrapped ErrExtensionNotAllowed.
func rejectedExt(err error) string {
	var ext *extensionError
	if errors.As(err, &ext) {
		return ext.Ext
	}
	return ""
}
