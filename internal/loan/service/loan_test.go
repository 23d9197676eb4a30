package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
	"github.com/aussiebroadwan/loanapply/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func upload(name, content string) *domain.UploadFile {
	return &domain.UploadFile{
		Filename: name,
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	}
}

func TestValidateAndStage(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "acme", "Test1234", domain.UserTypeEnterprise)
	svc := newLoanService(t, st)

	form := validForm()
	form.PropProofDocs = ""
	form.PropProofDocsName = ""

	res, err := svc.ValidateAndStage(ctx, claimsFor(u), form, upload("deed.pdf", "%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, "ACME", res.LoanData.EntName)
	require.Equal(t, "deed.pdf", res.File.OriginalName)
	require.True(t, strings.HasSuffix(res.File.Path, "_deed.pdf"))
	require.Equal(t, res.File.Path, res.LoanData.PropProofDocs)
	require.Equal(t, "deed.pdf", res.LoanData.PropProofDocsName)
	require.NotEmpty(t, res.FinancialData)

	b, err := os.ReadFile(res.File.Path)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(b))

	apps, err := st.Applications().ListApplicationsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, apps, "phase one never persists")
}

func TestValidateAndStageReportsFieldsBeforeFile(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "acme", "Test1234", domain.UserTypeEnterprise)
	svc := newLoanService(t, st)

	bad := validForm()
	bad.USCC = "123"

	_, err := svc.ValidateAndStage(ctx, claimsFor(u), bad, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.Has("uscc", KindLength))

	_, err = svc.ValidateAndStage(ctx, claimsFor(u), validForm(), nil)
	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FileMissing, ferr.Reason)
	require.Equal(t, "请上传财产证明文件", ferr.Msg)

	_, err = svc.ValidateAndStage(ctx, claimsFor(u), validForm(), upload("", "data"))
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FileMissing, ferr.Reason)
}

func TestValidateAndStageRejectsExtension(t *testing.T) {
	st := newTestStore(t)
	u := createUser(t, st, "acme", "Test1234", domain.UserTypeEnterprise)
	svc := newLoanService(t, st)

	_, err := svc.ValidateAndStage(context.Background(), claimsFor(u), validForm(), upload("run.exe", "MZ"))
	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FileRejected, ferr.Reason)
	require.Equal(t, "不支持的文件类型: exe", ferr.Msg)
	require.ErrorIs(t, err, ErrExtensionNotAllowed)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestValidateAndStageCopyFailure(t *testing.T) {
	st := newTestStore(t)
	u := createUser(t, st, "acme", "Test1234", domain.UserTypeEnterprise)
	svc := newLoanService(t, st)

	_, err := svc.ValidateAndStage(context.Background(), claimsFor(u), validForm(),
		&domain.UploadFile{Filename: "deed.pdf", Content: failingReader{}})
	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, FileFailed, ferr.Reason)

	files, err := svc.Stager.ListStaged()
	require.NoError(t, err)
	require.Empty(t, files, "partial file is removed")
}

func TestValidateAndStageRequiresIdentity(t *testing.T) {
	svc := newLoanService(t, newTestStore(t))

	_, err := svc.ValidateAndStage(context.Background(), jwtx.Claims{}, validForm(), upload("deed.pdf", "x"))
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ConfirmAndPersist(context.Background(), jwtx.Claims{}, validForm())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestConfirmTaxTermOverLimit(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "acme", "Test1234", domain.UserTypeEnterprise)
	svc := newLoanService(t, st)

	form := validForm()
	form.LoanTerm = "3"

	_, err := svc.ConfirmAndPersist(ctx, claimsFor(u), form)
	verr := requireFieldError(t, err, "loan_term", KindBusinessRule)
	require.Len(t, verr.Errors, 1)

	apps, err := st.Applications().ListApplicationsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, apps)
}

func TestConfirmPersistsPendingApplication(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "acme", "Test1234", domain.UserTypeEnterprise)
	svc := newLoanService(t, st)

	app, err := svc.ConfirmAndPersist(ctx, claimsFor(u), validForm())
	require.NoError(t, err)
	require.NotZero(t, app.ID)
	require.Equal(t, u.ID, app.UserID)
	require.Equal(t, "tax", app.LoanPurpose)
	require.Equal(t, domain.StatusPending, app.Status)
	require.Equal(t, "1000", app.LoanAmount.String())
	require.False(t, app.CreatedAt.IsZero())

	stored, err := st.Applications().GetApplicationByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, app.USCC, stored.USCC)
	require.Equal(t, "deed.pdf", stored.PropProofDocsName)
}

func TestConfirmTwiceCreatesTwoRows(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "acme", "Test1234", domain.UserTypeEnterprise)
	svc := newLoanService(t, st)

	first, err := svc.ConfirmAndPersist(ctx, claimsFor(u), validForm())
	require.NoError(t, err)
	second, err := svc.ConfirmAndPersist(ctx, claimsFor(u), validForm())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestConfirmForDeletedUser(t *testing.T) {
	st := newTestStore(t)
	svc := newLoanService(t, st)

	ghost := domain.User{ID: 4242, Username: "ghost", UserType: domain.UserTypeIndividual}
	_, err := svc.ConfirmAndPersist(context.Background(), claimsFor(ghost), validForm())
	require.ErrorIs(t, err, store.ErrNotFound)
}
