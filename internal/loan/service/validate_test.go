package service

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/stretchr/testify/require"
)

func requireFieldError(t *testing.T, err error, field, kind string) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.Has(field, kind), "want %s/%s in %v", field, kind, verr.Errors)
	return verr
}

func TestValidateAcceptsValidForm(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	form := validForm()
	form.EntName = "  ACME  "
	form.CompanyAddress = " 1 Market St "

	data, err := v.Validate(form, true)
	require.NoError(t, err)
	require.Equal(t, "ACME", data.EntName)
	require.Equal(t, "1000", data.LoanAmount.String())
	require.NotNil(t, data.CompanyAddress)
	require.Equal(t, "1 Market St", *data.CompanyAddress)
	require.Nil(t, data.IndustryCategory)
}

func TestValidateTermLimits(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	tests := []struct {
		purpose string
		term    string
		ok      bool
	}{
		{"credit", "5", true},
		{"credit", "4.5", true},
		{"credit", "5.01", false},
		{"credit", "6", false},
		{"tax", "2", true},
		{"tax", "1", true},
		{"tax", "2.5", false},
		{"tax", "3", false},
		{"mortgage", "30", true},
		{"equipment", "10", true},
	}

	for _, tt := range tests {
		t.Run(tt.purpose+"/"+tt.term, func(t *testing.T) {
			form := validForm()
			form.LoanPurpose = tt.purpose
			form.LoanTerm = tt.term

			_, err := v.Validate(form, true)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			verr := requireFieldError(t, err, "loan_term", KindBusinessRule)
			require.Len(t, verr.Errors, 1)
		})
	}
}

func TestValidateBusinessRuleMessages(t *testing.T) {
	t.Parallel()
	v := &Validator{Messages: Messages("zh")}

	form := validForm()
	form.LoanTerm = "3"
	_, err := v.Validate(form, true)
	verr := requireFieldError(t, err, "loan_term", KindBusinessRule)
	require.Equal(t, "税贷期限不能超过2年", verr.Errors[0].Msg)

	form.LoanPurpose = "credit"
	form.LoanTerm = "6"
	_, err = v.Validate(form, true)
	verr = requireFieldError(t, err, "loan_term", KindBusinessRule)
	require.Equal(t, "信用贷款期限不能超过5年", verr.Errors[0].Msg)
}

func TestValidateNonNumericTerm(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	form := validForm()
	form.LoanTerm = "two years"
	_, err := v.Validate(form, true)
	requireFieldError(t, err, "loan_term", KindInvalidType)

	form.LoanPurpose = "mortgage"
	_, err = v.Validate(form, true)
	require.NoError(t, err, "terms are free form for purposes without a limit")
}

func TestValidateTermIsDecimalLiteral(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	for _, term := range []string{"0x2p0", "0X1P1", "Inf", "NaN", "1_0"} {
		t.Run(term, func(t *testing.T) {
			form := validForm()
			form.LoanTerm = term
			_, err := v.Validate(form, true)
			verr := requireFieldError(t, err, "loan_term", KindInvalidType)
			require.Len(t, verr.Errors, 1)
		})
	}

	form := validForm()
	form.LoanTerm = "2.0"
	_, err := v.Validate(form, true)
	require.NoError(t, err)
}

func TestFieldFailure(t *testing.T) {
	t.Parallel()
	msgs := Messages("en")

	tests := []struct {
		field string
		tag   string
		kind  string
		msg   string
	}{
		{"ent_name", "required", KindMissing, "ent_name is required"},
		{"prop_proof_docs", "required_if", KindMissing, "prop_proof_docs is required"},
		{"ent_name", "max", KindLength, "ent_name has an invalid length"},
		{"uscc", "len", KindLength, msgs.USCCFormat},
		{"uscc", "alphanum", KindPattern, msgs.USCCFormat},
		{"repay_account_no", "number", KindPattern, msgs.AccountNoFormat},
		{"company_email", "mailbox", KindPattern, msgs.EmailFormat},
		{"loan_amount", "decimal", KindInvalidType, "loan_amount must be a number"},
		{"loan_amount", "decimal_gt", KindNotPositive, msgs.AmountPositive},
		{"deposit", "decimal_gt", KindNotPositive, "deposit must not be negative"},
		{"loan_purpose", "oneof", KindInvalid, "loan_purpose is invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.tag, func(t *testing.T) {
			fe := fieldFailure(msgs, tt.field, tt.tag)
			require.Equal(t, tt.field, fe.Field)
			require.Equal(t, tt.kind, fe.Kind)
			require.Equal(t, tt.msg, fe.Msg)
		})
	}
}

func TestValidateUSCC(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	tests := []struct {
		name string
		uscc string
		kind string
	}{
		{"too short", "91310115MA1K4QLX1", KindLength},
		{"too long", "91310115MA1K4QLX1LX", KindLength},
		{"punctuation", "91310115MA1K4QLX-L", KindPattern},
		{"non ascii", "91310115MA1K4QLX1统", KindPattern},
		{"blank", "   ", KindMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			form.USCC = tt.uscc
			_, err := v.Validate(form, true)
			requireFieldError(t, err, "uscc", tt.kind)
		})
	}

	form := validForm()
	form.USCC = " 91310115ma1k4qlx1l "
	data, err := v.Validate(form, true)
	require.NoError(t, err)
	require.Equal(t, "91310115ma1k4qlx1l", data.USCC)
}

func TestValidateAccountNumber(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	for value, kind := range map[string]string{
		"123456789012345678":   KindLength,
		"12345678901234567890": KindLength,
		"123456789012345678a":  KindPattern,
		"":                     KindMissing,
	} {
		form := validForm()
		form.RepayAccountNo = value
		_, err := v.Validate(form, true)
		requireFieldError(t, err, "repay_account_no", kind)
	}
}

func TestValidateEmailAndAmount(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	for _, email := range []string{"a@b", "ab.com", "a@b.c", "a b@c.com"} {
		form := validForm()
		form.CompanyEmail = email
		_, err := v.Validate(form, true)
		requireFieldError(t, err, "company_email", KindPattern)
	}

	for value, kind := range map[string]string{
		"0":              KindNotPositive,
		"-10":            KindNotPositive,
		"abc":            KindInvalidType,
		"1,000":          KindInvalidType,
		"10000000000000": KindLength,
	} {
		form := validForm()
		form.LoanAmount = value
		_, err := v.Validate(form, true)
		requireFieldError(t, err, "loan_amount", kind)
	}

	form := validForm()
	form.LoanAmount = "1234.56"
	data, err := v.Validate(form, true)
	require.NoError(t, err)
	require.Equal(t, "1234.56", data.LoanAmount.String())
}

func TestValidateCollectsAllStructuralErrors(t *testing.T) {
	t.Parallel()
	v := &Validator{Messages: Messages("zh")}

	form := domain.LoanForm{
		USCC:        "short",
		LoanPurpose: "tax",
		LoanTerm:    "9",
		EntName:     strings.Repeat("x", 201),
	}
	_, err := v.Validate(form, true)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.Has("ent_name", KindLength))
	require.True(t, verr.Has("uscc", KindLength))
	require.True(t, verr.Has("company_email", KindMissing))
	require.True(t, verr.Has("repay_account_bank", KindMissing))
	require.True(t, verr.Has("repay_account_no", KindMissing))
	require.True(t, verr.Has("loan_amount", KindMissing))
	require.True(t, verr.Has("prop_proof_type", KindMissing))
	require.True(t, verr.Has("prop_proof_docs", KindMissing))
	require.True(t, verr.Has("prop_proof_docs_name", KindMissing))
	require.False(t, verr.Has("loan_term", KindBusinessRule), "business rules wait for a sound structure")

	for _, fe := range verr.Errors {
		if fe.Field == "company_email" {
			require.Equal(t, "company_email 字段不能为空", fe.Msg)
		}
	}
}

func TestValidateDocsOnlyRequiredOnConfirm(t *testing.T) {
	t.Parallel()
	v := &Validator{}

	form := validForm()
	form.PropProofDocs = ""
	form.PropProofDocsName = ""

	_, err := v.Validate(form, false)
	require.NoError(t, err)

	_, err = v.Validate(form, true)
	requireFieldError(t, err, "prop_proof_docs", KindMissing)
	requireFieldError(t, err, "prop_proof_docs_name", KindMissing)
}

func TestValidateEnglishCatalog(t *testing.T) {
	t.Parallel()
	v := &Validator{Messages: Messages("en")}

	form := validForm()
	form.EntName = ""
	_, err := v.Validate(form, true)
	verr := requireFieldError(t, err, "ent_name", KindMissing)
	require.Equal(t, "ent_name is required", verr.Errors[0].Msg)
}
