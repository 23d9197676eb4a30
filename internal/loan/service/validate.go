package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
)

var (
	creditMaxTerm = decimal.NewFromInt(5)
	taxMaxTerm    = decimal.NewFromInt(2)
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// loanInput is the trimmed form. Widths follow the loan_applications
// columns; loan_amount is Numeric(15,2).
type loanInput struct {
	// Confirm marks phase two, where the document fields become required.
	Confirm bool `validate:"-"`

	EntName           string `json:"ent_name" validate:"required,max=200"`
	USCC              string `json:"uscc" validate:"required,len=18,alphanum"`
	CompanyEmail      string `json:"company_email" validate:"required,max=200,email,mailbox"`
	CompanyAddress    string `json:"company_address" validate:"omitempty,max=500"`
	RepayAccountBank  string `json:"repay_account_bank" validate:"required,max=50"`
	RepayAccountNo    string `json:"repay_account_no" validate:"required,len=19,number"`
	LoanAmount        string `json:"loan_amount" validate:"required,decimal,decimal_gt=0,decimal_lt=10000000000000"`
	LoanTerm          string `json:"loan_term" validate:"required,max=20"`
	LoanPurpose       string `json:"loan_purpose" validate:"required,max=50"`
	PropProofType     string `json:"prop_proof_type" validate:"required,max=50"`
	PropProofDocs     string `json:"prop_proof_docs" validate:"required_if=Confirm true,max=500"`
	PropProofDocsName string `json:"prop_proof_docs_name" validate:"required_if=Confirm true,max=128"`
	IndustryCategory  string `json:"industry_category" validate:"omitempty,max=100"`
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("decimal_gt", compareDecimal(func(d, bound decimal.Decimal) bool {
		return d.GreaterThan(bound)
	})))
	must(v.RegisterValidation("decimal_lt", compareDecimal(func(d, bound decimal.Decimal) bool {
		return d.LessThan(bound)
	})))
	return v
}

func compareDecimal(ok func(d, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return ok(d, bound)
	}
}

// Validator checks loan forms. Structural problems are collected in full;
// business rules only run once the structure is sound.
type Validator struct {
	Messages *Catalog
}

// Validate returns the normalised submission or a *ValidationError.
// requireDocs is false for the first phase, where the document fields are
// filled in by staging.
func (v *Validator) Validate(form domain.LoanForm, requireDocs bool) (domain.LoanData, error) {
	msgs := v.messages()

	in := loanInput{
		Confirm:           requireDocs,
		EntName:           strings.TrimSpace(form.EntName),
		USCC:              strings.TrimSpace(form.USCC),
		CompanyEmail:      strings.TrimSpace(form.CompanyEmail),
		CompanyAddress:    strings.TrimSpace(form.CompanyAddress),
		RepayAccountBank:  strings.TrimSpace(form.RepayAccountBank),
		RepayAccountNo:    strings.TrimSpace(form.RepayAccountNo),
		LoanAmount:        strings.TrimSpace(form.LoanAmount),
		LoanTerm:          strings.TrimSpace(form.LoanTerm),
		LoanPurpose:       strings.TrimSpace(form.LoanPurpose),
		PropProofType:     strings.TrimSpace(form.PropProofType),
		PropProofDocs:     strings.TrimSpace(form.PropProofDocs),
		PropProofDocsName: strings.TrimSpace(form.PropProofDocsName),
		IndustryCategory:  strings.TrimSpace(form.IndustryCategory),
	}

	if err := formValidator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.LoanData{}, err
		}
		errs := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			errs = append(errs, fieldFailure(msgs, fe.Field(), fe.Tag()))
		}
		return domain.LoanData{}, &ValidationError{Errors: errs}
	}

	data := domain.LoanData{
		EntName:           in.EntName,
		USCC:              in.USCC,
		CompanyEmail:      in.CompanyEmail,
		CompanyAddress:    optional(in.CompanyAddress),
		RepayAccountBank:  in.RepayAccountBank,
		RepayAccountNo:    in.RepayAccountNo,
		LoanAmount:        decimal.RequireFromString(in.LoanAmount),
		LoanTerm:          in.LoanTerm,
		LoanPurpose:       in.LoanPurpose,
		PropProofType:     in.PropProofType,
		PropProofDocs:     in.PropProofDocs,
		PropProofDocsName: in.PropProofDocsName,
		IndustryCategory:  optional(in.IndustryCategory),
	}

	if errs := v.businessRules(data); len(errs) > 0 {
		return domain.LoanData{}, &ValidationError{Errors: errs}
	}
	return data, nil
}

// fieldFailure turns the failed tag of one field into the reported error.
// Tags without a dedicated kind fall back to KindInvalid.
func fieldFailure(msgs *Catalog, field, tag string) FieldError {
	fe := FieldError{Field: field, Kind: KindInvalid, Msg: msgs.field(msgs.FieldInvalid, field)}
	switch tag {
	case "required", "required_if":
		fe.Kind, fe.Msg = KindMissing, msgs.field(msgs.FieldMissing, field)
	case "len", "max", "decimal_lt":
		fe.Kind, fe.Msg = KindLength, msgs.field(msgs.FieldLength, field)
	case "alphanum", "number", "email", "mailbox":
		fe.Kind = KindPattern
	case "decimal":
		fe.Kind, fe.Msg = KindInvalidType, msgs.field(msgs.FieldInvalidType, field)
	case "decimal_gt":
		fe.Kind, fe.Msg = KindNotPositive, msgs.field(msgs.FieldNotPositive, field)
	}

	switch {
	case field == "uscc" && (fe.Kind == KindLength || fe.Kind == KindPattern):
		fe.Msg = msgs.USCCFormat
	case field == "repay_account_no" && (fe.Kind == KindLength || fe.Kind == KindPattern):
		fe.Msg = msgs.AccountNoFormat
	case field == "company_email" && fe.Kind == KindPattern:
		fe.Msg = msgs.EmailFormat
	case field == "loan_amount" && fe.Kind == KindNotPositive:
		fe.Msg = msgs.AmountPositive
	}
	return fe
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (v *Validator) businessRules(d domain.LoanData) []FieldError {
	msgs := v.messages()

	var limit decimal.Decimal
	var msg string
	switch d.LoanPurpose {
	case domain.PurposeCredit:
		limit, msg = creditMaxTerm, msgs.CreditTermLimit
	case domain.PurposeTax:
		limit, msg = taxMaxTerm, msgs.TaxTermLimit
	default:
		return nil
	}

	// Plain decimal literals only; hex floats and Inf are not terms.
	term, err := decimal.NewFromString(d.LoanTerm)
	if err != nil {
		return []FieldError{{
			Field: "loan_term",
			Msg:   msgs.field(msgs.FieldInvalidType, "loan_term"),
			Kind:  KindInvalidType,
		}}
	}
	if term.GreaterThan(limit) {
		return []FieldError{{Field: "loan_term", Msg: msg, Kind: KindBusinessRule}}
	}
	return nil
}

func (v *Validator) messages() *Catalog {
	if v.Messages == nil {
		return Messages("")
	}
	return v.Messages
}
