package service

import (
	"fmt"
	"strings"
)

// Catalog holds every message the API sends back. The zh catalog matches
// what the existing web frontend displays.
type Catalog struct {
	// Envelope defaults
	Success    string
	Error      string
	Validation string
	Auth       string
	NotFound   string
	File       string
	Server     string
	RateLimit  string

	// Auth
	LoginOK            string
	LogoutOK           string
	TokenOK            string
	InvalidCredentials string
	UsernameRequired   string
	PasswordRequired   string
	PasswordLength     string
	TokenMissing       string
	TokenMalformed     string
	TokenExpired       string
	TokenInvalid       string
	UserNotFound       string

	// Loan
	FormInvalid  string
	ApplyOK      string
	ConfirmOK    string
	FileRequired string
	FileFailed   string
	FileType     string // printf: extension
	FileTooLarge string

	// Field templates, printf with the field name
	FieldMissing     string
	FieldInvalidType string
	FieldNotPositive string
	FieldLength      string
	FieldInvalid     string

	// Field specific
	USCCFormat      string
	EmailFormat     string
	AccountNoFormat string
	AmountPositive  string
	CreditTermLimit string
	TaxTermLimit    string
}

var catalogZH = Catalog{
	Success:    "成功",
	Error:      "失败",
	Validation: "数据验证失败",
	Auth:       "认证失败",
	NotFound:   "资源不存在",
	File:       "文件处理失败",
	Server:     "服务器错误",
	RateLimit:  "请求过于频繁，请稍后再试",

	LoginOK:            "登录成功",
	LogoutOK:           "成功退出登录",
	TokenOK:            "Token验证成功",
	InvalidCredentials: "用户名或密码错误",
	UsernameRequired:   "用户名必须输入",
	PasswordRequired:   "密码必须输入",
	PasswordLength:     "密码长度必须为8位",
	TokenMissing:       "缺少Token",
	TokenMalformed:     "Token格式错误",
	TokenExpired:       "Token已过期，请重新登录",
	TokenInvalid:       "无效的Token",
	UserNotFound:       "用户不存在",

	FormInvalid:  "数据验证失败，请检查输入信息",
	ApplyOK:      "数据验证成功，请在下一步确认您的贷款申请信息",
	ConfirmOK:    "贷款申请提交成功",
	FileRequired: "请上传财产证明文件",
	FileFailed:   "文件上传失败",
	FileType:     "不支持的文件类型: %s",
	FileTooLarge: "文件大小超过限制",

	FieldMissing:     "%s 字段不能为空",
	FieldInvalidType: "%s 必须是数字",
	FieldNotPositive: "%s 不能为负数",
	FieldLength:      "%s 长度不符合要求",
	FieldInvalid:     "%s 格式不正确",

	USCCFormat:      "统一社会信用代码必须是18位英数字",
	EmailFormat:     "请输入有效的邮箱地址",
	AccountNoFormat: "还款账户号码必须是19位数字",
	AmountPositive:  "贷款申请金额必须大于0",
	CreditTermLimit: "信用贷款期限不能超过5年",
	TaxTermLimit:    "税贷期限不能超过2年",
}

var catalogEN = Catalog{
	Success:    "success",
	Error:      "failed",
	Validation: "validation failed",
	Auth:       "authentication failed",
	NotFound:   "resource not found",
	File:       "file processing failed",
	Server:     "internal server error",
	RateLimit:  "too many requests, please try again later",

	LoginOK:            "login successful",
	LogoutOK:           "logged out",
	TokenOK:            "token is valid",
	InvalidCredentials: "invalid username or password",
	UsernameRequired:   "username is required",
	PasswordRequired:   "password is required",
	PasswordLength:     "password must be exactly 8 characters",
	TokenMissing:       "missing token",
	TokenMalformed:     "malformed token header",
	TokenExpired:       "token expired, please log in again",
	TokenInvalid:       "invalid token",
	UserNotFound:       "user not found",

	FormInvalid:  "validation failed, please check the form",
	ApplyOK:      "validated, please confirm your loan application",
	ConfirmOK:    "loan application submitted",
	FileRequired: "please upload the property proof document",
	FileFailed:   "upload failed",
	FileType:     "file type not allowed: %s",
	FileTooLarge: "file exceeds the size limit",

	FieldMissing:     "%s is required",
	FieldInvalidType: "%s must be a number",
	FieldNotPositive: "%s must not be negative",
	FieldLength:      "%s has an invalid length",
	FieldInvalid:     "%s is invalid",

	USCCFormat:      "the unified social credit code must be 18 letters or digits",
	EmailFormat:     "please enter a valid email address",
	AccountNoFormat: "the repayment account number must be 19 digits",
	AmountPositive:  "the loan amount must be greater than 0",
	CreditTermLimit: "credit loans cannot exceed 5 years",
	TaxTermLimit:    "tax loans cannot exceed 2 years",
}

// Messages returns the catalog for locale. Unknown locales get zh.
func Messages(locale string) *Catalog {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en", "en-us", "en-au", "en-gb":
		c := catalogEN
		return &c
	default:
		c := catalogZH
		return &c
	}
}

func (c *Catalog) field(template, field string) string {
	return fmt.Sprintf(template, field)
}
