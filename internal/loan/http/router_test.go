package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/internal/loan/metrics"
	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/internal/loan/store/drivers/sqlite"
	"github.com/aussiebroadwan/loanapply/pkg/cryptox"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/jwtx"
	"github.com/aussiebroadwan/loanapply/pkg/loansdk"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const (
	testIssuer   = "loan-test"
	testOrigin   = "http://localhost:5173"
	alicePass    = "Test1234"
	stagedPrefix = "uploads/loan_docs/"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "loan-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testEnv struct {
	router  *Router
	store   *sqlite.Store
	signer  jwtx.Signer
	stage   string
	metrics *metrics.Metrics
	alice   domain.User
}

func newTestEnv(t *testing.T, maxBody int64) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	hash, err := cryptox.HashPassword(alicePass)
	require.NoError(t, err)
	alice, err := st.Users().CreateUser(context.Background(), domain.User{
		Username:     "alice",
		PasswordHash: hash,
		UserType:     domain.UserTypeEnterprise,
	})
	require.NoError(t, err)

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	msgs := service.Messages("zh")
	m := metrics.New()
	root := t.TempDir()
	stager := &service.FileStager{
		Dir:        "uploads/loan_docs",
		Root:       root,
		AllowedExt: service.DefaultAllowedExtensions,
	}

	r := NewRouter(RouterConfig{
		BuildVersion: "test",
		Messages:     msgs,
		CORS:         httpx.CORSConfig{AllowedOrigins: []string{testOrigin}, AllowCredentials: true},
		MaxBodyBytes: maxBody,
	}, st, slogx.Discard())
	r.AuthService = &service.AuthService{
		Store:     st,
		Signer:    signer,
		Verifier:  jwtx.NewCommonHS256(testSecret, jwtx.VerifyOptions{Issuer: testIssuer}),
		Issuer:    testIssuer,
		AccessTTL: time.Hour,
		Messages:  msgs,
		Metrics:   m,
	}
	r.LoanService = &service.LoanService{
		Store:     st,
		Validator: &service.Validator{Messages: msgs},
		Stager:    stager,
		Charts:    &service.ChartSource{Path: filepath.Join("..", "..", "..", "data", "chart-data.json")},
		Messages:  msgs,
		Metrics:   m,
	}
	r.Stager = stager
	r.Metrics = m
	r.ApplyRoutes()

	return &testEnv{
		router:  r,
		store:   st,
		signer:  signer,
		stage:   filepath.Join(root, "uploads", "loan_docs"),
		metrics: m,
		alice:   alice,
	}
}

func (e *testEnv) token(t *testing.T, userID int64, issuedAt time.Time) string {
	t.Helper()
	tok, err := e.signer.Sign(jwtx.NewAccessClaims(userID, "alice", domain.UserTypeEnterprise, time.Hour, testIssuer, issuedAt))
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, loansdk.Envelope[json.RawMessage]) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, httpx.ContentTypeJSON, rec.Header().Get("Content-Type"))

	var env loansdk.Envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotZero(t, env.Timestamp)
	return rec, env
}

func decodeData[T any](t *testing.T, env loansdk.Envelope[json.RawMessage]) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func validForm() url.Values {
	return loansdk.LoanForm{
		EntName:          "ACME",
		USCC:             "91310115MA1K4QLX1L",
		CompanyEmail:     "a@b.com",
		RepayAccountBank: "ICBC",
		RepayAccountNo:   "1234567890123456789",
		LoanAmount:       "1000",
		LoanTerm:         "2",
		LoanPurpose:      "tax",
		PropProofType:    "real_estate",
	}.Values()
}

func multipartRequest(t *testing.T, target string, form url.Values, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("prop_proof_docs", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLoginThenTestToken(t *testing.T) {
	env := newTestEnv(t, 0)

	_, res := env.do(t, loginRequest(`{"user_name":"alice","password":"Test1234"}`))
	require.Equal(t, httpx.CodeSuccess, res.Code)
	require.Equal(t, "登录成功", res.Msg)

	login := decodeData[loansdk.LoginResponse](t, res)
	require.NotEmpty(t, login.AccessToken)
	require.Equal(t, "Bearer", login.TokenType)
	require.Equal(t, 3600, login.ExpiresIn)
	require.Equal(t, "alice", login.User.UserName)
	require.Equal(t, domain.UserTypeEnterprise, login.User.UserType)

	req := withBearer(httptest.NewRequest(http.MethodGet, "/api/auth/test", nil), login.AccessToken)
	_, res = env.do(t, req)
	require.Equal(t, httpx.CodeSuccess, res.Code)
	require.Equal(t, "Token验证成功", res.Msg)
	info := decodeData[loansdk.TokenInfoResponse](t, res)
	require.Equal(t, env.alice.ID, info.UserID)
	require.Equal(t, "alice", info.Username)
	require.Equal(t, domain.UserTypeEnterprise, info.UserType)

	require.InDelta(t, 1, testutil.ToFloat64(env.metrics.Logins.WithLabelValues(metrics.OutcomeOK)), 0)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t, 0)

	t.Run("wrong password", func(t *testing.T) {
		_, res := env.do(t, loginRequest(`{"user_name":"alice","password":"Wrong123"}`))
		require.Equal(t, httpx.CodeAuth, res.Code)
		require.Equal(t, "用户名或密码错误", res.Msg)
	})

	t.Run("unknown user has same message", func(t *testing.T) {
		_, res := env.do(t, loginRequest(`{"user_name":"mallory","password":"Test1234"}`))
		require.Equal(t, httpx.CodeAuth, res.Code)
		require.Equal(t, "用户名或密码错误", res.Msg)
	})

	t.Run("short password is a validation error", func(t *testing.T) {
		_, res := env.do(t, loginRequest(`{"user_name":"alice","password":"short"}`))
		require.Equal(t, httpx.CodeValidation, res.Code)
		require.Equal(t, "数据验证失败", res.Msg)
		errs := decodeData[loansdk.ValidationErrors](t, res)
		require.Len(t, errs.Errors, 1)
		require.Equal(t, "password", errs.Errors[0].Field)
		require.Equal(t, "length", errs.Errors[0].Type)
	})

	t.Run("empty body", func(t *testing.T) {
		_, res := env.do(t, loginRequest(``))
		require.Equal(t, httpx.CodeValidation, res.Code)
		errs := decodeData[loansdk.ValidationErrors](t, res)
		require.Len(t, errs.Errors, 2)
	})
}

func TestLoginAcceptsUsernameAlias(t *testing.T) {
	env := newTestEnv(t, 0)

	_, res := env.do(t, loginRequest(`{"username":"alice","password":"Test1234"}`))
	require.Equal(t, httpx.CodeSuccess, res.Code)
}

func TestBearerGuard(t *testing.T) {
	env := newTestEnv(t, 0)

	cases := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing", "", "缺少Token"},
		{"no scheme", "abc", "Token格式错误"},
		{"wrong scheme", "Token abc", "Token格式错误"},
		{"garbage", "Bearer not.a.jwt", "无效的Token"},
		{"expired", "Bearer " + env.token(t, env.alice.ID, time.Now().Add(-2*time.Hour)), "Token已过期，请重新登录"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/test", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			_, res := env.do(t, req)
			require.Equal(t, httpx.CodeAuth, res.Code)
			require.Equal(t, tc.msg, res.Msg)
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, 0)

	req := withBearer(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), env.token(t, env.alice.ID, time.Now()))
	_, res := env.do(t, req)
	require.Equal(t, httpx.CodeSuccess, res.Code)
	require.Equal(t, "成功退出登录", res.Msg)
	require.Equal(t, "alice", decodeData[loansdk.LogoutResponse](t, res).Username)

	// token for a user that no longer exists
	req = withBearer(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), env.token(t, 999, time.Now()))
	_, res = env.do(t, req)
	require.Equal(t, httpx.CodeNotFound, res.Code)
	require.Equal(t, "用户不存在", res.Msg)
}

func TestApplyOrdering(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.token(t, env.alice.ID, time.Now())

	t.Run("invalid fields without file is a validation error", func(t *testing.T) {
		form := validForm()
		form.Set("uscc", "short")
		_, res := env.do(t, withBearer(multipartRequest(t, "/api/loan/apply", form, "", ""), token))
		require.Equal(t, httpx.CodeValidation, res.Code)
		require.Equal(t, "数据验证失败，请检查输入信息", res.Msg)
		errs := decodeData[loansdk.ValidationErrors](t, res)
		require.Equal(t, "uscc", errs.Errors[0].Field)
	})

	t.Run("valid fields without file is a file error", func(t *testing.T) {
		_, res := env.do(t, withBearer(multipartRequest(t, "/api/loan/apply", validForm(), "", ""), token))
		require.Equal(t, httpx.CodeFile, res.Code)
		require.Equal(t, "请上传财产证明文件", res.Msg)
	})

	t.Run("urlencoded body has no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/loan/apply", strings.NewReader(validForm().Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		_, res := env.do(t, withBearer(req, token))
		require.Equal(t, httpx.CodeFile, res.Code)
	})

	t.Run("disallowed extension", func(t *testing.T) {
		_, res := env.do(t, withBearer(multipartRequest(t, "/api/loan/apply", validForm(), "run.exe", "MZ"), token))
		require.Equal(t, httpx.CodeFile, res.Code)
		require.Equal(t, "不支持的文件类型: exe", res.Msg)
	})

	entries, err := os.ReadDir(env.stage)
	if err == nil {
		require.Empty(t, entries)
	}
}

func TestApplyStagesDocument(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.token(t, env.alice.ID, time.Now())

	_, res := env.do(t, withBearer(multipartRequest(t, "/api/loan/apply", validForm(), "deed.pdf", "%PDF-1.4"), token))
	require.Equal(t, httpx.CodeSuccess, res.Code)
	require.Equal(t, "数据验证成功，请在下一步确认您的贷款申请信息", res.Msg)

	out := decodeData[loansdk.ApplyResponse](t, res)
	require.Equal(t, "deed.pdf", out.FileInfo.FileName)
	require.Equal(t, filepath.ToSlash(env.stage), path.Dir(out.FileInfo.FilePath))
	require.True(t, strings.HasSuffix(out.FileInfo.FilePath, "_deed.pdf"))
	require.Equal(t, out.FileInfo.FilePath, out.LoanData.PropProofDocs)
	require.Equal(t, json.Number("1000"), out.LoanData.LoanAmount)
	require.Nil(t, out.LoanData.CompanyAddress)
	require.Len(t, out.FinancialData, 6)

	body, err := os.ReadFile(filepath.Join(env.stage, filepath.Base(out.FileInfo.FilePath)))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(body))
}

func TestApplyBodyTooLarge(t *testing.T) {
	env := newTestEnv(t, 1024)
	token := env.token(t, env.alice.ID, time.Now())

	big := strings.Repeat("x", 4096)
	_, res := env.do(t, withBearer(multipartRequest(t, "/api/loan/apply", validForm(), "deed.pdf", big), token))
	require.Equal(t, httpx.CodeFile, res.Code)
	require.Equal(t, "文件大小超过限制", res.Msg)
}

func TestConfirm(t *testing.T) {
	env := newTestEnv(t, 0)
	token := env.token(t, env.alice.ID, time.Now())

	confirmForm := func(term string) url.Values {
		form := validForm()
		form.Set("loan_term", term)
		form.Set("prop_proof_docs", stagedPrefix+"20240101120000_deed.pdf")
		form.Set("prop_proof_docs_name", "deed.pdf")
		return form
	}
	urlencoded := func(form url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/loan/confirm", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return withBearer(req, token)
	}

	t.Run("tax term over limit", func(t *testing.T) {
		_, res := env.do(t, urlencoded(confirmForm("3")))
		require.Equal(t, httpx.CodeValidation, res.Code)
		errs := decodeData[loansdk.ValidationErrors](t, res)
		require.Len(t, errs.Errors, 1)
		require.Equal(t, "loan_term", errs.Errors[0].Field)
		require.Equal(t, "business_rule", errs.Errors[0].Type)
		require.Equal(t, "税贷期限不能超过2年", errs.Errors[0].Msg)
	})

	t.Run("missing docs", func(t *testing.T) {
		_, res := env.do(t, urlencoded(validForm()))
		require.Equal(t, httpx.CodeValidation, res.Code)
		errs := decodeData[loansdk.ValidationErrors](t, res)
		fields := make([]string, 0, len(errs.Errors))
		for _, fe := range errs.Errors {
			fields = append(fields, fe.Field)
		}
		require.ElementsMatch(t, []string{"prop_proof_docs", "prop_proof_docs_name"}, fields)
	})

	t.Run("persists pending application", func(t *testing.T) {
		_, res := env.do(t, urlencoded(confirmForm("2")))
		require.Equal(t, httpx.CodeSuccess, res.Code)
		require.Equal(t, "贷款申请提交成功", res.Msg)

		app := decodeData[loansdk.ApplicationResponse](t, res)
		require.NotZero(t, app.ID)
		require.Equal(t, env.alice.ID, app.UserID)
		require.Equal(t, "tax", app.LoanPurpose)
		require.Equal(t, domain.StatusPending, app.Status)
		require.Equal(t, json.Number("1000"), app.LoanAmount)
		require.NotEmpty(t, app.CreatedAt)

		stored, err := env.store.Applications().GetApplicationByID(context.Background(), app.ID)
		require.NoError(t, err)
		require.Equal(t, "ACME", stored.EntName)
	})

	t.Run("multipart works too", func(t *testing.T) {
		_, res := env.do(t, withBearer(multipartRequest(t, "/api/loan/confirm", confirmForm("1"), "", ""), token))
		require.Equal(t, httpx.CodeSuccess, res.Code)
	})
}

func TestUnknownRouteIsEnveloped(t *testing.T) {
	env := newTestEnv(t, 0)

	_, res := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.Equal(t, httpx.CodeNotFound, res.Code)

	_, res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/login", nil))
	require.Equal(t, httpx.CodeNotFound, res.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/loan/apply", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, 0)

	for _, path := range []string{"/livez", "/readyz"} {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)

		var health loansdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		require.Equal(t, "ok", health.Status)
		require.Equal(t, "test", health.Version)
	}

	env.do(t, loginRequest(`{"user_name":"alice","password":"Test1234"}`))

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `loanapply_http_requests_total{method="POST",route="/api/auth/login",status="200"} 1`)
}

func TestReadyzReportsBrokenDatabase(t *testing.T) {
	env := newTestEnv(t, 0)
	require.NoError(t, env.store.Close())

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health loansdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "ok", health.Checks.Storage)
}
