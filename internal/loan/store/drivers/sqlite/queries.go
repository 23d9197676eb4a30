package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

type userRow struct {
	ID           int64
	Username     string
	PasswordHash string
	UserType     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const userColumns = `id, username, password_hash, user_type, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.UserType, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *queries) GetUserByID(ctx context.Context, id int64) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *queries) GetUserByUsername(ctx context.Context, username string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

type createUserParams struct {
	Username     string
	PasswordHash string
	UserType     string
	Now          time.Time
}

const createUser = `INSERT INTO users (username, password_hash, user_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + userColumns

func (q *queries) CreateUser(ctx context.Context, arg createUserParams) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, createUser,
		arg.Username, arg.PasswordHash, arg.UserType, arg.Now, arg.Now,
	))
}

const updateUserPasswordHash = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

func (q *queries) UpdateUserPasswordHash(ctx context.Context, id int64, hash string, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserPasswordHash, hash, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

type applicationRow struct {
	ID                int64
	UserID            int64
	EntName           string
	USCC              string
	CompanyEmail      string
	CompanyAddress    sql.NullString
	RepayAccountBank  string
	RepayAccountNo    string
	LoanAmount        decimal.Decimal
	LoanTerm          string
	LoanPurpose       string
	PropProofType     string
	PropProofDocs     string
	PropProofDocsName string
	IndustryCategory  sql.NullString
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const applicationColumns = `id, user_id, ent_name, uscc, company_email, company_address,
repay_account_bank, repay_account_no, loan_amount, loan_term, loan_purpose,
prop_proof_type, prop_proof_docs, prop_proof_docs_name, industry_category,
status, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (applicationRow, error) {
	var a applicationRow
	err := row.Scan(
		&a.ID, &a.UserID, &a.EntName, &a.USCC, &a.CompanyEmail, &a.CompanyAddress,
		&a.RepayAccountBank, &a.RepayAccountNo, &a.LoanAmount, &a.LoanTerm, &a.LoanPurpose,
		&a.PropProofType, &a.PropProofDocs, &a.PropProofDocsName, &a.IndustryCategory,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

type createApplicationParams struct {
	UserID            int64
	EntName           string
	USCC              string
	CompanyEmail      string
	CompanyAddress    sql.NullString
	RepayAccountBank  string
	RepayAccountNo    string
	LoanAmount        string
	LoanTerm          string
	LoanPurpose       string
	PropProofType     string
	PropProofDocs     string
	PropProofDocsName string
	IndustryCategory  sql.NullString
	Status            string
	Now               time.Time
}

const createApplication = `INSERT INTO loan_applications (
    user_id, ent_name, uscc, company_email, company_address,
    repay_account_bank, repay_account_no, loan_amount, loan_term, loan_purpose,
    prop_proof_type, prop_proof_docs, prop_proof_docs_name, industry_category,
    status, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + applicationColumns

func (q *queries) CreateApplication(ctx context.Context, arg createApplicationParams) (applicationRow, error) {
	return scanApplication(q.db.QueryRowContext(ctx, createApplication,
		arg.UserID, arg.EntName, arg.USCC, arg.CompanyEmail, arg.CompanyAddress,
		arg.RepayAccountBank, arg.RepayAccountNo, arg.LoanAmount, arg.LoanTerm, arg.LoanPurpose,
		arg.PropProofType, arg.PropProofDocs, arg.PropProofDocsName, arg.IndustryCategory,
		arg.Status, arg.Now, arg.Now,
	))
}

const getApplicationByID = `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = ?`

func (q *queries) GetApplicationByID(ctx context.Context, id int64) (applicationRow, error) {
	return scanApplication(q.db.QueryRowContext(ctx, getApplicationByID, id))
}

const listApplicationsByUser = `SELECT ` + applicationColumns + `
FROM loan_applications WHERE user_id = ? ORDER BY created_at DESC, id DESC`

func (q *queries) ListApplicationsByUser(ctx context.Context, userID int64) ([]applicationRow, error) {
	rows, err := q.db.QueryContext(ctx, listApplicationsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []applicationRow
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countApplicationsByDocs = `SELECT COUNT(*) FROM loan_applications WHERE prop_proof_docs = ?`

func (q *queries) CountApplicationsByDocs(ctx context.Context, path string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countApplicationsByDocs, path).Scan(&n)
	return n, err
}
