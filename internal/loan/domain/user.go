package domain

import "time"

// User types accepted by the credential store.
const (
	UserTypeIndividual = "INDIVIDUAL"
	UserTypeEnterprise = "ENTERPRISE"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string // argon2id PHC string, or bcrypt for imported accounts
	UserType     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidUserType reports whether t is a known user type.
func ValidUserType(t string) bool {
	return t == UserTypeIndividual || t == UserTypeEnterprise
}
