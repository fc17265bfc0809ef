package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether the role grants administrative access,
// currently the ability to list every account.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole maps a stored role value onto the enum. Unknown values
// degrade to staff rather than silently granting privileges.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleStaff
}

// User is an account. An account is either unverified (token and expiry
// set) or verified (both cleared); the transition happens exactly once.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"` // Never expose the password hash in JSON
	Phone             string     `json:"phone"`
	Role              Role       `json:"role"`
	Verified          bool       `json:"verified"`
	VerificationToken *string    `json:"-"`
	TokenExpiresAt    *time.Time `json:"-"`
	CompanyName       string     `json:"company_name"`
	MissionStatement  string     `json:"mission_statement"`
	CompanyAddress    string     `json:"company_address"`
	CompanySite       string     `json:"company_site"`
	UserTitle         string     `json:"user_title"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CompanyInfo bundles the free-form profile fields that are orthogonal to
// the authentication lifecycle.
type CompanyInfo struct {
	CompanyName      string
	MissionStatement string
	CompanyAddress   string
	CompanySite      string
	UserTitle        string
}
