package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database row model for accounts. The domain model lives in
// internal/user; repositories map between the two.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Username          string     `bun:"username,notnull"`
	Email             string     `bun:"email,notnull"`
	PasswordHash      string     `bun:"password_hash,notnull"`
	Phone             string     `bun:"phone"`
	Role              string     `bun:"role,notnull,default:'staff'"`
	Verified          bool       `bun:"verified,notnull,default:false"`
	VerificationToken *string    `bun:"verification_token"`
	TokenExpiresAt    *time.Time `bun:"token_expires_at"`
	CompanyName       string     `bun:"company_name"`
	MissionStatement  string     `bun:"mission_statement"`
	CompanyAddress    string     `bun:"company_address"`
	CompanySite       string     `bun:"company_site"`
	UserTitle         string     `bun:"user_title"`
	CreatedAt         time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
