package domain

import "time"

// Roles a principal can hold. Admins authenticate with password plus an
// emailed one-time code; resellers authenticate with password only.
const (
	RoleAdmin    = "admin"
	RoleReseller = "reseller"
)

type Principal struct {
	ID           string
	Username     string
	Email        string // delivery address for one-time codes (empty for resellers)
	PasswordHash string // argon2 encoded
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the principal belongs to the admin role and is
// therefore subject to the second authentication factor.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
