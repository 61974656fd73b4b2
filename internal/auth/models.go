package auth

import "time"

// Operator roles. Admins may generate, populate, and delete locations;
// plain operators are limited to read and advance operations.
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// Operator is a human account that signs in through GitHub. The login
// named by ADMIN_GITHUB_LOGIN receives the admin role on every sign-in.
type Operator struct {
	ID          int       `json:"id"`
	GitHubID    int64     `json:"github_id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Email       *string   `json:"email,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// IsAdmin reports whether the operator holds the admin role.
func (o *Operator) IsAdmin() bool {
	return o.Role == RoleAdmin
}
