package domain

// Roles recognized by the authorization layer
const (
	RoleAdmin = "ADMIN" // full access, sees every card and manages users
	RoleUser  = "USER"  // sees only owned cards
)

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`              // Primary key
	Username string `gorm:"unique;not null" json:"username"`   // Unique username
	Password string `gorm:"not null" json:"-"`                 // Bcrypt hash, never serialized
	Role     string `gorm:"not null;default:USER" json:"role"` // Role: USER or ADMIN
	Cards    []Card `gorm:"foreignKey:OwnerID" json:"-"`       // Cards owned by this user
}

// ValidRole reports whether s is one of the recognized roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleUser
}

// Identity is the caller resolved from a validated bearer token.
// It is attached to the request context by the middleware and passed
// explicitly into every service call that needs it; nothing reads
// authentication state from process-global storage.
type Identity struct {
	UserID   uint   // Resolved user ID
	Username string // Resolved username
	Role     string // Resolved role
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
