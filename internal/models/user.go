package models

type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleAdmin  UserRole = "admin"
)

// ParseRole maps free-form input to a known role. Anything other than
// "admin" is a player.
func ParseRole(s string) UserRole {
	if UserRole(s) == RoleAdmin {
		return RoleAdmin
	}
	return RolePlayer
}

// Identity is the authenticated user reference issued by supabase auth.
type Identity struct {
	ID    string `json:"id"` // uuid, the JWT "sub"
	Email string `json:"email"`
}
