package models

import "time"

// Profile is the per-user document that carries the app-level role.
type Profile struct {
	UserID string   `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Email  string   `gorm:"column:email;type:text" json:"email"`
	Role   UserRole `gorm:"column:role;type:text;not null;default:player" json:"role"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "user_profiles" }

// EffectiveRole defaults a missing role to player.
func (p *Profile) EffectiveRole() UserRole {
	if p == nil {
		return ""
	}
	return ParseRole(string(p.Role))
}
