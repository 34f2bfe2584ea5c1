package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/role_gate/internal/roles"
)

type User struct {
	ID           string     `gorm:"primaryKey;size:36"        json:"id"`
	Name         string     `gorm:"not null"                  json:"name"`
	Email        string     `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string     `gorm:"not null"                  json:"-"`
	Role         roles.Role `gorm:"not null;size:16"          json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// AccessToken is one live bearer session. Revoking a token deletes its row.
type AccessToken struct {
	ID        uint      `gorm:"primaryKey"                json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null;size:36" json:"jti"`
	TokenHash string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	UserID    string    `gorm:"index;not null;size:36"    json:"user_id"`
	Name      string    `gorm:"not null"                  json:"name"`
	IssuedAt  time.Time `gorm:"not null"                  json:"issued_at"`
	ExpiresAt time.Time `gorm:"index;not null"            json:"expires_at"`
}

func All() []any {
	return []any{&User{}, &AccessToken{}}
}
