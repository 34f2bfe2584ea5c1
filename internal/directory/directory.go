// Package directory lets admins look users up by name or email.
package directory

import (
	"context"

	"github.com/Skotchmaster/role_gate/internal/models"
	"github.com/Skotchmaster/role_gate/internal/roles"
)

type Entry struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  roles.Role `json:"role"`
}

func EntryFromUser(u *models.User) Entry {
	return Entry{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type Directory interface {
	Index(ctx context.Context, u *models.User) error
	Search(ctx context.Context, query string, from, size int) (int64, []Entry, error)
}

func Page(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	from = (page - 1) * size
	return from, size
}
